//go:build integration

package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/learningplan/internal/config"
	"github.com/liamcoop/learningplan/internal/testutil/containers"
	"github.com/liamcoop/learningplan/store"
)

// TestEndToEnd_Postgres runs every endpoint against a migrated database.
func TestEndToEnd_Postgres(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pg.SeedDemo(t, store.DemoToken)

	cfg := testConfig()
	cfg.StoreDriver = config.DriverPostgres
	cfg.DatabaseURL = pg.URL
	server, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	t.Log("Step 1: eligible incentives")
	rec := get(t, server, "/incentives", store.DemoToken(1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"userId": 1,
		"incentives": [
			{"incentiveId": 1, "incentiveName": "Anniversary Bonus", "serviceRequirement": 365, "roleEligibility": "All"},
			{"incentiveId": 2, "incentiveName": "Leadership Retreat", "serviceRequirement": 365, "roleEligibility": "Manager"}
		]
	}`, rec.Body.String())

	t.Log("Step 2: learning plan")
	rec = get(t, server, "/learning-plan", store.DemoToken(2))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"userId": 2,
		"planItems": [
			{"planItemId": 1, "itemType": "Course", "itemName": "SQL 101", "itemId": 7},
			{"planItemId": 2, "itemType": "Incentive", "itemName": "Conference Stipend", "itemId": 3},
			{"planItemId": 3, "itemType": "Course", "itemName": "Effective Feedback", "itemId": 8}
		]
	}`, rec.Body.String())

	t.Log("Step 3: colleagues")
	rec = get(t, server, "/users", store.DemoToken(4))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"userId": 4, "firstName": "Edsger", "lastName": "Dijkstra"}]`, rec.Body.String())

	t.Log("Step 4: error mapping")
	assert.Equal(t, http.StatusUnauthorized, get(t, server, "/incentives", "nope").Code)
	assert.Equal(t, http.StatusNotFound, get(t, server, "/learning-plan", store.DemoToken(3)).Code)

	pg.Exec(t, `DELETE FROM users WHERE user_id = 4`)
	rec = get(t, server, "/users", store.DemoToken(4))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User associated with this token doesn't exist.", decode[ErrorResponse](t, rec).Error)

	t.Log("Step 5: liveness")
	assert.Equal(t, http.StatusOK, get(t, server, "/users/working", "").Code)
}

// TestEndToEnd_RedisCatalog checks the catalog is shared through Redis and
// survives a second server instance.
func TestEndToEnd_RedisCatalog(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pg.SeedDemo(t, store.DemoToken)
	rc := containers.NewRedisContainer(t)

	cfg := testConfig()
	cfg.StoreDriver = config.DriverPostgres
	cfg.DatabaseURL = pg.URL
	cfg.RedisURL = rc.URL
	cfg.CatalogCacheTTL = time.Minute

	first, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(first.Close)

	require.Equal(t, http.StatusOK, get(t, first, "/incentives", store.DemoToken(2)).Code)

	// A new incentive is invisible until the shared cache is dropped.
	pg.Exec(t, `INSERT INTO incentives (incentive_id, incentive_name, company_id, service_requirement_days, role_eligibility)
		VALUES (5, 'Sabbatical', 1, 100, 0)`)

	second, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(second.Close)

	health := decode[HealthResponse](t, get(t, second, "/health", ""))
	assert.True(t, health.CatalogCached)
	resp := decode[IncentivesResponse](t, get(t, second, "/incentives", store.DemoToken(2)))
	assert.Len(t, resp.Incentives, 2)

	second.svc.InvalidateCatalog(t.Context())
	resp = decode[IncentivesResponse](t, get(t, first, "/incentives", store.DemoToken(2)))
	assert.Len(t, resp.Incentives, 3)
}
