//go:build integration

package containers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a migrated testcontainers Postgres instance.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres and applies every migration under
// migrations/. The container is terminated when the test ends.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("password"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	m, err := migrate.New("file://"+migrationsDir(), url)
	if err != nil {
		t.Fatalf("failed to create migration instance: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run migrations: %v", err)
	}
	m.Close()

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        db,
	}
}

// Exec runs statements and fails the test on error. Used for fixtures.
func (p *PostgresContainer) Exec(t *testing.T, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := p.DB.Exec(stmt); err != nil {
			t.Fatalf("fixture failed: %v\n%s", err, stmt)
		}
	}
}

// SeedDemo loads the two-company demo dataset with explicit ids. token
// derives each user's token.
func (p *PostgresContainer) SeedDemo(t *testing.T, token func(userID int) string) {
	t.Helper()
	p.Exec(t,
		`INSERT INTO companies (company_id, company_name) VALUES (1, 'Analytical Engines'), (2, 'Shortest Paths')`,
		`INSERT INTO users (user_id, company_id, first_name, last_name, tenure_days) VALUES
			(1, 1, 'Ada', 'Lovelace', 1200),
			(2, 1, 'Grace', 'Hopper', 400),
			(3, 1, 'Alan', 'Turing', 20),
			(4, 2, 'Edsger', 'Dijkstra', 800)`,
		`INSERT INTO management_relationships (manager_id, employee_id) VALUES (1, 2), (1, 3)`,
		`INSERT INTO incentives (incentive_id, incentive_name, company_id, service_requirement_days, role_eligibility) VALUES
			(1, 'Anniversary Bonus', 1, 365, 0),
			(2, 'Leadership Retreat', 1, 365, 2),
			(3, 'Conference Stipend', 1, 180, 1),
			(4, 'Welcome Kit', 2, 30, 0)`,
		`INSERT INTO courses (course_id, course_name) VALUES (7, 'SQL 101'), (8, 'Effective Feedback')`,
		`INSERT INTO learning_plans (learning_plan_id, user_id) VALUES (1, 2)`,
		`INSERT INTO learning_plan_items (learning_plan_item_id, learning_plan_id, learning_item_type, course_id, incentive_id) VALUES
			(1, 1, 0, 7, NULL),
			(2, 1, 1, NULL, 3),
			(3, 1, 0, 8, NULL)`,
	)
	for userID := 1; userID <= 4; userID++ {
		p.Exec(t, fmt.Sprintf(`INSERT INTO user_tokens (token, user_id) VALUES ('%s', %d)`, token(userID), userID))
	}
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
