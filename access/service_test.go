package access

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/learningplan/internal/logger"
	"github.com/liamcoop/learningplan/internal/metrics"
	"github.com/liamcoop/learningplan/learning"
	"github.com/liamcoop/learningplan/store"
)

func init() {
	logger.SetOutput(&bytes.Buffer{})
}

// countingRepo counts catalog loads and can inject failures.
type countingRepo struct {
	store.Repository
	catalogLoads atomic.Int32
	catalogErr   error
	managerErr   error
}

func (r *countingRepo) ListIncentives(ctx context.Context) ([]learning.IncentiveDefinition, error) {
	r.catalogLoads.Add(1)
	if r.catalogErr != nil {
		return nil, r.catalogErr
	}
	return r.Repository.ListIncentives(ctx)
}

func (r *countingRepo) IsManager(ctx context.Context, userID int) (bool, error) {
	if r.managerErr != nil {
		return false, r.managerErr
	}
	return r.Repository.IsManager(ctx, userID)
}

func newDemoService(t *testing.T) (*Service, *countingRepo, *metrics.Metrics) {
	t.Helper()
	mem := store.NewInMemoryStore()
	store.SeedDemo(mem)
	repo := &countingRepo{Repository: mem}
	m := metrics.New(prometheus.NewRegistry())
	return NewService(repo, store.NewInMemoryCatalogCache(store.DefaultCacheConfig()), m), repo, m
}

func TestEligibleIncentives_IndividualContributor(t *testing.T) {
	svc, _, _ := newDemoService(t)

	view, err := svc.EligibleIncentives(context.Background(), store.DemoToken(2))
	require.NoError(t, err)

	assert.Equal(t, 2, view.UserID)
	assert.Equal(t, []learning.EligibleIncentive{
		{IncentiveID: 1, IncentiveName: "Anniversary Bonus", ServiceRequirement: 365, RoleEligibility: "All"},
		{IncentiveID: 3, IncentiveName: "Conference Stipend", ServiceRequirement: 180, RoleEligibility: "IndividualContributor"},
	}, view.Incentives)
}

func TestEligibleIncentives_Manager(t *testing.T) {
	svc, _, _ := newDemoService(t)

	view, err := svc.EligibleIncentives(context.Background(), store.DemoToken(1))
	require.NoError(t, err)

	var got []int
	for _, i := range view.Incentives {
		got = append(got, i.IncentiveID)
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestEligibleIncentives_NewHireGetsEmptyList(t *testing.T) {
	svc, _, _ := newDemoService(t)

	view, err := svc.EligibleIncentives(context.Background(), store.DemoToken(3))
	require.NoError(t, err)
	assert.NotNil(t, view.Incentives)
	assert.Empty(t, view.Incentives)
}

func TestEligibleIncentives_CatalogIsCached(t *testing.T) {
	svc, repo, m := newDemoService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.EligibleIncentives(ctx, store.DemoToken(2))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.catalogLoads.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogCacheHits))
	assert.True(t, svc.CatalogCached(ctx))

	svc.InvalidateCatalog(ctx)
	assert.False(t, svc.CatalogCached(ctx))

	_, err := svc.EligibleIncentives(ctx, store.DemoToken(2))
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.catalogLoads.Load())
}

func TestEligibleIncentives_NoCache(t *testing.T) {
	mem := store.NewInMemoryStore()
	store.SeedDemo(mem)
	repo := &countingRepo{Repository: mem}
	svc := NewService(repo, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.EligibleIncentives(context.Background(), store.DemoToken(2))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), repo.catalogLoads.Load())
	assert.False(t, svc.CatalogCached(context.Background()))
}

func TestEligibleIncentives_RepositoryFailure(t *testing.T) {
	mem := store.NewInMemoryStore()
	store.SeedDemo(mem)
	repo := &countingRepo{Repository: mem}
	svc := NewService(repo, nil, nil)
	boom := errors.New("db down")

	repo.managerErr = boom
	_, err := svc.EligibleIncentives(context.Background(), store.DemoToken(2))
	assert.ErrorIs(t, err, boom)

	repo.managerErr = nil
	repo.catalogErr = boom
	_, err = svc.EligibleIncentives(context.Background(), store.DemoToken(2))
	assert.ErrorIs(t, err, boom)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newDemoService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	u, err := svc.Authenticate(ctx, store.DemoToken(4))
	require.NoError(t, err)
	assert.Equal(t, 2, u.CompanyID)
}

func TestAuthenticate_OrphanedToken(t *testing.T) {
	mem := store.NewInMemoryStore()
	mem.AddToken("orphan", 77)
	svc := NewService(mem, nil, nil)

	_, err := svc.Authenticate(context.Background(), "orphan")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate_NegativeTenure(t *testing.T) {
	mem := store.NewInMemoryStore()
	require.NoError(t, mem.AddUser(learning.User{UserID: 1, CompanyID: 1, TenureDays: -5}))
	mem.AddToken("tok", 1)
	svc := NewService(mem, nil, nil)

	_, err := svc.Authenticate(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestLearningPlan(t *testing.T) {
	svc, _, _ := newDemoService(t)

	view, err := svc.LearningPlan(context.Background(), store.DemoToken(2))
	require.NoError(t, err)

	assert.Equal(t, 2, view.UserID)
	assert.Equal(t, []learning.ResolvedLearningItem{
		{PlanItemID: 1, ItemType: "Course", ItemName: "SQL 101", ItemID: 7},
		{PlanItemID: 2, ItemType: "Incentive", ItemName: "Conference Stipend", ItemID: 3},
		{PlanItemID: 3, ItemType: "Course", ItemName: "Effective Feedback", ItemID: 8},
	}, view.PlanItems)
}

func TestLearningPlan_NotFound(t *testing.T) {
	svc, _, _ := newDemoService(t)

	_, err := svc.LearningPlan(context.Background(), store.DemoToken(1))
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestLearningPlan_CountsPlaceholders(t *testing.T) {
	mem := store.NewInMemoryStore()
	require.NoError(t, mem.AddUser(learning.User{UserID: 1, CompanyID: 1}))
	mem.AddToken("tok", 1)
	missing := 99
	mem.SetLearningPlan(1, 1, []store.PlanItemRecord{
		{PlanItemID: 1, Type: learning.ItemTypeCourse, CourseID: &missing},
		{PlanItemID: 2, Type: learning.ItemTypeIncentive},
	})
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(mem, nil, m)

	view, err := svc.LearningPlan(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, view.PlanItems, 2)
	assert.True(t, view.PlanItems[0].IsPlaceholder())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PlaceholderItems))
}

func TestColleagues(t *testing.T) {
	svc, _, _ := newDemoService(t)

	users, err := svc.Colleagues(context.Background(), store.DemoToken(3))
	require.NoError(t, err)

	var names []string
	for _, u := range users {
		names = append(names, u.FirstName)
	}
	assert.Equal(t, []string{"Ada", "Grace", "Alan"}, names)
}

func TestColleagues_NoneFound(t *testing.T) {
	mem := store.NewInMemoryStore()
	require.NoError(t, mem.AddUser(learning.User{UserID: 1, CompanyID: 1}))
	mem.AddToken("tok", 1)
	svc := NewService(&emptyCompanyRepo{mem}, nil, nil)

	_, err := svc.Colleagues(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNoActiveUsers)
}

type emptyCompanyRepo struct {
	store.Repository
}

func (emptyCompanyRepo) ListUsersByCompany(context.Context, int) ([]learning.User, error) {
	return []learning.User{}, nil
}
