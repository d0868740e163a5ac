package access

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/liamcoop/learningplan/internal/logger"
	"github.com/liamcoop/learningplan/internal/metrics"
	"github.com/liamcoop/learningplan/learning"
	"github.com/liamcoop/learningplan/store"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrUserNotFound  = errors.New("user associated with this token doesn't exist")
	ErrPlanNotFound  = errors.New("learning plan not found for this user")
	ErrNoActiveUsers = errors.New("no active users found for this company")
)

// IncentivesView is the caller's eligible incentives.
type IncentivesView struct {
	UserID     int
	Incentives []learning.EligibleIncentive
}

// PlanView is the caller's resolved learning plan.
type PlanView struct {
	UserID    int
	PlanItems []learning.ResolvedLearningItem
}

// Service resolves the caller, loads what the core needs from the
// repository, and runs the core over it.
type Service struct {
	repo    store.Repository
	cache   store.CatalogCache
	metrics *metrics.Metrics
}

// NewService creates a Service. A nil cache disables catalog caching.
func NewService(repo store.Repository, cache store.CatalogCache, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: m,
	}
}

// Authenticate maps a token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (learning.User, error) {
	if err := ValidateToken(token); err != nil {
		return learning.User{}, err
	}

	user, err := s.repo.UserByToken(ctx, token)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return learning.User{}, ErrInvalidToken
	case errors.Is(err, store.ErrTokenOrphaned):
		return learning.User{}, ErrUserNotFound
	case err != nil:
		return learning.User{}, fmt.Errorf("failed to resolve user token: %w", err)
	}

	if err := ValidateUser(user); err != nil {
		return learning.User{}, err
	}
	return user, nil
}

// EligibleIncentives returns the incentives the caller qualifies for.
func (s *Service) EligibleIncentives(ctx context.Context, token string) (*IncentivesView, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	var (
		isManager bool
		catalog   []learning.IncentiveDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		isManager, err = s.repo.IsManager(gctx, user.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = s.catalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if logger.GetLevel() <= logger.LevelDebug {
		for _, def := range catalog {
			if d := learning.Explain(user, isManager, def); !d.Eligible && def.CompanyID == user.CompanyID {
				logger.Debug("incentive not eligible",
					"user_id", user.UserID,
					"incentive_id", def.IncentiveID,
					"gate", string(d.FailedGate),
				)
			}
		}
	}

	eligible := learning.EligibleIncentives(user, isManager, catalog)
	if s.metrics != nil {
		s.metrics.ObserveEligible(len(eligible))
	}

	return &IncentivesView{UserID: user.UserID, Incentives: eligible}, nil
}

// LearningPlan returns the caller's plan with every item resolved.
func (s *Service) LearningPlan(ctx context.Context, token string) (*PlanView, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.LearningPlanByUser(ctx, user.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load learning plan: %w", err)
	}

	items := learning.ResolveItems(plan.Items)

	placeholders := 0
	for _, item := range items {
		if item.IsPlaceholder() {
			placeholders++
			logger.WarnPlaceholderRow()
			logger.Warn("learning plan item has no usable reference",
				"learning_plan_id", plan.LearningPlanID,
				"plan_item_id", item.PlanItemID,
				"item_type", item.ItemType,
			)
		}
	}
	if s.metrics != nil && placeholders > 0 {
		s.metrics.AddPlaceholders(placeholders)
	}

	return &PlanView{UserID: user.UserID, PlanItems: items}, nil
}

// Colleagues returns the users that share the caller's company.
func (s *Service) Colleagues(ctx context.Context, token string) ([]learning.User, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsersByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoActiveUsers
	}
	return users, nil
}

// InvalidateCatalog drops the cached catalog so the next request reloads it.
func (s *Service) InvalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// CatalogCached reports whether a cached catalog is available.
func (s *Service) CatalogCached(ctx context.Context) bool {
	return s.cache != nil && s.cache.IsValid(ctx)
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) catalog(ctx context.Context) ([]learning.IncentiveDefinition, error) {
	if s.cache != nil {
		if catalog, ok := s.cache.Get(ctx); ok {
			if s.metrics != nil {
				s.metrics.IncrementCacheHit()
			}
			return catalog, nil
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss()
	}

	catalog, err := s.repo.ListIncentives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incentive catalog: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, catalog)
	}
	return catalog, nil
}
