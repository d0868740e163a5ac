package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/liamcoop/learningplan/learning"
)

var (
	// ErrNotFound is returned when a token, user, or plan does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTokenOrphaned is returned when a token exists but its user does not.
	ErrTokenOrphaned = errors.New("token has no user")
)

// Repository loads the read-only facts the access layer needs.
type Repository interface {
	// UserByToken resolves an opaque user token.
	UserByToken(ctx context.Context, token string) (learning.User, error)

	// IsManager reports whether the user manages anyone.
	IsManager(ctx context.Context, userID int) (bool, error)

	// ListUsersByCompany returns the company's users ordered by id.
	ListUsersByCompany(ctx context.Context, companyID int) ([]learning.User, error)

	// ListIncentives returns the full incentive catalog ordered by id.
	ListIncentives(ctx context.Context) ([]learning.IncentiveDefinition, error)

	// LearningPlanByUser returns the user's plan with item references joined.
	LearningPlanByUser(ctx context.Context, userID int) (*learning.LearningPlan, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// ManagementRelationship records that ManagerID manages EmployeeID.
type ManagementRelationship struct {
	ManagerID  int
	EmployeeID int
}

// PlanItemRecord mirrors a learning_plan_items row, with the two nullable
// references still separate.
type PlanItemRecord struct {
	PlanItemID  int
	Type        learning.ItemType
	CourseID    *int
	IncentiveID *int
}

// InMemoryStore implements Repository with slices guarded by an RWMutex.
// Insertion order is preserved.
type InMemoryStore struct {
	users         []learning.User
	tokens        map[string]int
	relationships []ManagementRelationship
	incentives    []learning.IncentiveDefinition
	courses       map[int]learning.Course
	plans         map[int]planRecord
	mu            sync.RWMutex
}

type planRecord struct {
	id    int
	items []PlanItemRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tokens:  make(map[string]int),
		courses: make(map[int]learning.Course),
		plans:   make(map[int]planRecord),
	}
}

// AddUser adds a user. User ids must be unique.
func (s *InMemoryStore) AddUser(u learning.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.UserID == u.UserID {
			return fmt.Errorf("user with ID %d already exists", u.UserID)
		}
	}
	s.users = append(s.users, u)
	return nil
}

// RemoveUser deletes a user while leaving its tokens behind.
func (s *InMemoryStore) RemoveUser(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.UserID == userID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return
		}
	}
}

// AddToken maps a token to a user id.
func (s *InMemoryStore) AddToken(token string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

// AddRelationship records a management relationship.
func (s *InMemoryStore) AddRelationship(r ManagementRelationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships = append(s.relationships, r)
}

// AddIncentive appends an incentive definition to the catalog.
func (s *InMemoryStore) AddIncentive(def learning.IncentiveDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incentives = append(s.incentives, def)
}

// AddCourse adds or replaces a course.
func (s *InMemoryStore) AddCourse(c learning.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.CourseID] = c
}

// SetLearningPlan stores a user's plan, replacing any previous one.
func (s *InMemoryStore) SetLearningPlan(userID, planID int, items []PlanItemRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = planRecord{id: planID, items: append([]PlanItemRecord(nil), items...)}
}

func (s *InMemoryStore) UserByToken(_ context.Context, token string) (learning.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.tokens[token]
	if !ok {
		return learning.User{}, fmt.Errorf("token: %w", ErrNotFound)
	}
	for _, u := range s.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return learning.User{}, fmt.Errorf("user %d: %w", userID, ErrTokenOrphaned)
}

func (s *InMemoryStore) IsManager(_ context.Context, userID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.relationships {
		if r.ManagerID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListUsersByCompany(_ context.Context, companyID int) ([]learning.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []learning.User{}
	for _, u := range s.users {
		if u.CompanyID == companyID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *InMemoryStore) ListIncentives(_ context.Context) ([]learning.IncentiveDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]learning.IncentiveDefinition{}, s.incentives...), nil
}

func (s *InMemoryStore) LearningPlanByUser(_ context.Context, userID int) (*learning.LearningPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.plans[userID]
	if !ok {
		return nil, fmt.Errorf("learning plan for user %d: %w", userID, ErrNotFound)
	}

	plan := &learning.LearningPlan{
		LearningPlanID: rec.id,
		UserID:         userID,
		Items:          make([]learning.LearningPlanItem, 0, len(rec.items)),
	}
	for _, item := range rec.items {
		var course *learning.Course
		if item.CourseID != nil {
			if c, ok := s.courses[*item.CourseID]; ok {
				course = &c
			}
		}
		var incentive *learning.IncentiveDefinition
		if item.IncentiveID != nil {
			incentive = s.incentiveLocked(*item.IncentiveID)
		}
		plan.Items = append(plan.Items, learning.NewPlanItem(item.PlanItemID, item.Type, course, incentive))
	}
	return plan, nil
}

func (s *InMemoryStore) incentiveLocked(id int) *learning.IncentiveDefinition {
	for i := range s.incentives {
		if s.incentives[i].IncentiveID == id {
			def := s.incentives[i]
			return &def
		}
	}
	return nil
}

func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
