package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liamcoop/learningplan/learning"
	_ "github.com/lib/pq"
)

// PostgresStore implements Repository backed by PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed Repository
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// UserByToken resolves a token to its user. A token whose user was deleted
// returns ErrTokenOrphaned.
func (s *PostgresStore) UserByToken(ctx context.Context, token string) (learning.User, error) {
	var (
		userID                sql.NullInt64
		companyID, tenureDays sql.NullInt64
		firstName, lastName   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.user_id, u.company_id, u.tenure_days, u.first_name, u.last_name
		FROM user_tokens ut
		LEFT JOIN users u ON u.user_id = ut.user_id
		WHERE ut.token = $1
	`, token).Scan(&userID, &companyID, &tenureDays, &firstName, &lastName)

	if errors.Is(err, sql.ErrNoRows) {
		return learning.User{}, fmt.Errorf("token: %w", ErrNotFound)
	}
	if err != nil {
		return learning.User{}, fmt.Errorf("failed to resolve token: %w", err)
	}
	if !userID.Valid {
		return learning.User{}, fmt.Errorf("token: %w", ErrTokenOrphaned)
	}

	return learning.User{
		UserID:     int(userID.Int64),
		CompanyID:  int(companyID.Int64),
		TenureDays: int(tenureDays.Int64),
		FirstName:  firstName.String,
		LastName:   lastName.String,
	}, nil
}

// IsManager reports whether the user appears as a manager in any relationship
func (s *PostgresStore) IsManager(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM management_relationships WHERE manager_id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check manager status: %w", err)
	}
	return exists, nil
}

// ListUsersByCompany returns the company's users ordered by id
func (s *PostgresStore) ListUsersByCompany(ctx context.Context, companyID int) ([]learning.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, company_id, tenure_days, first_name, last_name
		FROM users
		WHERE company_id = $1
		ORDER BY user_id ASC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []learning.User{}
	for rows.Next() {
		var u learning.User
		if err := rows.Scan(&u.UserID, &u.CompanyID, &u.TenureDays, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// ListIncentives returns the full incentive catalog ordered by id
func (s *PostgresStore) ListIncentives(ctx context.Context) ([]learning.IncentiveDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT incentive_id, incentive_name, company_id, service_requirement_days, role_eligibility
		FROM incentives
		ORDER BY incentive_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list incentives: %w", err)
	}
	defer rows.Close()

	catalog := []learning.IncentiveDefinition{}
	for rows.Next() {
		var (
			def  learning.IncentiveDefinition
			role int
		)
		if err := rows.Scan(&def.IncentiveID, &def.IncentiveName, &def.CompanyID,
			&def.ServiceRequirementDays, &role); err != nil {
			return nil, fmt.Errorf("failed to scan incentive: %w", err)
		}
		def.RoleEligibility = learning.RoleEligibility(role)
		catalog = append(catalog, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incentives: %w", err)
	}

	return catalog, nil
}

// LearningPlanByUser loads the user's plan with course and incentive
// references joined in item id order
func (s *PostgresStore) LearningPlanByUser(ctx context.Context, userID int) (*learning.LearningPlan, error) {
	plan := &learning.LearningPlan{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT learning_plan_id FROM learning_plans WHERE user_id = $1
	`, userID).Scan(&plan.LearningPlanID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learning plan for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning plan: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT lpi.learning_plan_item_id, lpi.learning_item_type,
		       c.course_id, c.course_name,
		       i.incentive_id, i.incentive_name, i.company_id,
		       i.service_requirement_days, i.role_eligibility
		FROM learning_plan_items lpi
		LEFT JOIN courses c ON c.course_id = lpi.course_id
		LEFT JOIN incentives i ON i.incentive_id = lpi.incentive_id
		WHERE lpi.learning_plan_id = $1
		ORDER BY lpi.learning_plan_item_id ASC
	`, plan.LearningPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning plan items: %w", err)
	}
	defer rows.Close()

	plan.Items = []learning.LearningPlanItem{}
	for rows.Next() {
		var (
			itemID, itemType                    int
			courseID                            sql.NullInt64
			courseName                          sql.NullString
			incentiveID, companyID, serviceDays sql.NullInt64
			incentiveName                       sql.NullString
			role                                sql.NullInt64
		)
		if err := rows.Scan(&itemID, &itemType, &courseID, &courseName,
			&incentiveID, &incentiveName, &companyID, &serviceDays, &role); err != nil {
			return nil, fmt.Errorf("failed to scan learning plan item: %w", err)
		}

		var course *learning.Course
		if courseID.Valid {
			course = &learning.Course{CourseID: int(courseID.Int64), CourseName: courseName.String}
		}
		var incentive *learning.IncentiveDefinition
		if incentiveID.Valid {
			incentive = &learning.IncentiveDefinition{
				IncentiveID:            int(incentiveID.Int64),
				IncentiveName:          incentiveName.String,
				CompanyID:              int(companyID.Int64),
				ServiceRequirementDays: int(serviceDays.Int64),
				RoleEligibility:        learning.RoleEligibility(role.Int64),
			}
		}

		plan.Items = append(plan.Items, learning.NewPlanItem(itemID, learning.ItemType(itemType), course, incentive))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learning plan items: %w", err)
	}

	return plan, nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
