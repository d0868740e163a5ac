package main

import "github.com/liamcoop/learningplan/learning"

// API Response Models with Swagger annotations

// IncentivesResponse represents the response for GET /incentives
type IncentivesResponse struct {
	UserID     int                          `json:"userId" example:"2"`
	Incentives []learning.EligibleIncentive `json:"incentives"`
} // @name IncentivesResponse

// LearningPlanResponse represents the response for GET /learning-plan
type LearningPlanResponse struct {
	UserID    int                             `json:"userId" example:"2"`
	PlanItems []learning.ResolvedLearningItem `json:"planItems"`
} // @name LearningPlanResponse

// UserResponse represents a colleague in GET /users
type UserResponse struct {
	UserID    int    `json:"userId" example:"1"`
	FirstName string `json:"firstName" example:"Ada"`
	LastName  string `json:"lastName" example:"Lovelace"`
} // @name UserResponse

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid token."`
} // @name ErrorResponse

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	CatalogCached bool   `json:"catalogCached" example:"true"`
	Error         string `json:"error,omitempty"`
} // @name HealthResponse
