package store

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/liamcoop/learningplan/learning"
)

// DemoToken derives the stable token used by the demo dataset for userID.
func DemoToken(userID int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("learningplan-demo-user-"+strconv.Itoa(userID))).String()
}

// SeedDemo fills an in-memory store with a small two-company dataset for
// local runs with STORE_DRIVER=memory. Tokens come from DemoToken.
func SeedDemo(s *InMemoryStore) {
	users := []learning.User{
		{UserID: 1, CompanyID: 1, TenureDays: 1200, FirstName: "Ada", LastName: "Lovelace"},
		{UserID: 2, CompanyID: 1, TenureDays: 400, FirstName: "Grace", LastName: "Hopper"},
		{UserID: 3, CompanyID: 1, TenureDays: 20, FirstName: "Alan", LastName: "Turing"},
		{UserID: 4, CompanyID: 2, TenureDays: 800, FirstName: "Edsger", LastName: "Dijkstra"},
	}
	for _, u := range users {
		_ = s.AddUser(u)
		s.AddToken(DemoToken(u.UserID), u.UserID)
	}

	s.AddRelationship(ManagementRelationship{ManagerID: 1, EmployeeID: 2})
	s.AddRelationship(ManagementRelationship{ManagerID: 1, EmployeeID: 3})

	for _, def := range []learning.IncentiveDefinition{
		{IncentiveID: 1, IncentiveName: "Anniversary Bonus", CompanyID: 1, ServiceRequirementDays: 365, RoleEligibility: learning.RoleAll},
		{IncentiveID: 2, IncentiveName: "Leadership Retreat", CompanyID: 1, ServiceRequirementDays: 365, RoleEligibility: learning.RoleManager},
		{IncentiveID: 3, IncentiveName: "Conference Stipend", CompanyID: 1, ServiceRequirementDays: 180, RoleEligibility: learning.RoleIndividualContributor},
		{IncentiveID: 4, IncentiveName: "Welcome Kit", CompanyID: 2, ServiceRequirementDays: 30, RoleEligibility: learning.RoleAll},
	} {
		s.AddIncentive(def)
	}

	s.AddCourse(learning.Course{CourseID: 7, CourseName: "SQL 101"})
	s.AddCourse(learning.Course{CourseID: 8, CourseName: "Effective Feedback"})

	course7, course8, incentive3 := 7, 8, 3
	s.SetLearningPlan(2, 1, []PlanItemRecord{
		{PlanItemID: 1, Type: learning.ItemTypeCourse, CourseID: &course7},
		{PlanItemID: 2, Type: learning.ItemTypeIncentive, IncentiveID: &incentive3},
		{PlanItemID: 3, Type: learning.ItemTypeCourse, CourseID: &course8},
	})
}
