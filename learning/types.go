package learning

import "fmt"

// User is the caller as seen by the core. Manager status is not stored here;
// the access layer derives it from management relationships.
type User struct {
	UserID     int
	CompanyID  int
	TenureDays int
	FirstName  string
	LastName   string
}

// RoleEligibility restricts an incentive to a subset of employees.
type RoleEligibility int

const (
	RoleAll RoleEligibility = iota
	RoleIndividualContributor
	RoleManager
)

func (r RoleEligibility) String() string {
	switch r {
	case RoleAll:
		return "All"
	case RoleIndividualContributor:
		return "IndividualContributor"
	case RoleManager:
		return "Manager"
	default:
		return fmt.Sprintf("RoleEligibility(%d)", int(r))
	}
}

// ParseRoleEligibility converts a label back into a RoleEligibility.
func ParseRoleEligibility(s string) (RoleEligibility, error) {
	switch s {
	case "All":
		return RoleAll, nil
	case "IndividualContributor":
		return RoleIndividualContributor, nil
	case "Manager":
		return RoleManager, nil
	default:
		return 0, fmt.Errorf("unknown role eligibility %q", s)
	}
}

// IncentiveDefinition is catalog reference data for one incentive program.
type IncentiveDefinition struct {
	IncentiveID            int             `json:"incentiveId"`
	IncentiveName          string          `json:"incentiveName"`
	CompanyID              int             `json:"companyId"`
	ServiceRequirementDays int             `json:"serviceRequirementDays"`
	RoleEligibility        RoleEligibility `json:"roleEligibility"`
}

// EligibleIncentive is the projection returned to a qualifying user.
type EligibleIncentive struct {
	IncentiveID        int    `json:"incentiveId"`
	IncentiveName      string `json:"incentiveName"`
	ServiceRequirement int    `json:"serviceRequirement"`
	RoleEligibility    string `json:"roleEligibility"`
}

// Course is a catalog course referenced by plan items.
type Course struct {
	CourseID   int
	CourseName string
}

// ItemType discriminates the payload of a LearningPlanItem.
type ItemType int

const (
	ItemTypeCourse ItemType = iota
	ItemTypeIncentive
)

func (t ItemType) String() string {
	switch t {
	case ItemTypeCourse:
		return "Course"
	case ItemTypeIncentive:
		return "Incentive"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

// ItemRef is the payload of a plan item: *Course or *IncentiveDefinition.
type ItemRef interface {
	itemRef()
}

func (*Course) itemRef()              {}
func (*IncentiveDefinition) itemRef() {}

// LearningPlanItem is one row of a learning plan. Ref is nil when the
// referenced record is missing.
type LearningPlanItem struct {
	PlanItemID int
	Type       ItemType
	Ref        ItemRef
}

// NewPlanItem builds a plan item from a storage row that carries two nullable
// references. The reference selected by the discriminant wins; a course row
// without its course falls back to the incentive reference.
func NewPlanItem(planItemID int, itemType ItemType, course *Course, incentive *IncentiveDefinition) LearningPlanItem {
	item := LearningPlanItem{PlanItemID: planItemID, Type: itemType}
	switch {
	case itemType == ItemTypeCourse && course != nil:
		item.Ref = course
	case incentive != nil:
		item.Ref = incentive
	}
	return item
}

// LearningPlan is a user's ordered curriculum.
type LearningPlan struct {
	LearningPlanID int
	UserID         int
	Items          []LearningPlanItem
}

// ResolvedLearningItem is the uniform display form of a plan item.
type ResolvedLearningItem struct {
	PlanItemID int    `json:"planItemId"`
	ItemType   string `json:"itemType"`
	ItemName   string `json:"itemName"`
	ItemID     int    `json:"itemId"`
}
