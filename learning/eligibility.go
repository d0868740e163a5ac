package learning

// Gate names the eligibility check that rejected an incentive.
type Gate string

const (
	GateNone    Gate = ""
	GateTenure  Gate = "tenure"
	GateCompany Gate = "company"
	GateRole    Gate = "role"
)

// Decision is the outcome of evaluating one incentive for one user.
type Decision struct {
	Incentive  IncentiveDefinition
	Eligible   bool
	FailedGate Gate
}

// Explain evaluates a single definition and reports the first gate it fails.
// Gates run in order: tenure, company, role.
func Explain(user User, isManager bool, def IncentiveDefinition) Decision {
	d := Decision{Incentive: def}
	switch {
	case def.ServiceRequirementDays > user.TenureDays:
		d.FailedGate = GateTenure
	case def.CompanyID != user.CompanyID:
		d.FailedGate = GateCompany
	case !roleAllows(def.RoleEligibility, isManager):
		d.FailedGate = GateRole
	default:
		d.Eligible = true
	}
	return d
}

// roleAllows is closed over the known roles; unknown values never match.
func roleAllows(role RoleEligibility, isManager bool) bool {
	switch role {
	case RoleAll:
		return true
	case RoleIndividualContributor:
		return !isManager
	case RoleManager:
		return isManager
	default:
		return false
	}
}

// EligibleIncentives filters catalog down to the incentives user qualifies
// for, preserving catalog order. The result is never nil.
func EligibleIncentives(user User, isManager bool, catalog []IncentiveDefinition) []EligibleIncentive {
	eligible := make([]EligibleIncentive, 0, len(catalog))
	for _, def := range catalog {
		if !Explain(user, isManager, def).Eligible {
			continue
		}
		eligible = append(eligible, EligibleIncentive{
			IncentiveID:        def.IncentiveID,
			IncentiveName:      def.IncentiveName,
			ServiceRequirement: def.ServiceRequirementDays,
			RoleEligibility:    def.RoleEligibility.String(),
		})
	}
	return eligible
}
