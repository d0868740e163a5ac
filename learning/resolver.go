package learning

// PlaceholderName and PlaceholderID stand in for a plan item whose referenced
// record is missing.
const (
	PlaceholderName = "No Name"
	PlaceholderID   = 0
)

// ResolveItems flattens plan items into display rows, one per input and in
// the same order. It never fails: an item without a usable reference
// resolves to the placeholder name and id.
func ResolveItems(items []LearningPlanItem) []ResolvedLearningItem {
	resolved := make([]ResolvedLearningItem, 0, len(items))
	for _, item := range items {
		resolved = append(resolved, resolveItem(item))
	}
	return resolved
}

func resolveItem(item LearningPlanItem) ResolvedLearningItem {
	out := ResolvedLearningItem{
		PlanItemID: item.PlanItemID,
		ItemType:   item.Type.String(),
		ItemName:   PlaceholderName,
		ItemID:     PlaceholderID,
	}

	switch ref := item.Ref.(type) {
	case *Course:
		// A course payload only counts under the course discriminant.
		if item.Type == ItemTypeCourse && ref != nil {
			out.ItemName = ref.CourseName
			out.ItemID = ref.CourseID
		}
	case *IncentiveDefinition:
		if ref != nil {
			out.ItemName = ref.IncentiveName
			out.ItemID = ref.IncentiveID
		}
	}

	return out
}

// IsPlaceholder reports whether the row was produced from a plan item with no
// usable reference.
func (r ResolvedLearningItem) IsPlaceholder() bool {
	return r.ItemName == PlaceholderName && r.ItemID == PlaceholderID
}
