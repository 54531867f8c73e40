package domain

// PlanTier is the subscription tier
type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanPaid PlanTier = "paid"
)

// ParsePlanTier maps any unknown tier to free
func ParsePlanTier(s string) PlanTier {
	if PlanTier(s) == PlanPaid {
		return PlanPaid
	}
	return PlanFree
}

// Ptr returns a pointer to v, for optional log fields
func Ptr[T any](v T) *T {
	return &v
}
