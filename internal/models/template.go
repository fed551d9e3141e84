package models

// Workout catalog categories.
const (
	CategoryEasy     = "easy"
	CategoryLong     = "long"
	CategoryTempo    = "tempo"
	CategoryInterval = "interval"
	CategoryRecovery = "recovery"
)

// WorkoutTemplate is a canned session description from a workout catalog.
type WorkoutTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	MinLevel    string   `json:"min_level"`
	Phases      []string `json:"phases"`
	Tips        []string `json:"tips,omitempty"`
}

// CategoryForType maps a workout type to its catalog category.
func CategoryForType(t string) string {
	switch {
	case t == TypeEasyRun:
		return CategoryEasy
	case IsLongRunType(t):
		return CategoryLong
	case t == TypeTempoRun || t == TypeFartlek:
		return CategoryTempo
	case IsQualityType(t):
		return CategoryInterval
	default:
		return CategoryRecovery
	}
}
