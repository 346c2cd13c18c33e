package video

import (
	"fmt"

	"github.com/sydlexius/janitor/internal/kodi"
	"github.com/sydlexius/janitor/internal/settings"
)

// Operator is a Kodi filter operator.
type Operator string

const (
	GreaterThan    Operator = "greaterthan"
	NotInTheLast   Operator = "notinthelast"
	LessThan       Operator = "lessthan"
	IsNot          Operator = "isnot"
	IsFalse        Operator = "false"
	DoesNotContain Operator = "doesnotcontain"
)

// Condition is a single field/operator/value rule.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// FilterSet is a conjunction of conditions.
type FilterSet struct {
	And []Condition `json:"and"`
}

var playedOnce = Condition{Field: "playcount", Operator: GreaterThan, Value: "0"}

// BuildFilter turns the user's settings into the filter for category c.
// Conditions on fields the category does not support are left out.
func BuildFilter(s settings.Settings, c Category) FilterSet {
	type candidate struct {
		enabled bool
		cond    Condition
	}
	candidates := []candidate{
		{s.EnableExpiration, Condition{"lastplayed", NotInTheLast, fmt.Sprintf("%f", s.ExpireAfter)}},
		{s.CleanWhenLowRated, Condition{"rating", LessThan, fmt.Sprintf("%f", s.MinimumRating)}},
		{s.NotInProgress, Condition{"inprogress", IsFalse, ""}},
	}
	for _, excl := range s.Exclusions() {
		candidates = append(candidates, candidate{true, Condition{"path", DoesNotContain, excl}})
	}
	// A rating of 0 means "unrated"; only relevant next to the low rating rule.
	if s.CleanWhenLowRated {
		candidates = append(candidates, candidate{s.IgnoreNoRating, Condition{"rating", IsNot, "0"}})
	}

	set := FilterSet{And: []Condition{playedOnce}}
	for _, cand := range candidates {
		if cand.enabled && c.Supports(cand.cond.Field) {
			set.And = append(set.And, cand.cond)
		}
	}
	return set
}

type queryParams struct {
	Properties []string  `json:"properties"`
	Filter     FilterSet `json:"filter"`
}

// Query builds the complete library request for category c.
func Query(s settings.Settings, c Category) kodi.Request {
	return kodi.Request{
		Method: c.Method(),
		Params: queryParams{Properties: c.Properties(), Filter: BuildFilter(s, c)},
	}
}
