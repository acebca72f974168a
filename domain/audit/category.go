package audit

import "fmt"

// Category is one of the six fixed evaluation dimensions. Max points per
// category are fixed and sum to 100; the checklist library re-checks that
// at startup.
type Category string

const (
	ContractCompleteness  Category = "contract_completeness"
	Measurability         Category = "measurability"
	EdgeCaseCoverage      Category = "edge_case_coverage"
	SpecificityAmbiguity  Category = "specificity_ambiguity"
	RiskAwareness         Category = "risk_awareness"
	TestabilityAcceptance Category = "testability_acceptance"
)

// categoryOrder is the canonical weight order used everywhere a report
// lists categories.
var categoryOrder = []Category{
	ContractCompleteness,
	Measurability,
	EdgeCaseCoverage,
	SpecificityAmbiguity,
	RiskAwareness,
	TestabilityAcceptance,
}

var categoryMax = map[Category]int{
	ContractCompleteness:  30,
	Measurability:         20,
	EdgeCaseCoverage:      20,
	SpecificityAmbiguity:  15,
	RiskAwareness:         10,
	TestabilityAcceptance: 5,
}

var categoryTitle = map[Category]string{
	ContractCompleteness:  "Contract Completeness",
	Measurability:         "Measurability",
	EdgeCaseCoverage:      "Edge Case Coverage",
	SpecificityAmbiguity:  "Specificity & Ambiguity",
	RiskAwareness:         "Risk Awareness",
	TestabilityAcceptance: "Testability & Acceptance",
}

// Categories returns all categories in canonical weight order. Callers must
// not mutate the returned slice.
func Categories() []Category {
	return categoryOrder
}

// MaxPoints returns the fixed point ceiling for the category, 0 for unknown
// categories.
func (c Category) MaxPoints() int {
	return categoryMax[c]
}

// Title returns the human-readable category name.
func (c Category) Title() string {
	if t, ok := categoryTitle[c]; ok {
		return t
	}
	return string(c)
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	_, ok := categoryMax[c]
	return ok
}

// Order returns the category's index in canonical order. Unknown categories
// sort last.
func (c Category) Order() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}
	return len(categoryOrder)
}

// ParseCategory maps a wire name onto a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// TotalMaxPoints sums the category ceilings; always 100.
func TotalMaxPoints() int {
	total := 0
	for _, max := range categoryMax {
		total += max
	}
	return total
}
