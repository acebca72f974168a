package audit

import "math"

// Blending weights. Deterministic evaluation is weighted higher because it
// is reproducible and auditable; contextual evaluation adds nuance but must
// not dominate.
const (
	DeterministicWeight = 0.6
	ContextualWeight    = 0.4
)

// RiskLevel is derived from the Clarity Score alone.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFromScore bands a Clarity Score. Bands are inclusive on their lower
// bound: exactly 80 is low, exactly 60 is medium.
func RiskFromScore(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// CategoryScore is one row of the blended score table.
type CategoryScore struct {
	Category      Category `json:"category"`
	Title         string   `json:"title"`
	MaxPoints     int      `json:"max_points"`
	Deterministic float64  `json:"deterministic"`
	Contextual    float64  `json:"contextual"`
	Blended       int      `json:"blended"`
}

// BlendScores merges the two sub-score maps into the overall Clarity Score,
// its Risk Level, and the per-category table in canonical order.
//
// Per category: blended = round(0.6*deterministic + 0.4*contextual). A
// category missing from either map counts as full marks for that side - in
// particular, contextual categories absent from a partial payload carry no
// contextual penalty. The overall score is the sum of blended values,
// clamped to [0, 100].
func BlendScores(det, ctx map[Category]SubScore) (int, RiskLevel, []CategoryScore) {
	table := make([]CategoryScore, 0, len(categoryOrder))
	overall := 0

	for _, c := range categoryOrder {
		max := c.MaxPoints()

		detVal := float64(max)
		if s, ok := det[c]; ok {
			detVal = clampValue(s.Value, max)
		}
		ctxVal := float64(max)
		if s, ok := ctx[c]; ok {
			ctxVal = clampValue(s.Value, max)
		}

		blended := int(math.Round(DeterministicWeight*detVal + ContextualWeight*ctxVal))
		if blended < 0 {
			blended = 0
		}
		if blended > max {
			blended = max
		}

		table = append(table, CategoryScore{
			Category:      c,
			Title:         c.Title(),
			MaxPoints:     max,
			Deterministic: detVal,
			Contextual:    ctxVal,
			Blended:       blended,
		})
		overall += blended
	}

	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return overall, RiskFromScore(overall), table
}
