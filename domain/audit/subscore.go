package audit

// SubScore is one category's points after deductions, before blending,
// together with the findings that justify the deduction. One deterministic
// and one contextual sub-score exist per category.
type SubScore struct {
	Category Category  `json:"category"`
	Value    float64   `json:"value"`
	Findings []Finding `json:"findings,omitempty"`
}

// clampValue bounds a sub-score to [0, max]. Deductions never push a
// category negative and never carry into other categories.
func clampValue(v float64, max int) float64 {
	if v < 0 {
		return 0
	}
	if m := float64(max); v > m {
		return m
	}
	return v
}

// FullMarks builds a sub-score map with every category at its ceiling and
// no findings. This is the "no penalty" shape used when the contextual
// layer is degraded or absent.
func FullMarks() map[Category]SubScore {
	scores := make(map[Category]SubScore, len(categoryOrder))
	for _, c := range categoryOrder {
		scores[c] = SubScore{Category: c, Value: float64(c.MaxPoints())}
	}
	return scores
}

// ScoreFromFindings maps one category's contextual findings onto a
// sub-score. With n findings observed in the category, each critical
// deducts max/n, each warning deducts max/(2n), and info findings deduct
// nothing (they still count toward n). The result is clamped to [0, max].
func ScoreFromFindings(c Category, findings []Finding) SubScore {
	max := c.MaxPoints()
	if len(findings) == 0 {
		return SubScore{Category: c, Value: float64(max)}
	}

	unit := float64(max) / float64(len(findings))
	deduction := 0.0
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			deduction += unit
		case SeverityWarning:
			deduction += unit / 2
		}
	}

	return SubScore{
		Category: c,
		Value:    clampValue(float64(max)-deduction, max),
		Findings: findings,
	}
}
