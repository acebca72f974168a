package checklist

import (
	"speclens/domain/audit"
	"speclens/domain/document"
)

// Evaluate applies every rule to the document view and returns one
// sub-score per category. Rules run in library order within each category;
// a failing rule deducts its weight from the category max, floored at 0,
// and contributes its findings. No I/O, no randomness: identical input
// yields identical output on every call.
func (l *Library) Evaluate(v document.View) map[audit.Category]audit.SubScore {
	out := make(map[audit.Category]audit.SubScore, len(audit.Categories()))

	for _, c := range audit.Categories() {
		max := c.MaxPoints()
		deducted := 0
		var findings []audit.Finding

		for _, r := range l.byCategory[c] {
			fs := r.predicate(v)
			if len(fs) == 0 {
				continue
			}
			deducted += r.Weight
			findings = append(findings, fs...)
		}

		value := float64(max - deducted)
		if value < 0 {
			value = 0
		}
		out[c] = audit.SubScore{Category: c, Value: value, Findings: findings}
	}

	return out
}
