package audit

// ContextualStatus tags the outcome of the contextual evaluation. The
// contextual layer never throws the audit off a cliff: anything short of
// strict-mode unavailability resolves into a still-valid report.
type ContextualStatus string

const (
	// ContextualOK - the provider returned a payload that survived schema
	// validation and was mapped into sub-scores.
	ContextualOK ContextualStatus = "ok"
	// ContextualDegraded - the provider responded but the payload stayed
	// malformed after repair attempts; contextual side contributes no
	// penalty.
	ContextualDegraded ContextualStatus = "degraded"
	// ContextualUnavailableStatus - timeout, transport failure, or
	// cancellation; no payload at all.
	ContextualUnavailableStatus ContextualStatus = "unavailable"
	// ContextualDisabled - no provider configured for this run.
	ContextualDisabled ContextualStatus = "disabled"
)

// AcceptanceCriterion is one generated Given/When/Then triple. Criteria are
// forwarded verbatim from the contextual side; the deterministic evaluator
// never fabricates them.
type AcceptanceCriterion struct {
	Given string `json:"given"`
	When  string `json:"when"`
	Then  string `json:"then"`
}

// ContextualOutcome is the tagged result of one contextual evaluation:
// exactly one of OK (scores present), Degraded (reason present), or
// Unavailable (err present). Disabled behaves like Degraded with a fixed
// reason.
type ContextualOutcome struct {
	Status   ContextualStatus
	Scores   map[Category]SubScore
	Summary  string
	Criteria []AcceptanceCriterion
	Reason   string
	Err      error
	Model    string
	Attempts int
}

// OutcomeOK wraps a successfully mapped payload.
func OutcomeOK(scores map[Category]SubScore, summary string, criteria []AcceptanceCriterion) ContextualOutcome {
	return ContextualOutcome{
		Status:   ContextualOK,
		Scores:   scores,
		Summary:  summary,
		Criteria: criteria,
	}
}

// OutcomeDegraded records a provider response that never became a valid
// payload.
func OutcomeDegraded(reason string) ContextualOutcome {
	return ContextualOutcome{Status: ContextualDegraded, Reason: reason}
}

// OutcomeUnavailable records a transport-level failure.
func OutcomeUnavailable(err error) ContextualOutcome {
	reason := "contextual provider unavailable"
	if err != nil {
		reason = err.Error()
	}
	return ContextualOutcome{Status: ContextualUnavailableStatus, Reason: reason, Err: err}
}

// OutcomeDisabled records that no provider was configured.
func OutcomeDisabled() ContextualOutcome {
	return ContextualOutcome{Status: ContextualDisabled, Reason: "contextual evaluation disabled"}
}

// Usable reports whether the outcome carries mapped sub-scores.
func (o ContextualOutcome) Usable() bool {
	return o.Status == ContextualOK
}

// Failed reports whether the provider was unreachable (the only outcome
// strict mode refuses to degrade).
func (o ContextualOutcome) Failed() bool {
	return o.Status == ContextualUnavailableStatus
}
