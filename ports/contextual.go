package ports

import (
	"context"

	"speclens/domain/audit"
)

// ContextualRequest is the document slice handed to the contextual evaluator
type ContextualRequest struct {
	Text      string
	Domain    string
	Truncated bool
}

// ContextualAuditor runs the model-assisted half of an audit. It never
// returns an error: failures are folded into the outcome so the caller
// decides between degrading and aborting.
type ContextualAuditor interface {
	Evaluate(ctx context.Context, req ContextualRequest) audit.ContextualOutcome
}
