package llm

import (
	"context"

	"speclens/domain/audit"
	"speclens/ports"
)

// DisabledAuditor stands in when no provider is configured. Every audit
// takes the no-penalty path with a disabled caveat.
type DisabledAuditor struct{}

func NewDisabledAuditor() *DisabledAuditor { return &DisabledAuditor{} }

func (DisabledAuditor) Evaluate(ctx context.Context, req ports.ContextualRequest) audit.ContextualOutcome {
	return audit.OutcomeDisabled()
}
