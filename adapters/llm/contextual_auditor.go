package llm

import (
	"context"
	"fmt"
	"strings"

	"speclens/ai"
	"speclens/domain/audit"
	"speclens/internal"
	"speclens/ports"
)

const (
	auditPromptName  = "contextual_audit"
	repairPromptName = "contextual_repair"

	// maxRepairAttempts bounds re-prompts after the initial request. The
	// audit issues at most 1 + maxRepairAttempts provider calls.
	maxRepairAttempts = 2

	// maxQuotedResponse caps how much of an invalid response the repair
	// prompt quotes back.
	maxQuotedResponse = 2000

	systemPrompt = "You are a precise requirements auditor. Respond with valid JSON only."
)

// ContextualAuditor drives the model-assisted evaluation: one request per
// audit, schema validation on the reply, up to two repair re-prompts, and a
// tagged outcome that never aborts report assembly on its own.
type ContextualAuditor struct {
	provider    ports.CompletionProvider
	prompts     *ai.PromptManager
	temperature float64
	maxTokens   int
	logger      *internal.Logger
}

// NewContextualAuditor wires a provider and prompt source into an auditor
func NewContextualAuditor(provider ports.CompletionProvider, prompts *ai.PromptManager, temperature float64, maxTokens int) *ContextualAuditor {
	return &ContextualAuditor{
		provider:    provider,
		prompts:     prompts,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      internal.NewDefaultLogger().With("ContextualAuditor"),
	}
}

// Evaluate sends the document to the provider and maps the reply into
// contextual sub-scores. Transport failures and cancellation come back as
// unavailable; payloads still malformed after repairs come back degraded.
func (a *ContextualAuditor) Evaluate(ctx context.Context, req ports.ContextualRequest) audit.ContextualOutcome {
	basePrompt, err := a.prompts.RenderPrompt(auditPromptName, map[string]string{
		"DOCUMENT": req.Text,
		"DOMAIN":   req.Domain,
		"SCHEMA":   promptSchema,
	})
	if err != nil {
		return audit.OutcomeUnavailable(fmt.Errorf("render audit prompt: %w", err))
	}

	var (
		attempts    int
		lastErr     error
		lastContent string
	)

	for attempt := 0; attempt <= maxRepairAttempts; attempt++ {
		prompt := basePrompt
		if attempt > 0 {
			prompt, err = a.prompts.RenderPrompt(repairPromptName, map[string]string{
				"ERROR":    lastErr.Error(),
				"PREVIOUS": clipResponse(lastContent),
				"SCHEMA":   promptSchema,
				"DOCUMENT": req.Text,
				"DOMAIN":   req.Domain,
			})
			if err != nil {
				lastErr = err
				break
			}
		}

		resp, callErr := a.provider.Complete(ctx, ports.CompletionRequest{
			System:      systemPrompt,
			Prompt:      prompt,
			Temperature: a.temperature,
			MaxTokens:   a.maxTokens,
		})
		attempts++
		if callErr != nil {
			// Transport-level failure; a repair prompt cannot fix this.
			a.logger.Warn("Provider call failed on attempt %d: %v", attempts, callErr)
			out := audit.OutcomeUnavailable(callErr)
			out.Attempts = attempts
			return out
		}

		payload, parseErr := parsePayload(resp.Content)
		if parseErr != nil {
			a.logger.Warn("Attempt %d payload rejected: %v", attempts, parseErr)
			if a.logger.GetLevel() >= internal.LogLevelDebug {
				a.logger.Debug("Rejected payload body: %s", clipResponse(resp.Content))
			}
			lastErr = parseErr
			lastContent = resp.Content
			continue
		}

		out := a.mapPayload(payload)
		out.Model = responseModel(resp, a.provider)
		out.Attempts = attempts
		a.logger.Info("Payload accepted on attempt %d - categories=%d, criteria=%d",
			attempts, len(out.Scores), len(out.Criteria))
		return out
	}

	if ctx.Err() != nil {
		out := audit.OutcomeUnavailable(ctx.Err())
		out.Attempts = attempts
		return out
	}

	reason := "contextual payload failed validation"
	if lastErr != nil {
		reason = fmt.Sprintf("contextual payload failed validation after %d attempts: %v", attempts, lastErr)
	}
	a.logger.Warn("Giving up after %d attempts, degrading to no contextual penalty", attempts)
	out := audit.OutcomeDegraded(reason)
	out.Model = a.provider.ID()
	out.Attempts = attempts
	return out
}

// mapPayload turns a validated payload into per-category sub-scores.
// Category blocks with unrecognized names are skipped; duplicated blocks
// merge their findings before scoring.
func (a *ContextualAuditor) mapPayload(payload *contextualPayload) audit.ContextualOutcome {
	byCategory := make(map[audit.Category][]audit.Finding)

	for _, block := range payload.Categories {
		category, err := audit.ParseCategory(block.Name)
		if err != nil {
			a.logger.Debug("Skipping unknown category %q in payload", block.Name)
			continue
		}
		for _, f := range block.Findings {
			message := strings.TrimSpace(f.Message)
			if message == "" {
				continue
			}
			byCategory[category] = append(byCategory[category], audit.Finding{
				Category:         category,
				Severity:         audit.Severity(f.Severity),
				Source:           audit.SourceContextual,
				Message:          message,
				SuggestedRewrite: strings.TrimSpace(f.SuggestedRewrite),
			})
		}
		if _, seen := byCategory[category]; !seen {
			byCategory[category] = nil
		}
	}

	scores := make(map[audit.Category]audit.SubScore, len(byCategory))
	for category, findings := range byCategory {
		scores[category] = audit.ScoreFromFindings(category, findings)
	}

	criteria := make([]audit.AcceptanceCriterion, 0, len(payload.AcceptanceCriteria))
	for _, c := range payload.AcceptanceCriteria {
		criteria = append(criteria, audit.AcceptanceCriterion{
			Given: strings.TrimSpace(c.Given),
			When:  strings.TrimSpace(c.When),
			Then:  strings.TrimSpace(c.Then),
		})
	}

	return audit.OutcomeOK(scores, strings.TrimSpace(payload.ExecutiveSummary), criteria)
}

func responseModel(resp *ports.CompletionResponse, provider ports.CompletionProvider) string {
	if resp.Model != "" {
		return resp.Model
	}
	return provider.ID()
}

func clipResponse(s string) string {
	if len(s) <= maxQuotedResponse {
		return s
	}
	return s[:maxQuotedResponse] + "..."
}
