package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"speclens/ai"
	"speclens/domain/core"
)

// contextualSchemaJSON is the contract the provider's payload must satisfy
// before anything is mapped into sub-scores.
const contextualSchemaJSON = `{
  "type": "object",
  "required": ["categories"],
  "properties": {
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "findings"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "findings": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["severity", "message"],
              "properties": {
                "severity": { "type": "string", "enum": ["info", "warning", "critical"] },
                "message": { "type": "string", "minLength": 1 },
                "suggested_rewrite": { "type": "string" }
              }
            }
          }
        }
      }
    },
    "executive_summary": { "type": "string" },
    "acceptance_criteria": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["given", "when", "then"],
        "properties": {
          "given": { "type": "string", "minLength": 1 },
          "when": { "type": "string", "minLength": 1 },
          "then": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`

// promptSchema is the shape shown to the model inside the prompt. It reads
// as an example rather than as formal JSON Schema.
const promptSchema = `{
  "categories": [
    {
      "name": "contract_completeness | measurability | edge_case_coverage | specificity_ambiguity | risk_awareness | testability_acceptance",
      "findings": [
        {
          "severity": "critical | warning | info",
          "message": "what is wrong, quoting the document where possible",
          "suggested_rewrite": "optional replacement sentence"
        }
      ]
    }
  ],
  "executive_summary": "at most three sentences",
  "acceptance_criteria": [
    { "given": "...", "when": "...", "then": "..." }
  ]
}`

var contextualSchemaLoader = gojsonschema.NewStringLoader(contextualSchemaJSON)

type contextualPayload struct {
	Categories         []payloadCategory  `json:"categories"`
	ExecutiveSummary   string             `json:"executive_summary"`
	AcceptanceCriteria []payloadCriterion `json:"acceptance_criteria"`
}

type payloadCategory struct {
	Name     string           `json:"name"`
	Findings []payloadFinding `json:"findings"`
}

type payloadFinding struct {
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	SuggestedRewrite string `json:"suggested_rewrite"`
}

type payloadCriterion struct {
	Given string `json:"given"`
	When  string `json:"when"`
	Then  string `json:"then"`
}

// parsePayload extracts, validates, and decodes the provider's response.
// Every failure is a malformed-payload error carrying enough detail for the
// repair prompt to quote back to the model.
func parsePayload(content string) (*contextualPayload, error) {
	cleaned := ai.ExtractJSONPayload(content)
	if cleaned == "" {
		return nil, core.NewMalformedPayloadError("response contains no JSON object")
	}

	result, err := gojsonschema.Validate(contextualSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, core.NewMalformedPayloadError(fmt.Sprintf("payload is not valid JSON: %v", err))
	}
	if !result.Valid() {
		return nil, core.NewMalformedPayloadError(schemaIssues(result))
	}

	var payload contextualPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, core.NewMalformedPayloadError(fmt.Sprintf("payload does not decode: %v", err))
	}

	return &payload, nil
}

// schemaIssues flattens validation errors into one line the repair prompt
// can embed.
func schemaIssues(result *gojsonschema.Result) string {
	issues := make([]string, 0, len(result.Errors()))
	for i, desc := range result.Errors() {
		if i == 5 {
			issues = append(issues, fmt.Sprintf("and %d more", len(result.Errors())-i))
			break
		}
		issues = append(issues, desc.String())
	}
	return "schema violations: " + strings.Join(issues, "; ")
}
