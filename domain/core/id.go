package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AuditID ID
	RuleID  ID
)

// String conversions for domain IDs
func (id AuditID) String() string { return ID(id).String() }
func (id RuleID) String() string  { return ID(id).String() }

// NewAuditID creates a fresh identifier for an audit run
func NewAuditID() AuditID {
	return AuditID(NewID())
}

// ParseAuditID parses a string into AuditID
func ParseAuditID(s string) (AuditID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("audit ID cannot be empty")
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("audit ID must be a UUID: %w", err)
	}
	return AuditID(trimmed), nil
}

// ParseRuleID parses a string into RuleID
func ParseRuleID(s string) (RuleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("rule ID cannot be empty")
	}
	return RuleID(s), nil
}
