package state

import (
	"fmt"
	"strings"
)

// Reason explains why an article was rejected.
type Reason string

const (
	ReasonCutline   Reason = "cutline"
	ReasonDuplicate Reason = "duplicate"
	ReasonManual    Reason = "manual"
	ReasonUnknown   Reason = "unknown"
)

// ParseReason parses a rejection reason. An empty string is manual.
func ParseReason(s string) (Reason, error) {
	switch r := Reason(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return ReasonManual, nil
	case ReasonCutline, ReasonDuplicate, ReasonManual, ReasonUnknown:
		return r, nil
	default:
		return "", fmt.Errorf("unknown rejection reason %q", s)
	}
}
