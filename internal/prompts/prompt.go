// Package prompts manages the instruction text sent with each LLM batch.
// Every stage has built-in instructions and a fixed response spec; an
// operator may store named overrides and activate one per stage.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxInstructionRunes bounds the length of override instructions.
const MaxInstructionRunes = 8000

// Prompt is a named instruction override for a stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// Source names where a stage's effective instructions come from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceOverride Source = "override"
)

// Effective is what the next batch of a stage carries: the instructions in
// force, the response spec the reconciliation parser accepts, and the
// override that replaced the built-in text, if any.
type Effective struct {
	Stage        Stage   `json:"stage"`
	Source       Source  `json:"source"`
	Instructions string  `json:"instructions"`
	Spec         string  `json:"spec"`
	Override     *Prompt `json:"override,omitempty"`
}

// CreateCommand carries a new instruction override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate trims the command and checks the override is usable.
func (c *CreateCommand) Validate() error {
	return validateOverride(&c.Name, &c.Instructions)
}

// UpdateCommand replaces every field of an existing override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate trims the command and checks the override is usable.
func (c *UpdateCommand) Validate() error {
	return validateOverride(&c.Name, &c.Instructions)
}

// validateOverride trims name and instructions in place.
func validateOverride(name, instructions *string) error {
	*name = strings.TrimSpace(*name)
	*instructions = strings.TrimSpace(*instructions)

	if *name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPrompt)
	}
	if *instructions == "" {
		return fmt.Errorf("%w: instructions are required", ErrInvalidPrompt)
	}
	if n := utf8.RuneCountInString(*instructions); n > MaxInstructionRunes {
		return fmt.Errorf("%w: instructions are %d characters, limit %d", ErrInvalidPrompt, n, MaxInstructionRunes)
	}
	return nil
}
