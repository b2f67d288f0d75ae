package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/zeroecho/pkg/pagination"
)

// System manages the instruction overrides sent with scoring and
// classification batches.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	// Delete removes an override. The active override of a stage cannot be
	// deleted (ErrActive).
	Delete(ctx context.Context, id uuid.UUID) error
	// Activate makes the override the one its stage's batches carry,
	// replacing any other active override of that stage.
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	// Deactivate returns the override's stage to the built-in instructions.
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Effective reports what the next batch of stage carries.
	Effective(ctx context.Context, stage Stage) (*Effective, error)

	// Instructions returns the active override for stage, or the built-in
	// default when none is active.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the response format the reconciliation parser expects.
	Spec(ctx context.Context, stage Stage) (string, error)
}
