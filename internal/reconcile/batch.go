package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/zeroecho/internal/prompts"
)

// Batch records one outbound prompt so the pasted response can be matched
// back to the articles it was built from. Batches are ephemeral.
type Batch struct {
	ID      uuid.UUID     `json:"id"`
	Stage   prompts.Stage `json:"stage"`
	Session string        `json:"session"`
	// Requests maps each normalized request ID to the article ID sent.
	Requests map[string]string `json:"requests"`
	// Order lists the article IDs in prompt order.
	Order     []string  `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBatch creates a batch for the given articles, in prompt order.
func NewBatch(stage prompts.Stage, session string, articleIDs []string, now time.Time) *Batch {
	order := make([]string, len(articleIDs))
	copy(order, articleIDs)

	return &Batch{
		ID:        uuid.New(),
		Stage:     stage,
		Session:   session,
		Requests:  NewIndex(articleIDs...),
		Order:     order,
		CreatedAt: now.UTC(),
	}
}

// Missing returns the IDs in b.Order that are absent from returned, in
// prompt order. returned holds article IDs, not normalized keys.
func (b *Batch) Missing(returned []string) []string {
	seen := NewIndex(returned...)
	missing := []string{}
	for _, id := range b.Order {
		if _, ok := seen[NormalizeID(id)]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
