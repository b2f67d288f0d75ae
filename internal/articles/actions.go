package articles

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/zeroecho/internal/state"
)

// ActionResult summarizes a bulk operator action. Items are applied
// independently; one failure never stops the rest.
type ActionResult struct {
	Action    state.Action `json:"action"`
	Requested int          `json:"requested"`
	Success   int          `json:"success"`
	Skipped   int          `json:"skipped"`
	Failures  []Failure    `json:"failures"`
}

// mutation applies an action to one article. It reports false when the
// article already satisfies the action and nothing should be written.
type mutation func(a *Article) (bool, error)

func (r *repo) Reject(ctx context.Context, ids []string, reason state.Reason) ActionResult {
	at := r.now()
	return r.applyEach(ctx, state.Reject, ids, func(a *Article) (bool, error) {
		if a.State == state.Rejected {
			return false, nil
		}
		return true, a.Reject(reason, at)
	})
}

func (r *repo) Restore(ctx context.Context, ids []string) ActionResult {
	return r.applyEach(ctx, state.Restore, ids, func(a *Article) (bool, error) {
		return true, a.Restore()
	})
}

func (r *repo) Classify(ctx context.Context, ids []string, category string) ActionResult {
	return r.applyEach(ctx, state.Classify, ids, func(a *Article) (bool, error) {
		if a.State == state.Classified && a.Category == strings.TrimSpace(category) {
			return false, nil
		}
		_, err := a.Classify(category)
		return true, err
	})
}

func (r *repo) applyEach(ctx context.Context, action state.Action, ids []string, fn mutation) ActionResult {
	ids = uniqueIDs(ids)
	result := ActionResult{Action: action, Requested: len(ids), Failures: []Failure{}}

	found, err := r.FindMany(ctx, ids)
	if err != nil {
		for _, id := range ids {
			result.Failures = append(result.Failures, NewFailure(id, "", err))
		}
		return result
	}

	byID := make(map[string]*Article, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			result.Failures = append(result.Failures, NewFailure(id, "", fmt.Errorf("%w: %s", ErrNotFound, id)))
			continue
		}

		changed, err := fn(a)
		if err != nil {
			result.Failures = append(result.Failures, NewFailure(a.ID, a.Title, err))
			continue
		}
		if !changed {
			result.Skipped++
			continue
		}

		if err := r.Save(ctx, a); err != nil {
			result.Failures = append(result.Failures, NewFailure(a.ID, a.Title, err))
			continue
		}
		result.Success++
	}

	r.logger.Info("bulk action applied",
		"action", action,
		"requested", result.Requested,
		"success", result.Success,
		"skipped", result.Skipped,
		"failed", len(result.Failures),
	)
	return result
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
