package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/scoring"
	"github.com/JaimeStill/zeroecho/internal/state"
)

func (e *engine) applyScoring(ctx context.Context, b *Batch, records []ScoreRecord, confirm bool) (*Summary, error) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ArticleID
	}

	mr, err := Match(e.matchContext(ctx, b, ids, confirm), ids)
	if err != nil {
		return nil, err
	}

	summary := newSummary(b, len(records))
	e.skipUnmatched(summary, mr.Unmatched)

	byID, err := e.load(ctx, mr.Matched)
	if err != nil {
		for _, m := range mr.Matched {
			summary.fail(articles.NewFailure(m.ArticleID, "", err))
		}
		return summary, nil
	}

	seen := make(map[string]bool, len(mr.Matched))
	for _, m := range mr.Matched {
		if seen[m.ArticleID] {
			summary.Duplicate++
			continue
		}
		seen[m.ArticleID] = true

		a, ok := byID[m.ArticleID]
		if !ok {
			summary.fail(articles.NewFailure(m.ArticleID, "", fmt.Errorf("%w: %s", articles.ErrNotFound, m.ArticleID)))
			continue
		}

		evidence := records[m.Index].Evidence
		advanced, err := a.Analyze(evidence)
		if err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}

		if err := e.articles.Save(ctx, a); err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}

		if advanced {
			summary.Success++
		} else {
			summary.Updated++
		}

		if scoring.Breakdown(evidence, e.opts.Tolerance).Mismatch.Any() {
			summary.Mismatched = append(summary.Mismatched, a.ID)
		}
	}

	return summary, nil
}

type groupEntry struct {
	category string
	id       string
}

func (e *engine) applyClassification(ctx context.Context, b *Batch, groups []Group, confirm bool) (*Summary, error) {
	var entries []groupEntry
	for _, g := range groups {
		for _, id := range g.ArticleIDs {
			entries = append(entries, groupEntry{category: g.Category, id: id})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no article ids in any group", ErrParse)
	}

	ids := make([]string, len(entries))
	for i, en := range entries {
		ids[i] = en.id
	}

	mc := e.matchContext(ctx, b, ids, confirm)
	mc.Positional = nil

	mr, err := Match(mc, ids)
	if err != nil {
		return nil, err
	}

	summary := newSummary(b, len(entries))
	summary.PerCategory = map[string]int{}
	e.skipUnmatched(summary, mr.Unmatched)

	returned := make([]string, 0, len(mr.Matched))
	for _, m := range mr.Matched {
		returned = append(returned, m.ArticleID)
	}

	byID, err := e.load(ctx, mr.Matched)
	if err != nil {
		for _, m := range mr.Matched {
			summary.fail(articles.NewFailure(m.ArticleID, "", err))
		}
	} else {
		e.classifyMatched(ctx, summary, entries, mr.Matched, byID)
	}

	e.rejectDuplicates(ctx, summary, b, b.Missing(returned))
	return summary, nil
}

func (e *engine) classifyMatched(
	ctx context.Context,
	summary *Summary,
	entries []groupEntry,
	matched []Matched,
	byID map[string]*articles.Article,
) {
	seen := make(map[string]bool, len(matched))
	for _, m := range matched {
		if seen[m.ArticleID] {
			summary.Skipped++
			e.logger.Warn("article listed in more than one group", "id", m.ArticleID)
			continue
		}
		seen[m.ArticleID] = true

		a, ok := byID[m.ArticleID]
		if !ok {
			summary.fail(articles.NewFailure(m.ArticleID, "", fmt.Errorf("%w: %s", articles.ErrNotFound, m.ArticleID)))
			continue
		}

		category := entries[m.Index].category
		advanced, err := a.Classify(category)
		if err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}

		if err := e.articles.Save(ctx, a); err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}

		if advanced {
			summary.Success++
		} else {
			summary.Updated++
		}
		summary.PerCategory[a.Category]++
	}
}

// rejectDuplicates rejects every sent article the response left out. The
// batch ledger records each rejection, so a replay retries only the articles
// an earlier apply failed to reject.
func (e *engine) rejectDuplicates(ctx context.Context, summary *Summary, b *Batch, missing []string) {
	if len(missing) == 0 {
		return
	}

	done, err := e.store.Rejected(ctx, b.ID)
	if err != nil {
		for _, id := range missing {
			summary.fail(articles.NewFailure(id, "", err))
		}
		return
	}

	pending := make([]string, 0, len(missing))
	for _, id := range missing {
		if slices.Contains(done, id) {
			summary.Replayed = true
			continue
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return
	}

	found, err := e.articles.FindMany(ctx, pending)
	if err != nil {
		for _, id := range pending {
			summary.fail(articles.NewFailure(id, "", err))
		}
		return
	}

	at := e.now()
	for i := range found {
		a := &found[i]
		if a.State == state.Rejected {
			continue
		}

		if err := a.Reject(state.ReasonDuplicate, at); err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}
		if err := e.articles.Save(ctx, a); err != nil {
			summary.fail(articles.NewFailure(a.ID, a.Title, err))
			continue
		}
		summary.Duplicate++

		if err := e.store.MarkRejected(ctx, b.ID, a.ID); err != nil {
			e.logger.Warn("duplicate ledger not updated", "batch", b.ID, "id", a.ID, "error", err)
		}
	}
}

func (e *engine) skipUnmatched(summary *Summary, unmatched []Unmatched) {
	for _, u := range unmatched {
		summary.Skipped++
		summary.Unmatched = append(summary.Unmatched, u)
		e.logger.Warn("record not matched", "batch", summary.BatchID, "index", u.Index, "attempted_id", u.AttemptedID)
	}
}
