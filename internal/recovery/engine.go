package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

// EventRecovered is published after a run that recovered at least one article.
const EventRecovered = "recovery.completed"

const jobName = "recovery.sweep"

type engine struct {
	articles  ArticleStore
	editions  EditionIndex
	publisher Publisher
	logger    *slog.Logger
}

// New creates the recovery system.
func New(articles ArticleStore, editions EditionIndex, publisher Publisher, logger *slog.Logger) System {
	return &engine{
		articles:  articles,
		editions:  editions,
		publisher: publisher,
		logger:    logger.With("system", "recovery"),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Scan(ctx context.Context) (*Report, error) {
	records, err := e.articles.ListByState(ctx, state.Published, state.Released)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}

	ix, err := e.editions.Index(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{Scanned: len(records), Orphans: Diagnose(records, ix)}, nil
}

func (e *engine) Recover(ctx context.Context, ids []string) Result {
	result := Result{Requested: len(ids), Failures: []articles.Failure{}}

	for _, id := range ids {
		a, err := e.articles.ResetPublication(ctx, id)
		if err != nil {
			e.logger.Warn("orphan recovery failed", "id", id, "error", err)
			result.Failures = append(result.Failures, articles.NewFailure(id, "", err))
			continue
		}
		e.logger.Info("orphan recovered", "id", a.ID, "state", a.State)
		result.Recovered++
	}

	if result.Recovered > 0 && e.publisher != nil {
		ev := events.Event{
			Type:    EventRecovered,
			Key:     "recovery",
			Payload: result,
			At:      time.Now().UTC(),
		}
		if err := e.publisher.Publish(ctx, ev); err != nil {
			e.logger.Warn("event not published", "type", ev.Type, "error", err)
		}
	}

	return result
}

func (e *engine) Sweep(ctx context.Context, ids []string) (*Result, error) {
	report, err := e.Scan(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(report.Orphans))
	skipped := 0

	if len(ids) == 0 {
		for _, o := range report.Orphans {
			targets = append(targets, o.ID)
		}
	} else {
		orphaned := make(map[string]bool, len(report.Orphans))
		for _, o := range report.Orphans {
			orphaned[o.ID] = true
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			if !orphaned[id] {
				skipped++
				continue
			}
			targets = append(targets, id)
		}
	}

	result := e.Recover(ctx, targets)
	result.Requested += skipped
	result.Skipped = skipped

	e.logger.Info("orphan sweep finished",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"recovered", result.Recovered,
		"skipped", result.Skipped,
		"failed", len(result.Failures),
	)
	return &result, nil
}

func (e *engine) Schedule(s schedule.System, spec string) error {
	return s.Add(jobName, spec, func(ctx context.Context) {
		if _, err := e.Sweep(ctx, nil); err != nil {
			e.logger.Error("scheduled sweep failed", "error", err)
		}
	})
}
