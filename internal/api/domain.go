package api

import (
	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/config"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/internal/intake"
	"github.com/JaimeStill/zeroecho/internal/prompts"
	"github.com/JaimeStill/zeroecho/internal/reconcile"
	"github.com/JaimeStill/zeroecho/internal/recovery"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Articles articles.System
	Prompts  prompts.System
	Batches  reconcile.System
	Editions editions.System
	Recovery recovery.System
	Intake   intake.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	articlesSystem := articles.New(
		db,
		runtime.Logger,
		runtime.Pagination,
		cfg.Scoring.Tolerance,
	)

	promptsSystem := prompts.New(
		db,
		runtime.Logger,
		runtime.Pagination,
	)

	batchesSystem := reconcile.New(
		articlesSystem,
		promptsSystem,
		reconcile.NewRedisStore(runtime.Cache, cfg.Batches.TTLDuration()),
		runtime.Events,
		runtime.Logger,
		reconcile.Options{
			BodyBudget: cfg.Batches.BodyBudget,
			BatchSize:  cfg.Batches.BatchSize,
			Tolerance:  cfg.Scoring.Tolerance,
		},
	)

	editionsSystem := editions.New(
		db,
		articlesSystem,
		runtime.Storage,
		runtime.Events,
		runtime.Logger,
		runtime.Pagination,
		editions.Thresholds{
			Impact:   cfg.Scoring.Cutline.Impact,
			ZeroEcho: cfg.Scoring.Cutline.ZeroEcho,
		},
	)

	recoverySystem := recovery.New(
		articlesSystem,
		editionsSystem,
		runtime.Events,
		runtime.Logger,
	)

	sourcesPath := cfg.Intake.Sources
	intakeSystem := intake.New(
		articlesSystem,
		func() ([]intake.Source, error) { return intake.LoadSources(sourcesPath) },
		intake.NewFeedFetcher(cfg.Intake.UserAgent),
		intake.NewReadabilityExtractor(cfg.Intake.TimeoutDuration()),
		runtime.Logger,
		intake.Options{
			ChunkSize: cfg.Intake.ChunkSize,
			Workers:   cfg.Intake.Workers,
		},
	)

	return &Domain{
		Articles: articlesSystem,
		Prompts:  promptsSystem,
		Batches:  batchesSystem,
		Editions: editionsSystem,
		Recovery: recoverySystem,
		Intake:   intakeSystem,
	}
}

// schedule registers the periodic domain jobs with the runtime scheduler.
func (d *Domain) schedule(cfg *config.Config, runtime *Runtime) error {
	if err := d.Recovery.Schedule(runtime.Scheduler, cfg.Recovery.Spec()); err != nil {
		return err
	}
	return d.Intake.Schedule(runtime.Scheduler, cfg.Intake.Schedule)
}
