package schedule_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantErr  bool
		wantJobs int
	}{
		{"every interval", "@every 30m", false, 1},
		{"cron expression", "0 */2 * * *", false, 1},
		{"disabled", "", false, 0},
		{"invalid", "whenever", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schedule.New(discard())
			err := s.Add("sweep", tt.spec, func(context.Context) {})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(s.Jobs()); got != tt.wantJobs {
				t.Errorf("jobs: got %d, want %d", got, tt.wantJobs)
			}
		})
	}
}

func TestJobRunsWithLifecycleContext(t *testing.T) {
	s := schedule.New(discard())

	var runs atomic.Int32
	var ctxSeen atomic.Bool
	ran := make(chan struct{}, 1)

	if err := s.Add("tick", "@every 1s", func(ctx context.Context) {
		runs.Add(1)
		ctxSeen.Store(ctx != nil)
		select {
		case ran <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	lc := lifecycle.New()
	if err := s.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if runs.Load() < 1 || !ctxSeen.Load() {
		t.Errorf("runs = %d, ctx seen = %v", runs.Load(), ctxSeen.Load())
	}
}
