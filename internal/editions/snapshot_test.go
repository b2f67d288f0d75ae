package editions_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (m *memBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (m *memBlobs) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memBlobs) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func releasedSnapshot(code string, at time.Time, ids ...string) *editions.Snapshot {
	snap := &editions.Snapshot{
		Edition: editions.Edition{
			Code:       code,
			Name:       "Edition " + code,
			ArticleIDs: ids,
			Status:     editions.StatusReleased,
			ReleasedAt: &at,
		},
	}
	for _, id := range ids {
		snap.Articles = append(snap.Articles, articles.Article{ID: id, Title: "t-" + id})
	}
	return snap
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	archive := editions.NewArchive(blobs)

	day := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if err := archive.Save(ctx, releasedSnapshot("E1", day, "a", "b")); err != nil {
		t.Fatalf("Save E1: %v", err)
	}
	if err := archive.Save(ctx, releasedSnapshot("E2", day.Add(time.Hour), "c")); err != nil {
		t.Fatalf("Save E2: %v", err)
	}

	if ok, _ := blobs.Exists(ctx, editions.SnapshotKey("E1")); !ok {
		t.Fatalf("snapshot blob %s missing", editions.SnapshotKey("E1"))
	}
	if editions.SnapshotKey("E1") != "editions/E1.json" {
		t.Errorf("key = %s", editions.SnapshotKey("E1"))
	}

	snap, err := archive.Load(ctx, "E1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Articles) != 2 || snap.Articles[1].Title != "t-b" {
		t.Errorf("articles = %+v", snap.Articles)
	}

	meta, err := archive.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if len(meta.Editions) != 2 || meta.Editions[0].Code != "E2" {
		t.Fatalf("meta = %+v", meta.Editions)
	}
	if meta.Editions[1].ArticleCount != 2 {
		t.Errorf("E1 count = %d, want 2", meta.Editions[1].ArticleCount)
	}
}

func TestArchiveResaveReplacesMetaEntry(t *testing.T) {
	ctx := context.Background()
	archive := editions.NewArchive(newMemBlobs())
	day := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for range 2 {
		if err := archive.Save(ctx, releasedSnapshot("E1", day, "a")); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	meta, err := archive.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if len(meta.Editions) != 1 || !meta.Has("E1") {
		t.Errorf("meta = %+v", meta.Editions)
	}
}

func TestArchiveRemove(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	archive := editions.NewArchive(blobs)
	day := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	if err := archive.Save(ctx, releasedSnapshot("E1", day, "a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := archive.Remove(ctx, "E1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := archive.Remove(ctx, "E1"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}

	if _, err := archive.Load(ctx, "E1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load after remove: err = %v, want storage.ErrNotFound", err)
	}

	meta, err := archive.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Has("E1") {
		t.Errorf("meta still lists E1: %+v", meta.Editions)
	}
}

func TestArchiveEmptyMeta(t *testing.T) {
	meta, err := editions.NewArchive(newMemBlobs()).Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Editions == nil || len(meta.Editions) != 0 {
		t.Errorf("meta = %+v", meta)
	}
}
