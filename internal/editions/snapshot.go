package editions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

const (
	snapshotPrefix = "editions/"
	metaKey        = snapshotPrefix + "_meta.json"
	jsonType       = "application/json"
)

// Snapshot is the released form of an edition with its articles embedded.
type Snapshot struct {
	Edition  Edition            `json:"edition"`
	Articles []articles.Article `json:"articles"`
}

// MetaEntry summarizes one released edition.
type MetaEntry struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ArticleCount int       `json:"article_count"`
	ReleasedAt   time.Time `json:"released_at"`
}

// Meta lists released editions, newest first.
type Meta struct {
	Editions  []MetaEntry `json:"editions"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Has reports whether code has a released snapshot.
func (m *Meta) Has(code string) bool {
	for _, e := range m.Editions {
		if e.Code == code {
			return true
		}
	}
	return false
}

// SnapshotKey returns the blob key of an edition snapshot.
func SnapshotKey(code string) string {
	return snapshotPrefix + code + ".json"
}

// Archive stores edition snapshots and the _meta summary in blob storage.
type Archive struct {
	store storage.System
	now   func() time.Time
}

// NewArchive creates an Archive over store.
func NewArchive(store storage.System) *Archive {
	return &Archive{store: store, now: time.Now}
}

// Save writes the snapshot and records it in _meta.
func (a *Archive) Save(ctx context.Context, snap *Snapshot) error {
	code := snap.Edition.Code
	if err := a.put(ctx, SnapshotKey(code), snap); err != nil {
		return fmt.Errorf("save snapshot %s: %w", code, err)
	}

	released := a.now().UTC()
	if snap.Edition.ReleasedAt != nil {
		released = *snap.Edition.ReleasedAt
	}

	return a.updateMeta(ctx, func(m *Meta) {
		m.Editions = removeEntry(m.Editions, code)
		m.Editions = append(m.Editions, MetaEntry{
			Code:         code,
			Name:         snap.Edition.Name,
			ArticleCount: len(snap.Articles),
			ReleasedAt:   released,
		})
	})
}

// Load reads the snapshot of code. Returns storage.ErrNotFound when the
// edition has no snapshot.
func (a *Archive) Load(ctx context.Context, code string) (*Snapshot, error) {
	var snap Snapshot
	if err := a.get(ctx, SnapshotKey(code), &snap); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", code, err)
	}
	return &snap, nil
}

// Meta reads the released edition summary. A missing summary is empty.
func (a *Archive) Meta(ctx context.Context) (*Meta, error) {
	m := &Meta{Editions: []MetaEntry{}}
	err := a.get(ctx, metaKey, m)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load edition meta: %w", err)
	}
	return m, nil
}

// Remove deletes the snapshot of code and drops it from _meta.
func (a *Archive) Remove(ctx context.Context, code string) error {
	err := a.store.Delete(ctx, SnapshotKey(code))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove snapshot %s: %w", code, err)
	}

	return a.updateMeta(ctx, func(m *Meta) {
		m.Editions = removeEntry(m.Editions, code)
	})
}

func (a *Archive) updateMeta(ctx context.Context, fn func(m *Meta)) error {
	m, err := a.Meta(ctx)
	if err != nil {
		return err
	}

	fn(m)
	sort.SliceStable(m.Editions, func(i, j int) bool {
		return m.Editions[i].ReleasedAt.After(m.Editions[j].ReleasedAt)
	})
	m.UpdatedAt = a.now().UTC()

	if err := a.put(ctx, metaKey, m); err != nil {
		return fmt.Errorf("save edition meta: %w", err)
	}
	return nil
}

func (a *Archive) put(ctx context.Context, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.store.Upload(ctx, key, bytes.NewReader(body), jsonType)
}

func (a *Archive) get(ctx context.Context, key string, v any) error {
	rc, err := a.store.Download(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	return json.NewDecoder(rc).Decode(v)
}

func removeEntry(entries []MetaEntry, code string) []MetaEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.Code != code {
			out = append(out, e)
		}
	}
	return out
}
