// Package recovery detects and heals articles whose publication record
// disagrees with the persisted editions.
//
// An article is orphaned when it is PUBLISHED or RELEASED but its edition
// code is empty, names no persisted edition, or names an edition that does
// not list it. Recovery resets orphans to CLASSIFIED with the edition
// cleared so they return to the composable pool. No article content is
// removed.
package recovery

import (
	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/internal/state"
)

// Cause explains why an article is orphaned.
type Cause string

const (
	CauseNoEdition      Cause = "no_edition"
	CauseEditionMissing Cause = "edition_missing"
	CauseNotListed      Cause = "not_listed"
)

// Orphan is an article with an inconsistent publication record.
type Orphan struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	State       state.State `json:"state"`
	EditionCode string      `json:"edition_code,omitempty"`
	Cause       Cause       `json:"cause"`
}

// Diagnose returns the orphans among records, in input order.
func Diagnose(records []articles.Article, ix editions.Index) []Orphan {
	orphans := []Orphan{}
	for _, a := range records {
		if !a.State.Publication() {
			continue
		}

		code := a.Edition()
		var cause Cause
		switch {
		case code == "":
			cause = CauseNoEdition
		case !ix.Has(code):
			cause = CauseEditionMissing
		case !ix.Contains(code, a.ID):
			cause = CauseNotListed
		default:
			continue
		}

		orphans = append(orphans, Orphan{
			ID:          a.ID,
			Title:       a.Title,
			State:       a.State,
			EditionCode: code,
			Cause:       cause,
		})
	}
	return orphans
}

// FindOrphans returns the IDs of orphaned records.
func FindOrphans(records []articles.Article, ix editions.Index) []string {
	orphans := Diagnose(records, ix)
	ids := make([]string, len(orphans))
	for i, o := range orphans {
		ids[i] = o.ID
	}
	return ids
}
