// Package editions implements edition composition and publication: ranking
// the classified pool with awards, the cutline auto-reject, and the
// publish/release/delete lifecycle of named editions with blob snapshots.
package editions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/state"
)

// Status is the publication status of an edition.
type Status string

const (
	StatusPreview  Status = "PREVIEW"
	StatusReleased Status = "RELEASED"
)

// Edition is a named, ordered batch of articles released together.
type Edition struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	ArticleIDs []string   `json:"article_ids"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// Contains reports whether id is one of the edition's articles.
func (e *Edition) Contains(id string) bool {
	for _, a := range e.ArticleIDs {
		if a == id {
			return true
		}
	}
	return false
}

// PublishCommand creates a PREVIEW edition from CLASSIFIED articles.
// An empty Code is assigned with NextCode.
type PublishCommand struct {
	IDs  []string `json:"ids"`
	Code string   `json:"code,omitempty"`
	Name string   `json:"name"`
}

// Award is a distinction given to at most one article of a composed pool.
type Award string

const (
	AwardHeadline Award = "Headline"
	AwardZeroEcho Award = "ZeroEcho"
	AwardHotTopic Award = "HotTopic"
)

// Entry is one ranked article of a composed pool.
type Entry struct {
	Article  articles.Article `json:"article"`
	Combined float64          `json:"combined"`
	Awards   []Award          `json:"awards"`
}

// Combined is the ranking priority of an article: high impact and low echo
// both raise it.
func Combined(a *articles.Article) float64 {
	return (10 - a.ZeroEchoScore) + a.ImpactScore
}

// Compose ranks pool for display. Headline goes to the highest combined
// score, ZeroEcho to the lowest zero-echo score (ties to the higher impact)
// and HotTopic to the highest impact. Remaining ties go to the earlier
// article. Entries are ordered by award count, then combined score, then
// input order.
func Compose(pool []articles.Article) []Entry {
	entries := make([]Entry, len(pool))
	for i := range pool {
		entries[i] = Entry{
			Article:  pool[i],
			Combined: Combined(&pool[i]),
			Awards:   []Award{},
		}
	}
	if len(entries) == 0 {
		return entries
	}

	headline, zeroEcho, hotTopic := 0, 0, 0
	for i := 1; i < len(entries); i++ {
		a := &entries[i].Article

		if entries[i].Combined > entries[headline].Combined {
			headline = i
		}

		z := &entries[zeroEcho].Article
		if a.ZeroEchoScore < z.ZeroEchoScore ||
			(a.ZeroEchoScore == z.ZeroEchoScore && a.ImpactScore > z.ImpactScore) {
			zeroEcho = i
		}

		if a.ImpactScore > entries[hotTopic].Article.ImpactScore {
			hotTopic = i
		}
	}

	entries[headline].Awards = append(entries[headline].Awards, AwardHeadline)
	entries[zeroEcho].Awards = append(entries[zeroEcho].Awards, AwardZeroEcho)
	entries[hotTopic].Awards = append(entries[hotTopic].Awards, AwardHotTopic)

	sort.SliceStable(entries, func(i, j int) bool {
		if len(entries[i].Awards) != len(entries[j].Awards) {
			return len(entries[i].Awards) > len(entries[j].Awards)
		}
		return entries[i].Combined > entries[j].Combined
	})

	return entries
}

// Thresholds is a cutline: articles scoring below Impact or above ZeroEcho
// are rejected.
type Thresholds struct {
	Impact   float64 `json:"impact"`
	ZeroEcho float64 `json:"zero_echo"`
}

// Cutline returns the IDs of pool articles that fall outside t, excluding
// articles that are already rejected.
func Cutline(pool []articles.Article, t Thresholds) []string {
	ids := []string{}
	for _, a := range pool {
		if a.State == state.Rejected {
			continue
		}
		if a.ImpactScore < t.Impact || a.ZeroEchoScore > t.ZeroEcho {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ValidateCode rejects codes that cannot name a snapshot blob.
func ValidateCode(code string) error {
	if code == "" || code != strings.TrimSpace(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	if strings.ContainsAny(code, "/\\") || strings.Contains(code, "..") || strings.HasPrefix(code, "_") {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

// NextCode returns the next default edition code for day, "YYYY-MM-DD_N",
// where N is one past the highest sequence among existing codes of that day.
func NextCode(day time.Time, existing []string) string {
	prefix := day.Format(time.DateOnly) + "_"

	highest := 0
	for _, code := range existing {
		suffix, ok := strings.CutPrefix(code, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%d", prefix, highest+1)
}
