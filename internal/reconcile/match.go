package reconcile

import "strings"

// Source names the index that resolved a record.
type Source string

const (
	SourceRequest  Source = "request"
	SourceSession  Source = "session"
	SourceGlobal   Source = "global"
	SourcePosition Source = "position"
)

// MatchContext is everything the matcher may consult. Each index maps a
// normalized ID (see NormalizeID) to the stored article ID.
type MatchContext struct {
	// Requests holds the IDs sent in this batch.
	Requests map[string]string
	// Session holds IDs loaded earlier in the operator's session.
	Session map[string]string
	// Global holds IDs known to the store. It is best-effort.
	Global map[string]string
	// Positional lists candidate article IDs in prompt order. It is consulted
	// only when no record carries an ID and ConfirmPositional is set.
	Positional        []string
	ConfirmPositional bool
}

// Matched pairs a result record with the article it resolved to.
type Matched struct {
	Index     int    `json:"index"`
	RecordID  string `json:"record_id,omitempty"`
	ArticleID string `json:"article_id"`
	Source    Source `json:"source"`
}

// Unmatched is a record that resolved to no article.
type Unmatched struct {
	Index       int    `json:"index"`
	AttemptedID string `json:"attempted_id"`
}

// MatchResult partitions records into matched and unmatched, preserving
// record order within each.
type MatchResult struct {
	Matched   []Matched   `json:"matched"`
	Unmatched []Unmatched `json:"unmatched"`
}

// NormalizeID trims and lower-cases an ID for index lookups.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// NewIndex builds a lookup index over ids.
func NewIndex(ids ...string) map[string]string {
	index := make(map[string]string, len(ids))
	for _, id := range ids {
		if key := NormalizeID(id); key != "" {
			index[key] = id
		}
	}
	return index
}

// Match resolves each record ID to an article. Lookups try the request map,
// then the session index, then the global index; the first hit wins.
//
// When no record carries an ID, records are paired with mc.Positional by
// position, but only if mc.ConfirmPositional is set. Otherwise Match returns
// ErrPositionalRefused and nothing is matched. A batch that mixes records
// with and without IDs never falls back to position.
func Match(mc MatchContext, recordIDs []string) (MatchResult, error) {
	result := MatchResult{
		Matched:   []Matched{},
		Unmatched: []Unmatched{},
	}

	if len(recordIDs) > 0 && !anyID(recordIDs) {
		if !mc.ConfirmPositional {
			return result, ErrPositionalRefused
		}
		return matchPositional(mc.Positional, len(recordIDs)), nil
	}

	indexes := []struct {
		source Source
		index  map[string]string
	}{
		{SourceRequest, mc.Requests},
		{SourceSession, mc.Session},
		{SourceGlobal, mc.Global},
	}

	for i, raw := range recordIDs {
		key := NormalizeID(raw)
		matched := false

		if key != "" {
			for _, idx := range indexes {
				if id, ok := idx.index[key]; ok {
					result.Matched = append(result.Matched, Matched{
						Index:     i,
						RecordID:  raw,
						ArticleID: id,
						Source:    idx.source,
					})
					matched = true
					break
				}
			}
		}

		if !matched {
			result.Unmatched = append(result.Unmatched, Unmatched{Index: i, AttemptedID: raw})
		}
	}

	return result, nil
}

func matchPositional(candidates []string, n int) MatchResult {
	result := MatchResult{
		Matched:   []Matched{},
		Unmatched: []Unmatched{},
	}
	for i := range n {
		if i < len(candidates) {
			result.Matched = append(result.Matched, Matched{
				Index:     i,
				ArticleID: candidates[i],
				Source:    SourcePosition,
			})
			continue
		}
		result.Unmatched = append(result.Unmatched, Unmatched{Index: i})
	}
	return result
}

func anyID(ids []string) bool {
	for _, id := range ids {
		if NormalizeID(id) != "" {
			return true
		}
	}
	return false
}
