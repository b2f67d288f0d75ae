package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/zeroecho/pkg/formatting"
)

// ScoreRecord is one scoring result: the attempted article ID and the raw
// evidence object exactly as the model returned it.
type ScoreRecord struct {
	ArticleID string          `json:"article_id"`
	Evidence  json.RawMessage `json:"evidence"`
}

// Group is one classification result.
type Group struct {
	Category   string   `json:"category"`
	ArticleIDs []string `json:"article_ids"`
}

var (
	envelopeKeys = []string{"results", "articles"}
	idKeys       = []string{"Article_ID", "ArticleID", "article_id", "id"}
	groupIDKeys  = []string{"article_ids", "Article_IDs", "ids", "articles"}
	versionKey   = "Schema_Version"
)

// ParseScoring extracts scoring records from a pasted model response.
// Markdown fences and surrounding prose are tolerated. The response may be
// {results:[...]}, {articles:[...]}, a bare array, or a single record. A
// Schema_Version declared on the envelope is copied onto records that lack
// one so version detection sees it.
func ParseScoring(text string) ([]ScoreRecord, error) {
	items, envelope, err := parseEnvelope(text)
	if err != nil {
		return nil, err
	}

	version, hasVersion := field(envelope, versionKey)

	out := make([]ScoreRecord, 0, len(items))
	for i, item := range items {
		obj, err := object(item)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrParse, i, err)
		}

		id := ""
		if raw, ok := field(obj, idKeys...); ok {
			id = scalar(raw)
		}

		evidence := item
		if _, ok := field(obj, versionKey); hasVersion && !ok {
			obj[versionKey] = version
			if evidence, err = json.Marshal(obj); err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrParse, i, err)
			}
		}

		out = append(out, ScoreRecord{ArticleID: id, Evidence: evidence})
	}
	return out, nil
}

// ParseClassification extracts category groups from a pasted model response.
func ParseClassification(text string) ([]Group, error) {
	items, _, err := parseEnvelope(text)
	if err != nil {
		return nil, err
	}

	out := make([]Group, 0, len(items))
	for i, item := range items {
		obj, err := object(item)
		if err != nil {
			return nil, fmt.Errorf("%w: group %d: %v", ErrParse, i, err)
		}

		g := Group{ArticleIDs: []string{}}
		if raw, ok := field(obj, "category"); ok {
			g.Category = strings.TrimSpace(scalar(raw))
		}

		if raw, ok := field(obj, groupIDKeys...); ok {
			var ids []json.RawMessage
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("%w: group %d: article_ids must be an array", ErrParse, i)
			}
			for _, id := range ids {
				g.ArticleIDs = append(g.ArticleIDs, scalar(id))
			}
		}

		out = append(out, g)
	}
	return out, nil
}

func parseEnvelope(text string) ([]json.RawMessage, map[string]json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	raw, err := formatting.Parse[json.RawMessage](text)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	raw = bytes.TrimSpace(raw)

	var items []json.RawMessage
	var envelope map[string]json.RawMessage

	switch {
	case len(raw) > 0 && raw[0] == '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case len(raw) > 0 && raw[0] == '{':
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		list, ok := field(envelope, envelopeKeys...)
		if !ok {
			items = []json.RawMessage{raw}
			envelope = nil
			break
		}
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, nil, fmt.Errorf("%w: results must be an array", ErrParse)
		}
	default:
		return nil, nil, fmt.Errorf("%w: expected a JSON object or array", ErrParse)
	}

	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: no results", ErrParse)
	}
	return items, envelope, nil
}

func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, errors.New("expected an object")
	}
	return obj, nil
}

// field returns the first key of obj that matches one of names, ignoring case.
func field(obj map[string]json.RawMessage, names ...string) (json.RawMessage, bool) {
	if obj == nil {
		return nil, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, name := range names {
		for _, k := range keys {
			if strings.EqualFold(k, name) {
				return obj[k], true
			}
		}
	}
	return nil, false
}

// scalar renders a JSON string or number as text. Anything else is "".
func scalar(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
