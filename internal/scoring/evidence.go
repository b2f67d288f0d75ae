package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// evidence is a decoded LLM payload. Keys are matched case-insensitively and
// searched depth-first in sorted key order so lookups are deterministic
// regardless of how the model nested its output.
type evidence struct {
	root any
}

func decode(raw json.RawMessage) *evidence {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &evidence{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return &evidence{}
	}
	return &evidence{root: root}
}

// section returns the first node stored under key, or the root when the key
// is absent so flat payloads still resolve their fields.
func (e *evidence) section(key string) any {
	if node, ok := find(e.root, key); ok {
		return node
	}
	return e.root
}

func (e *evidence) has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := find(e.root, key); ok {
			return true
		}
	}
	return false
}

// number resolves key beneath node. Missing or non-numeric values count as 0.
func number(node any, key string) float64 {
	v, _ := lookupNumber(node, key)
	return v
}

func lookupNumber(node any, key string) (float64, bool) {
	v, ok := find(node, key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func numbers(node any, keys ...string) []float64 {
	out := make([]float64, len(keys))
	for i, key := range keys {
		out[i] = number(node, key)
	}
	return out
}

func find(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		for _, k := range sortedKeys(n) {
			if strings.EqualFold(k, key) {
				return n[k], true
			}
		}
		for _, k := range sortedKeys(n) {
			if v, ok := find(n[k], key); ok {
				return v, true
			}
		}
	case []any:
		for _, item := range n {
			if v, ok := find(item, key); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// field returns the value of key directly on m, ignoring case.
func field(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		for _, k := range sortedKeys(m) {
			if strings.EqualFold(k, key) {
				return m[k], true
			}
		}
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case map[string]any:
		if inner, ok := field(n, "score", "value"); ok {
			return toFloat(inner)
		}
		return 0, false
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// walk visits every object beneath node in deterministic order. Returning
// false from fn stops descent into that object.
func walk(node any, fn func(map[string]any) bool) {
	switch n := node.(type) {
	case map[string]any:
		if !fn(n) {
			return
		}
		for _, k := range sortedKeys(n) {
			walk(n[k], fn)
		}
	case []any:
		for _, item := range n {
			walk(item, fn)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
