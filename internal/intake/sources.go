package intake

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSourceLimit caps the items taken from one feed per run.
const DefaultSourceLimit = 20

// ErrInvalidSource reports a feed entry without a name or URL.
var ErrInvalidSource = errors.New("invalid intake source")

// Source is one syndication feed to collect from.
type Source struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Limit   int    `yaml:"limit"`
	Extract *bool  `yaml:"extract"`
	Enabled *bool  `yaml:"enabled"`
}

// Extracts reports whether full article bodies are fetched for the source.
// Defaults to true.
func (s Source) Extracts() bool {
	return s.Extract == nil || *s.Extract
}

// Active reports whether the source is collected. Defaults to true.
func (s Source) Active() bool {
	return s.Enabled == nil || *s.Enabled
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// ParseSources decodes a YAML sources document:
//
//	sources:
//	  - name: wire
//	    url: https://example.com/rss
//	    limit: 30
//	    extract: false
func ParseSources(data []byte) ([]Source, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}

	seen := make(map[string]bool, len(f.Sources))
	out := make([]Source, 0, len(f.Sources))
	for i, s := range f.Sources {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("%w: entry %d needs name and url", ErrInvalidSource, i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidSource, s.Name)
		}
		seen[s.Name] = true

		if s.Limit <= 0 {
			s.Limit = DefaultSourceLimit
		}
		if s.Active() {
			out = append(out, s)
		}
	}
	return out, nil
}

// LoadSources reads and parses the sources file at path.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	return ParseSources(data)
}
