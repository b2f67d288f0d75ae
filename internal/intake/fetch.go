package intake

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/pkg/formatting"
)

// Item is one collected feed entry. Err records the first failure of the
// item; a failed extraction still leaves the item deliverable.
type Item struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Extract     bool      `json:"-"`
	Err         string    `json:"error,omitempty"`
}

// Command converts the item into an article creation command.
func (i *Item) Command() articles.CreateCommand {
	body := i.Body
	if body == "" {
		body = i.Description
	}
	return articles.CreateCommand{
		ID:          i.ID,
		URL:         i.URL,
		Title:       i.Title,
		Source:      i.Source,
		Description: i.Description,
		Body:        body,
	}
}

// Fetcher lists the current entries of a source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]Item, error)
}

// Extractor returns the readable text of the page at url.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

type feedFetcher struct {
	parser *gofeed.Parser
}

// NewFeedFetcher returns a Fetcher for RSS, Atom, and JSON feeds.
func NewFeedFetcher(userAgent string) Fetcher {
	p := gofeed.NewParser()
	if userAgent != "" {
		p.UserAgent = userAgent
	}
	return &feedFetcher{parser: p}
}

func (f *feedFetcher) Fetch(ctx context.Context, src Source) ([]Item, error) {
	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Name, err)
	}

	count := min(len(feed.Items), src.Limit)
	items := make([]Item, 0, count)

	for _, entry := range feed.Items[:count] {
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		var published time.Time
		switch {
		case entry.PublishedParsed != nil:
			published = *entry.PublishedParsed
		case entry.UpdatedParsed != nil:
			published = *entry.UpdatedParsed
		}

		items = append(items, Item{
			ID:          articles.GenerateID(link),
			URL:         link,
			Title:       formatting.CollapseSpace(entry.Title),
			Source:      src.Name,
			Description: TextFromHTML(summary),
			PublishedAt: published,
			Extract:     src.Extracts(),
		})
	}

	return items, nil
}

type readabilityExtractor struct {
	client  *http.Client
	timeout time.Duration
}

// NewReadabilityExtractor returns an Extractor that fetches pages and keeps
// their main readable content. Each fetch is bounded by timeout and by the
// caller's context.
func NewReadabilityExtractor(timeout time.Duration) Extractor {
	return &readabilityExtractor{client: &http.Client{}, timeout: timeout}
}

func (r *readabilityExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("extract %s: status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}

	text := formatting.CollapseSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("extract %s: no readable content", rawURL)
	}
	return text, nil
}

// TextFromHTML returns the visible text of an HTML fragment with whitespace
// collapsed. Plain text passes through unchanged apart from spacing.
func TextFromHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return formatting.CollapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return formatting.CollapseSpace(fragment)
	}

	doc.Find("script, style").Remove()
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return formatting.CollapseSpace(doc.Text())
}
