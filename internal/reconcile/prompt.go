package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/pkg/formatting"
)

// DefaultBodyBudget is the number of body runes sent per article.
const DefaultBodyBudget = 4000

type promptArticle struct {
	ArticleID   string `json:"Article_ID"`
	Source      string `json:"Source"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Body        string `json:"Body"`
}

// BuildPrompt renders the outbound prompt: instructions, the response spec,
// then the articles as a JSON array. Bodies are whitespace-collapsed and
// truncated to bodyBudget runes.
func BuildPrompt(items []articles.Article, instructions, spec string, bodyBudget int) (string, error) {
	if bodyBudget <= 0 {
		bodyBudget = DefaultBodyBudget
	}

	payload := make([]promptArticle, len(items))
	for i, a := range items {
		payload[i] = promptArticle{
			ArticleID:   a.ID,
			Source:      a.Source,
			Title:       formatting.CollapseSpace(a.Title),
			Description: formatting.CollapseSpace(a.Description),
			Body:        formatting.Truncate(formatting.CollapseSpace(a.Body), bodyBudget),
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt articles: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(spec))
	b.WriteString("\n\nArticles:\n")
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}
