package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/rahul/sutra/internal/errors"
)

const scraperContentLimit = 50000

// ScraperTool fetches a webpage and extracts the main content as clean text.
type ScraperTool struct {
	UserAgent string
	Timeout   time.Duration
}

func NewScraperTool() *ScraperTool {
	return &ScraperTool{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Timeout:   30 * time.Second,
	}
}

func (t *ScraperTool) Name() string {
	return "scraper"
}

func (t *ScraperTool) Description() string {
	return "Fetch a webpage URL and extract the main article content as clean, sanitized text."
}

func (t *ScraperTool) Kind() Kind {
	return KindResearch
}

func (t *ScraperTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The full URL of the webpage to scrape (e.g., https://example.com/article)",
			},
		},
		"required": []string{"url"},
	}
}

func (t *ScraperTool) Execute(ctx context.Context, params Params) (Result, error) {
	rawURL := firstParam(params, "url", "query")
	if rawURL == "" {
		return nil, errors.Validation("scraper: missing required parameter 'url'")
	}

	client := &http.Client{Timeout: t.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, err, "scraper: bad request")
	}
	req.Header.Set("User-Agent", t.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindTool, err, "scraper: failed to fetch URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Tool("scraper: failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, err, "scraper: failed to parse URL")
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return nil, errors.Wrap(errors.KindTool, err, "scraper: failed to parse article")
	}

	// Strip any remaining markup or scripts.
	sanitized := bluemonday.StrictPolicy().Sanitize(article.TextContent)
	if len(sanitized) > scraperContentLimit {
		sanitized = sanitized[:scraperContentLimit] + "\n... (content truncated) ..."
	}

	content := fmt.Sprintf("TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		content += fmt.Sprintf("EXCERPT: %s\n", article.Excerpt)
	}
	content += "\n-- CONTENT --\n" + sanitized

	result := Result{
		"status":  "success",
		"content": content,
		"sources": []Source{{Title: article.Title, URL: rawURL}},
	}
	if article.Excerpt != "" {
		result["summary"] = article.Excerpt
	}
	return result, nil
}
