package tools

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/microcosm-cc/bluemonday"

	"github.com/rahul/sutra/internal/errors"
)

const browserContentLimit = 50000

// BrowserTool drives a headless browser to load a page (or a search results
// page built from a query) and returns the rendered text content. The
// browser process stays alive between calls and is torn down with Close.
type BrowserTool struct {
	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

func NewBrowserTool() *BrowserTool {
	return &BrowserTool{}
}

func (b *BrowserTool) Name() string {
	return "browser"
}

func (b *BrowserTool) Description() string {
	return "Load a webpage in a browser and return its rendered text. Accepts a 'url', or a 'query' that is turned into a web search."
}

func (b *BrowserTool) Kind() Kind {
	return KindResearch
}

func (b *BrowserTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to load",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "A search query, used when no URL is given",
			},
		},
	}
}

func (b *BrowserTool) initBrowser() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		select {
		case <-b.browserCtx.Done():
			b.cleanup()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

func (b *BrowserTool) cleanup() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

// Close shuts the browser process down.
func (b *BrowserTool) Close() {
	b.mu.Lock()
	b.cleanup()
	b.mu.Unlock()
}

func (b *BrowserTool) Execute(ctx context.Context, params Params) (Result, error) {
	target := firstParam(params, "url")
	query := firstParam(params, "query", "task", "content")
	if target == "" && query == "" {
		return nil, errors.Validation("browser: a 'url' or 'query' parameter is required")
	}
	if target == "" {
		target = "https://duckduckgo.com/html/?q=" + url.QueryEscape(query)
	}

	if err := b.initBrowser(); err != nil {
		return nil, errors.Wrap(errors.KindTool, err, "browser: failed to initialize")
	}

	actionCtx, cancel := context.WithTimeout(b.browserCtx, 60*time.Second)
	defer cancel()

	var html string
	var title string
	err := chromedp.Run(actionCtx,
		chromedp.Navigate(target),
		chromedp.Title(&title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(errors.KindTool, err, "browser: navigation failed")
	}

	text := collapseBlankLines(bluemonday.StrictPolicy().Sanitize(html))
	if len(text) > browserContentLimit {
		text = text[:browserContentLimit] + "\n... (truncated)"
	}

	return Result{
		"status":  "success",
		"content": text,
		"sources": []Source{{Title: title, URL: target}},
	}, nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
