package remote

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/docmill/internal/domain"
)

// URLLoader fetches one or more URLs over HTTP and strips the responses down
// to plain text. Configuration: {"urls": [...]} or {"url": "..."}.
type URLLoader struct {
	client *resty.Client
}

// NewURLLoader creates a URLLoader.
func NewURLLoader() *URLLoader {
	return &URLLoader{client: resty.New()}
}

func (l *URLLoader) Load(ctx context.Context, config domain.RemoteConfig) ([]domain.Document, error) {
	urls, err := configURLs(config)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(urls))
	for _, url := range urls {
		resp, err := l.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, fmt.Errorf("error fetching %s: %w", url, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("error fetching %s: status %s", url, resp.Status())
		}
		docs = append(docs, domain.Document{
			Text:     htmlToText(string(resp.Body())),
			Metadata: domain.Metadata{"title": url},
		})
	}
	return docs, nil
}

func configURLs(config domain.RemoteConfig) ([]string, error) {
	if raw, ok := config["urls"]; ok {
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []interface{}:
			urls := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("invalid url entry %v", item)
				}
				urls = append(urls, s)
			}
			return urls, nil
		}
		return nil, fmt.Errorf("invalid urls config value %v", raw)
	}
	if raw, ok := config["url"]; ok {
		if s, ok := raw.(string); ok {
			return []string{s}, nil
		}
		return nil, fmt.Errorf("invalid url config value %v", raw)
	}
	return nil, fmt.Errorf("url loader config missing url(s)")
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// htmlToText strips markup, scripts, and styles, collapsing runs of blank
// lines. Non-HTML responses pass through unchanged apart from whitespace
// normalization.
func htmlToText(body string) string {
	text := scriptRe.ReplaceAllString(body, " ")
	text = tagRe.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
