package news

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const googleNewsSearchURL = "https://news.google.com/rss/search"

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

type GoogleNewsClient struct {
	parser  *gofeed.Parser
	baseURL string
	now     func() time.Time
}

func NewGoogleNewsClient() *GoogleNewsClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 30 * time.Second}
	return &GoogleNewsClient{
		parser:  parser,
		baseURL: googleNewsSearchURL,
		now:     time.Now,
	}
}

func (c *GoogleNewsClient) Name() string {
	return "GoogleNews"
}

func (c *GoogleNewsClient) Search(ctx context.Context, q Query) ([]Article, error) {
	if q.Term == "" {
		return nil, nil
	}

	feed, err := c.parser.ParseURLWithContext(c.searchURL(q), ctx)
	if err != nil {
		return nil, fmt.Errorf("google news fetch %q: %w", q.Term, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a, ok := c.parseItem(item)
		if !ok {
			continue
		}
		if !q.From.IsZero() && !a.PublishedAt.IsZero() && a.PublishedAt.Before(q.From) {
			continue
		}
		articles = append(articles, a)
	}

	return limitArticles(articles, q.Limit), nil
}

func (c *GoogleNewsClient) searchURL(q Query) string {
	term := q.Term
	if !q.From.IsZero() {
		to := q.To
		if to.IsZero() {
			to = c.now()
		}
		days := int(to.Sub(q.From).Hours()/24 + 0.5)
		if days > 0 {
			term = fmt.Sprintf("%s when:%dd", term, days)
		}
	}

	v := url.Values{}
	v.Set("q", term)
	v.Set("hl", "en-US")
	v.Set("gl", "US")
	v.Set("ceid", "US:en")
	return c.baseURL + "?" + v.Encode()
}

func (c *GoogleNewsClient) parseItem(item *gofeed.Item) (Article, bool) {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return Article{}, false
	}

	// Google News titles carry the publisher as a " - Publisher" suffix.
	publisher := ""
	if i := strings.LastIndex(title, " - "); i > 0 {
		publisher = strings.TrimSpace(title[i+3:])
		title = strings.TrimSpace(title[:i])
	}
	if publisher == "" {
		publisher = hostOf(link)
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	detail := item.Description
	if item.Content != "" {
		detail = item.Content
	}

	return Article{
		ExternalID:  generateExternalID(link),
		Headline:    title,
		Detail:      stripHTML(detail),
		URL:         link,
		Source:      c.Name(),
		PublishedAt: publishedAt,
		Symbols:     []string{},
		Publisher:   publisher,
	}, true
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
