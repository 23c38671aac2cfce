package news

import (
	"context"
	"time"
)

type Article struct {
	ExternalID  string
	Headline    string
	Detail      string
	URL         string
	Source      string
	PublishedAt time.Time
	Symbols     []string
	Publisher   string
}

// Query selects news about one subject. Term drives full-text sources and
// Ticker drives market-data sources; a source ignores the field it cannot use.
type Query struct {
	Term   string
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
}

type NewsClient interface {
	Search(ctx context.Context, q Query) ([]Article, error)
	Name() string
}

// Window returns a query range ending now and reaching back the given days.
func Window(now time.Time, days int) (from, to time.Time) {
	return now.AddDate(0, 0, -days), now
}

func limitArticles(articles []Article, limit int) []Article {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
