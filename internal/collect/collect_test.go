package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"rivalsense/pkg/news"
)

var fixedNow = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

// fakeSource answers term queries with one article per term and ticker queries
// with one article per ticker. Terms listed in fail return an error.
type fakeSource struct {
	name  string
	fail  map[string]bool
	delay map[string]time.Duration

	mu      sync.Mutex
	queries []news.Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, q news.Query) ([]news.Article, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	subject := q.Term
	if subject == "" {
		subject = q.Ticker
	}
	if d := f.delay[subject]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[subject] {
		return nil, errors.New("source unavailable")
	}

	return []news.Article{
		{
			Headline:    fmt.Sprintf("%s story", subject),
			Detail:      "details",
			URL:         fmt.Sprintf("https://%s.example.com/%s", f.name, subject),
			Publisher:   "Wire",
			Source:      f.name,
			PublishedAt: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
		},
	}, nil
}

type fakeFinancials struct {
	fail map[string]bool
}

func (f *fakeFinancials) Financials(ctx context.Context, ticker string) (*news.Financials, error) {
	if f.fail[ticker] {
		return nil, errors.New("quote unavailable")
	}
	return &news.Financials{Symbol: ticker, Name: ticker + " Inc", CurrentPrice: 10}, nil
}

func testCompany() CompanyConfig {
	return CompanyConfig{
		Key:         "acme",
		Name:        "Acme",
		SearchTerms: []string{"Acme EV", "Acme payments"},
		Ticker:      "ACME",
		Competitors: []CompetitorConfig{
			{Name: "Slow"},
			{Name: "Listed", Ticker: "LST"},
			{Name: "Fast"},
		},
	}
}

func newTestCollector(sources []news.NewsClient, fin FinancialsSource) *Collector {
	return NewCollector(sources, fin, Options{
		Concurrency: 3,
		Now:         func() time.Time { return fixedNow },
	})
}

func TestCollect(t *testing.T) {
	source := &fakeSource{
		name:  "feed",
		delay: map[string]time.Duration{`"Slow" news`: 20 * time.Millisecond},
	}
	c := newTestCollector([]news.NewsClient{source}, &fakeFinancials{})

	snapshot, err := c.Collect(context.Background(), testCompany())

	assert.Equal(t, nil, err)
	assert.Equal(t, "acme", snapshot.Key)
	assert.Equal(t, fixedNow, snapshot.CollectedAt)

	record := snapshot.Company
	assert.Equal(t, "Acme", record.Name)
	assert.Equal(t, "2025-06-02 09:30:00", record.CollectionDate)
	assert.Equal(t, 3, len(record.News))
	assert.Equal(t, "Acme EV story", record.News[0].Title)
	assert.Equal(t, "Acme payments story", record.News[1].Title)
	assert.Equal(t, "ACME story", record.News[2].Title)
	assert.Equal(t, "2025-05-30", record.News[0].Date)
	assert.Equal(t, "Wire", record.News[0].Source)

	// Configured order survives the concurrent fan-out.
	assert.Equal(t, []string{"Slow", "Listed", "Fast"}, record.Competitors.Names())

	listed, ok := record.Competitors.Get("Listed")
	assert.Equal(t, true, ok)
	assert.Equal(t, 2, len(listed.News))
	assert.Equal(t, `"Listed" news story`, listed.News[0].Title)
	assert.Equal(t, "LST story", listed.News[1].Title)

	assert.Equal(t, 2, len(snapshot.Financials))
	assert.Equal(t, "ACME", snapshot.Financials[0].Symbol)
	assert.Equal(t, "LST", snapshot.Financials[1].Symbol)
	assert.Equal(t, fixedNow, snapshot.Financials[1].LastUpdated)

	for _, q := range source.queries {
		assert.Equal(t, 5, q.Limit)
		assert.Equal(t, fixedNow.AddDate(0, 0, -30), q.From)
	}
}

func TestCollectSkipsFailures(t *testing.T) {
	broken := &fakeSource{name: "broken", fail: map[string]bool{"Acme EV": true, `"Fast" news`: true}}
	c := newTestCollector([]news.NewsClient{broken}, &fakeFinancials{fail: map[string]bool{"LST": true}})

	snapshot, err := c.Collect(context.Background(), testCompany())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(snapshot.Company.News))

	fast, _ := snapshot.Company.Competitors.Get("Fast")
	assert.Equal(t, true, fast.News != nil)
	assert.Equal(t, 0, len(fast.News))

	assert.Equal(t, "quote unavailable", snapshot.Financials[1].Error)
	assert.Equal(t, "", snapshot.Financials[0].Error)
}

func TestCollectDeduplicatesAcrossSources(t *testing.T) {
	a := &fakeSource{name: "same"}
	b := &fakeSource{name: "same"}
	c := newTestCollector([]news.NewsClient{a, b}, nil)

	company := CompanyConfig{Key: "acme", Name: "Acme", SearchTerms: []string{"Acme"}}
	snapshot, err := c.Collect(context.Background(), company)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(snapshot.Company.News))
	assert.Equal(t, 0, snapshot.Company.Competitors.Len())
	assert.Equal(t, 0, len(snapshot.Financials))
	assert.Equal(t, true, snapshot.Financials != nil)
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCollector([]news.NewsClient{&fakeSource{name: "feed"}}, nil)

	_, err := c.Collect(ctx, testCompany())

	assert.Equal(t, true, errors.Is(err, context.Canceled))
}

func TestToNewsItemDefaults(t *testing.T) {
	item := toNewsItem(news.Article{Headline: "x", Source: "GoogleNews"}, fixedNow)

	assert.Equal(t, "2025-06-02", item.Date)
	assert.Equal(t, "GoogleNews", item.Source)
}
