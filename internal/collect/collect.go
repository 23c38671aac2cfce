package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rivalsense/internal/model"
	"rivalsense/pkg/news"
)

const (
	defaultPerQuery    = 5
	defaultDaysBack    = 30
	defaultConcurrency = 4

	collectionDateLayout = "2006-01-02 15:04:05"
	newsDateLayout       = "2006-01-02"
)

// FinancialsSource looks up market data for a listed company.
type FinancialsSource interface {
	Financials(ctx context.Context, ticker string) (*news.Financials, error)
}

type Options struct {
	PerQuery    int
	DaysBack    int
	Concurrency int
	Now         func() time.Time
}

// Collector gathers news for a company and its competitors from every
// configured source.
type Collector struct {
	sources     []news.NewsClient
	financials  FinancialsSource
	perQuery    int
	daysBack    int
	concurrency int
	now         func() time.Time
}

func NewCollector(sources []news.NewsClient, financials FinancialsSource, opts Options) *Collector {
	if opts.PerQuery <= 0 {
		opts.PerQuery = defaultPerQuery
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = defaultDaysBack
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Collector{
		sources:     sources,
		financials:  financials,
		perQuery:    opts.PerQuery,
		daysBack:    opts.DaysBack,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// Collect builds one snapshot for the company. Source failures are logged and
// skipped; only cancellation of ctx fails the run.
func (c *Collector) Collect(ctx context.Context, company CompanyConfig) (*model.CompanySnapshot, error) {
	now := c.now()
	from, to := news.Window(now, c.daysBack)

	record := model.CompanyRecord{
		Name:           company.Name,
		CollectionDate: now.Format(collectionDateLayout),
		News:           []model.NewsItem{},
	}

	seen := make(map[string]bool)
	for _, term := range company.SearchTerms {
		slog.Info("searching company news", "company", company.Name, "term", term)
		record.News = append(record.News, c.search(ctx, news.Query{Term: term, From: from, To: to}, seen, now)...)
	}
	if company.Ticker != "" {
		record.News = append(record.News, c.search(ctx, news.Query{Ticker: company.Ticker, From: from, To: to}, seen, now)...)
	}

	competitors := make([]model.CompetitorRecord, len(company.Competitors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, comp := range company.Competitors {
		i, comp := i, comp
		g.Go(func() error {
			competitors[i] = c.collectCompetitor(gctx, comp, from, to, now)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collecting competitors for %s: %w", company.Name, err)
	}

	for _, r := range competitors {
		record.Competitors.Set(r.Name, r)
	}

	snapshot := &model.CompanySnapshot{
		Key:         company.Key,
		Company:     record,
		Financials:  c.collectFinancials(ctx, company, now),
		CollectedAt: now,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (c *Collector) collectCompetitor(ctx context.Context, comp CompetitorConfig, from, to, now time.Time) model.CompetitorRecord {
	slog.Info("searching competitor news", "competitor", comp.Name)

	seen := make(map[string]bool)
	items := c.search(ctx, news.Query{Term: fmt.Sprintf("%q news", comp.Name), From: from, To: to}, seen, now)
	if comp.Ticker != "" {
		items = append(items, c.search(ctx, news.Query{Ticker: comp.Ticker, From: from, To: to}, seen, now)...)
	}

	return model.CompetitorRecord{Name: comp.Name, News: items}
}

// search runs q against every source and converts the hits, skipping URLs
// already present in seen.
func (c *Collector) search(ctx context.Context, q news.Query, seen map[string]bool, now time.Time) []model.NewsItem {
	q.Limit = c.perQuery
	items := []model.NewsItem{}

	for _, source := range c.sources {
		articles, err := source.Search(ctx, q)
		if err != nil {
			slog.Warn("news search failed", "source", source.Name(), "term", q.Term, "ticker", q.Ticker, "error", err)
			continue
		}

		for _, a := range articles {
			if a.URL != "" && seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			items = append(items, toNewsItem(a, now))
		}
	}

	return items
}

func toNewsItem(a news.Article, now time.Time) model.NewsItem {
	date := now
	if !a.PublishedAt.IsZero() {
		date = a.PublishedAt
	}

	source := a.Publisher
	if source == "" {
		source = a.Source
	}

	return model.NewsItem{
		Title:   a.Headline,
		Link:    a.URL,
		Snippet: a.Detail,
		Date:    date.Format(newsDateLayout),
		Source:  source,
	}
}

func (c *Collector) collectFinancials(ctx context.Context, company CompanyConfig, now time.Time) []model.FinancialSnapshot {
	snapshots := []model.FinancialSnapshot{}
	if c.financials == nil {
		return snapshots
	}

	var tickers []string
	if company.Ticker != "" {
		tickers = append(tickers, company.Ticker)
	}
	for _, comp := range company.Competitors {
		if comp.Ticker != "" {
			tickers = append(tickers, comp.Ticker)
		}
	}

	results := make([]model.FinancialSnapshot, len(tickers))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			results[i] = c.fetchFinancials(ctx, ticker, now)
			return nil
		})
	}
	g.Wait()

	return append(snapshots, results...)
}

func (c *Collector) fetchFinancials(ctx context.Context, ticker string, now time.Time) model.FinancialSnapshot {
	f, err := c.financials.Financials(ctx, ticker)
	if err != nil {
		slog.Warn("financial data fetch failed", "ticker", ticker, "error", err)
		return model.FinancialSnapshot{Symbol: ticker, LastUpdated: now, Error: err.Error()}
	}

	return model.FinancialSnapshot{
		Symbol:        f.Symbol,
		Name:          f.Name,
		Industry:      f.Industry,
		CurrentPrice:  f.CurrentPrice,
		ChangePercent: f.ChangePercent,
		DayHigh:       f.DayHigh,
		DayLow:        f.DayLow,
		MarketCap:     f.MarketCap,
		Website:       f.Website,
		LastUpdated:   now,
	}
}
