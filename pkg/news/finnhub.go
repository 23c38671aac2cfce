package news

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

const finnhubDateLayout = "2006-01-02"

type FinnHubClient struct {
	client *finnhub.DefaultApiService
	now    func() time.Time
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	return newFinnHubClient(apiKey, &http.Client{Timeout: 30 * time.Second})
}

func newFinnHubClient(apiKey string, httpClient *http.Client) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = httpClient
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client, now: time.Now}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

// Search returns company news for q.Ticker. Queries without a ticker yield
// nothing since Finnhub has no free-text news search.
func (c *FinnHubClient) Search(ctx context.Context, q Query) ([]Article, error) {
	if q.Ticker == "" {
		return nil, nil
	}

	from, to := q.From, q.To
	if to.IsZero() {
		to = c.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}

	res, _, err := c.client.CompanyNews(ctx).
		Symbol(q.Ticker).
		From(from.Format(finnhubDateLayout)).
		To(to.Format(finnhubDateLayout)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", q.Ticker, err)
	}

	articles := make([]Article, 0, len(res))
	for _, news := range res {
		a := Article{
			Source:    c.Name(),
			Headline:  news.GetHeadline(),
			Detail:    news.GetSummary(),
			URL:       news.GetUrl(),
			Publisher: news.GetSource(),
		}

		if news.Id != nil {
			a.ExternalID = strconv.FormatInt(*news.Id, 10)
		}

		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0)
		}

		if related := news.GetRelated(); related != "" {
			a.Symbols = strings.Split(related, ",")
		} else {
			a.Symbols = []string{q.Ticker}
		}

		articles = append(articles, a)
	}

	return limitArticles(articles, q.Limit), nil
}

// Financials is a quote joined with the company profile.
type Financials struct {
	Symbol        string
	Name          string
	Industry      string
	CurrentPrice  float64
	ChangePercent float64
	DayHigh       float64
	DayLow        float64
	MarketCap     float64
	Website       string
}

// Financials fetches the latest quote and profile for a ticker. Market cap is
// in millions, as Finnhub reports it.
func (c *FinnHubClient) Financials(ctx context.Context, ticker string) (*Financials, error) {
	quote, _, err := c.client.Quote(ctx).Symbol(ticker).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", ticker, err)
	}

	profile, _, err := c.client.CompanyProfile2(ctx).Symbol(ticker).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", ticker, err)
	}

	f := &Financials{
		Symbol:       ticker,
		Name:         profile.GetName(),
		Industry:     profile.GetFinnhubIndustry(),
		CurrentPrice: float64(quote.GetC()),
		DayHigh:      float64(quote.GetH()),
		DayLow:       float64(quote.GetL()),
		MarketCap:    float64(profile.GetMarketCapitalization()),
		Website:      profile.GetWeburl(),
	}

	if prev := float64(quote.GetPc()); prev != 0 {
		f.ChangePercent = (f.CurrentPrice - prev) * 100 / prev
	}

	return f, nil
}
