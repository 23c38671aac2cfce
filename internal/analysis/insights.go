package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"
)

const (
	maxCompanyNews     = 10
	maxPerCompetitor   = 3
	maxCompetitorNews  = 15
	companySnippetSize = 100
)

type promptNewsItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type CompetitorNewsItem struct {
	Competitor string `json:"competitor"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
}

// InsightSample is the bounded slice of a company record that goes into the
// insights prompt.
type InsightSample struct {
	CompanyNews    []model.NewsItem
	CompetitorNews []CompetitorNewsItem
}

// SelectInsightSample keeps the first 10 company items and, per competitor in
// record order, the first 3 items, capped at 15 competitor items overall.
func SelectInsightSample(company model.CompanyRecord) InsightSample {
	var sample InsightSample

	news := company.News
	if len(news) > maxCompanyNews {
		news = news[:maxCompanyNews]
	}
	sample.CompanyNews = news

	company.Competitors.Each(func(name string, record model.CompetitorRecord) bool {
		items := record.News
		if len(items) > maxPerCompetitor {
			items = items[:maxPerCompetitor]
		}
		for _, n := range items {
			sample.CompetitorNews = append(sample.CompetitorNews, CompetitorNewsItem{
				Competitor: name,
				Title:      n.Title,
				Snippet:    n.Snippet,
			})
		}
		return true
	})

	if len(sample.CompetitorNews) > maxCompetitorNews {
		sample.CompetitorNews = sample.CompetitorNews[:maxCompetitorNews]
	}

	return sample
}

// BuildInsightsPrompt renders the aggregate prompt for a company.
func BuildInsightsPrompt(company model.CompanyRecord, language string) (string, error) {
	sample := SelectInsightSample(company)

	companyItems := make([]promptNewsItem, len(sample.CompanyNews))
	for i, n := range sample.CompanyNews {
		companyItems[i] = promptNewsItem{Title: n.Title, Snippet: clip(n.Snippet, companySnippetSize)}
	}

	competitorItems := sample.CompetitorNews
	if competitorItems == nil {
		competitorItems = []CompetitorNewsItem{}
	}

	companyJSON, err := indentJSON(companyItems)
	if err != nil {
		return "", fmt.Errorf("encode company news: %w", err)
	}

	competitorJSON, err := indentJSON(competitorItems)
	if err != nil {
		return "", fmt.Errorf("encode competitor news: %w", err)
	}

	return fmt.Sprintf(insightsPrompt,
		company.Name,
		len(companyItems), companyJSON,
		len(competitorItems), competitorJSON,
		language,
	), nil
}

type insightsPayload struct {
	Opportunities   []model.InsightEntry `json:"opportunities"`
	Threats         []model.InsightEntry `json:"threats"`
	Trends          []model.InsightEntry `json:"trends"`
	Recommendations []model.InsightEntry `json:"recommendations"`
	Summary         string               `json:"summary"`
}

// GenerateInsights builds one aggregate report for the company. Any failure
// replaces the whole report with InsightFallback.
func (a *Analyzer) GenerateInsights(ctx context.Context, company model.CompanyRecord) model.InsightReport {
	report, failure := a.generateInsights(ctx, company)
	if failure != nil {
		slog.Warn("insights generation failed, using fallback",
			"company", company.Name,
			"kind", failure.Kind,
			"error", failure.Err,
		)
		return InsightFallback(company.Name, a.now())
	}
	return report
}

func (a *Analyzer) generateInsights(ctx context.Context, company model.CompanyRecord) (model.InsightReport, *Failure) {
	prompt, err := BuildInsightsPrompt(company, a.language)
	if err != nil {
		return model.InsightReport{}, &Failure{Kind: FailureParse, Err: err}
	}

	extraction, err := a.completeJSON(ctx, prompt, llm.CompletionOptions{
		Temperature: insightsTemperature,
		MaxTokens:   insightsMaxTokens,
	})
	if err != nil {
		return model.InsightReport{}, classifyFailure(err)
	}

	var payload insightsPayload
	if err := json.Unmarshal(extraction.Raw, &payload); err != nil {
		return model.InsightReport{}, classifyFailure(&decodeError{err: err})
	}

	report := model.InsightReport{
		Opportunities:   payload.Opportunities,
		Threats:         payload.Threats,
		Trends:          payload.Trends,
		Recommendations: payload.Recommendations,
		Summary:         payload.Summary,
		GeneratedAt:     a.now(),
		Company:         company.Name,
	}

	// Entries pass through untouched. Lists the model left out are reported
	// as empty, never null.
	report.Opportunities = orEmpty(report.Opportunities)
	report.Threats = orEmpty(report.Threats)
	report.Trends = orEmpty(report.Trends)
	report.Recommendations = orEmpty(report.Recommendations)

	return report, nil
}

func orEmpty(entries []model.InsightEntry) []model.InsightEntry {
	if entries == nil {
		return []model.InsightEntry{}
	}
	return entries
}

func indentJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
