package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"
)

func newsItems(prefix string, n int) []model.NewsItem {
	items := make([]model.NewsItem, n)
	for i := range items {
		items[i] = model.NewsItem{
			Title:   fmt.Sprintf("%s %d", prefix, i),
			Snippet: fmt.Sprintf("%s snippet %d", prefix, i),
		}
	}
	return items
}

func testCompany() model.CompanyRecord {
	return model.CompanyRecord{
		Name: "Acme",
		News: newsItems("acme", 12),
		Competitors: model.NewCompetitors(
			model.CompetitorRecord{Name: "Zeta", News: newsItems("zeta", 5)},
			model.CompetitorRecord{Name: "Alpha", News: newsItems("alpha", 2)},
			model.CompetitorRecord{Name: "Mid", News: newsItems("mid", 4)},
			model.CompetitorRecord{Name: "Beta", News: newsItems("beta", 4)},
			model.CompetitorRecord{Name: "Gamma", News: newsItems("gamma", 4)},
			model.CompetitorRecord{Name: "Delta", News: newsItems("delta", 4)},
		),
	}
}

func TestSelectInsightSample_Caps(t *testing.T) {
	sample := SelectInsightSample(testCompany())

	assert.Equal(t, 10, len(sample.CompanyNews))
	assert.Equal(t, "acme 9", sample.CompanyNews[9].Title)

	// 3 + 2 + 3 + 3 + 3 = 14 before Delta, which only gets one slot.
	assert.Equal(t, 15, len(sample.CompetitorNews))
	assert.Equal(t, "Zeta", sample.CompetitorNews[0].Competitor)
	assert.Equal(t, "zeta 2", sample.CompetitorNews[2].Title)
	assert.Equal(t, "Alpha", sample.CompetitorNews[3].Competitor)
	assert.Equal(t, "Mid", sample.CompetitorNews[5].Competitor)
	assert.Equal(t, "Delta", sample.CompetitorNews[14].Competitor)
	assert.Equal(t, "delta 0", sample.CompetitorNews[14].Title)
}

func TestSelectInsightSample_Small(t *testing.T) {
	company := model.CompanyRecord{
		Name: "Acme",
		News: newsItems("acme", 2),
	}

	sample := SelectInsightSample(company)

	assert.Equal(t, 2, len(sample.CompanyNews))
	assert.Equal(t, 0, len(sample.CompetitorNews))
}

func TestBuildInsightsPrompt(t *testing.T) {
	company := model.CompanyRecord{
		Name: "Acme",
		News: []model.NewsItem{
			{Title: "Launch <beta>", Snippet: strings.Repeat("x", 150)},
		},
		Competitors: model.NewCompetitors(
			model.CompetitorRecord{Name: "Rival", News: newsItems("rival", 1)},
		),
	}

	prompt, err := BuildInsightsPrompt(company, "German")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(prompt, "for the company Acme"))
	assert.Equal(t, true, strings.Contains(prompt, "Company news (1 items)"))
	assert.Equal(t, true, strings.Contains(prompt, "Competitor activity (1 items)"))
	assert.Equal(t, true, strings.Contains(prompt, "Write the insights in German"))
	assert.Equal(t, true, strings.Contains(prompt, "Launch <beta>"))
	assert.Equal(t, true, strings.Contains(prompt, `"snippet": "`+strings.Repeat("x", 100)+`"`))
	assert.Equal(t, false, strings.Contains(prompt, strings.Repeat("x", 101)))
	assert.Equal(t, true, strings.Contains(prompt, `"competitor": "Rival"`))
}

func TestBuildInsightsPrompt_NoCompetitors(t *testing.T) {
	prompt, err := BuildInsightsPrompt(model.CompanyRecord{Name: "Acme"}, "English")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(prompt, "Company news (0 items):\n[]"))
	assert.Equal(t, true, strings.Contains(prompt, "Competitor activity (0 items):\n[]"))
}

func TestGenerateInsights_Success(t *testing.T) {
	reply := "```json\n" + `{
		"opportunities": [{"title": "Expand", "description": "New market", "priority": "high", "actionable": true}],
		"threats": [{"title": "Pricing", "description": "Rival cut prices", "severity": "medium", "timeline": "short-term"}],
		"trends": [],
		"recommendations": [{"title": "Hire", "description": "Grow sales", "effort": "high", "expected_impact": "high"}],
		"summary": "Steady week"
	}` + "\n```"
	client := &fakeCompleter{replies: []string{reply}}

	report := newTestAnalyzer(client).GenerateInsights(context.Background(), testCompany())

	assert.Equal(t, 1, len(report.Opportunities))
	assert.Equal(t, "Expand", report.Opportunities[0]["title"])
	assert.Equal(t, true, report.Opportunities[0]["actionable"])
	assert.Equal(t, "short-term", report.Threats[0]["timeline"])
	assert.Equal(t, 0, len(report.Trends))
	assert.Equal(t, "high", report.Recommendations[0]["expected_impact"])
	assert.Equal(t, "Steady week", report.Summary)
	assert.Equal(t, "Acme", report.Company)
	assert.Equal(t, fixedNow, report.GeneratedAt)

	assert.Equal(t, 1, len(client.calls))
	assert.Equal(t, 0.3, client.calls[0].opts.Temperature)
	assert.Equal(t, 1500, client.calls[0].opts.MaxTokens)
}

func TestGenerateInsights_EntriesPassThroughUnchanged(t *testing.T) {
	reply := `{
		"opportunities": [
			{"title": "Expand", "description": "New market", "priority": 1, "actionable": "yes"},
			{"title": "Partner", "description": "OEM deal", "priority": "medium"}
		],
		"threats": [{"title": "Pricing", "severity": "high", "source": "Rival"}],
		"trends": [{"title": "Consolidation", "strength": "strong", "impact": "neutral", "confidence": 0.7}],
		"recommendations": [],
		"summary": "Busy week"
	}`
	client := &fakeCompleter{replies: []string{reply}}

	report := newTestAnalyzer(client).GenerateInsights(context.Background(), testCompany())

	assert.Equal(t, "Busy week", report.Summary)
	assert.Equal(t, 2, len(report.Opportunities))

	assert.Equal(t, "yes", report.Opportunities[0]["actionable"])
	assert.Equal(t, float64(1), report.Opportunities[0]["priority"])

	_, hasActionable := report.Opportunities[1]["actionable"]
	assert.Equal(t, false, hasActionable)
	assert.Equal(t, 3, len(report.Opportunities[1]))

	assert.Equal(t, "Rival", report.Threats[0]["source"])
	_, hasTimeline := report.Threats[0]["timeline"]
	assert.Equal(t, false, hasTimeline)

	assert.Equal(t, 0.7, report.Trends[0]["confidence"])
	assert.Equal(t, true, report.Recommendations != nil)
	assert.Equal(t, 0, len(report.Recommendations))
}

func TestGenerateInsights_MissingListsAreEmpty(t *testing.T) {
	client := &fakeCompleter{replies: []string{`{"summary": "Quiet week"}`}}

	report := newTestAnalyzer(client).GenerateInsights(context.Background(), testCompany())

	assert.Equal(t, "Quiet week", report.Summary)
	assert.Equal(t, true, report.Opportunities != nil)
	assert.Equal(t, true, report.Threats != nil)
	assert.Equal(t, true, report.Trends != nil)
	assert.Equal(t, true, report.Recommendations != nil)
	assert.Equal(t, 0, len(report.Opportunities))
}

func TestGenerateInsights_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeCompleter
	}{
		{
			name:   "provider error",
			client: &fakeCompleter{errs: []error{&llm.ProviderError{Provider: "fake", StatusCode: 429, Err: errors.New("rate limited")}}},
		},
		{
			name:   "no json",
			client: &fakeCompleter{replies: []string{"I cannot help with that."}},
		},
		{
			name:   "wrong shape",
			client: &fakeCompleter{replies: []string{`{"opportunities": "none", "summary": "x"}`}},
		},
		{
			name:   "timeout",
			client: &fakeCompleter{block: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := newTestAnalyzer(tt.client).GenerateInsights(context.Background(), testCompany())

			assert.Equal(t, InsightFallback("Acme", fixedNow), report)
			assert.Equal(t, 1, len(report.Opportunities))
			assert.Equal(t, "Analysis error", report.Opportunities[0]["title"])
			assert.Equal(t, "low", report.Opportunities[0]["priority"])
			assert.Equal(t, false, report.Opportunities[0]["actionable"])
			assert.Equal(t, 0, len(report.Threats))
			assert.Equal(t, UnavailableSummary, report.Summary)
			assert.Equal(t, 1, len(tt.client.calls))
		})
	}
}

func TestFullAnalysis(t *testing.T) {
	company := model.CompanyRecord{
		Name: "Acme",
		News: newsItems("acme", 2),
	}
	client := &fakeCompleter{
		replies: []string{
			`{"sentiment": "positive", "confidence": 0.9, "impact_score": 8, "key_insight": "Growth", "business_relevance": "high"}`,
			`not json`,
			`{"summary": "Good week"}`,
		},
	}

	result := newTestAnalyzer(client).FullAnalysis(context.Background(), company)

	assert.Equal(t, 2, len(result.SentimentAnalysis))
	assert.Equal(t, "positive", result.SentimentAnalysis[0].Sentiment)
	assert.Equal(t, NotAnalyzedInsight, result.SentimentAnalysis[1].KeyInsight)
	assert.Equal(t, "Good week", result.WeeklyInsights.Summary)
	assert.Equal(t, fixedNow, result.AnalysisTimestamp)
	assert.Equal(t, 3, len(client.calls))
	assert.Equal(t, 1500, client.calls[2].opts.MaxTokens)
}
