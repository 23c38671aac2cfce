package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"

	"github.com/go-playground/assert/v2"
)

func sentimentItems(titles ...string) []model.NewsItem {
	items := make([]model.NewsItem, len(titles))
	for i, t := range titles {
		items[i] = model.NewsItem{
			Title:   t,
			Link:    "https://example.com/" + t,
			Snippet: "snippet for " + t,
			Date:    "2025-06-01",
			Source:  "example.com",
		}
	}
	return items
}

func TestClassifySentiment_PreservesOrderAndLength(t *testing.T) {
	client := &fakeCompleter{
		replies: []string{
			`{"sentiment":"positive","confidence":0.9,"impact_score":8,"key_insight":"Funding round","business_relevance":"high"}`,
			"",
			"I cannot help with that.",
			"```json\n{\"sentiment\":\"negative\"}\n```",
		},
		errs: []error{nil, &llm.ProviderError{Provider: "fake", StatusCode: 429, Err: errors.New("quota")}},
	}

	items := sentimentItems("a", "b", "c", "d")
	results := newTestAnalyzer(client).ClassifySentiment(context.Background(), items)

	assert.Equal(t, 4, len(results))
	assert.Equal(t, 4, len(client.calls))
	for i, r := range results {
		assert.Equal(t, items[i].Title, r.Title)
		assert.Equal(t, items[i].Link, r.Link)
	}

	assert.Equal(t, "positive", results[0].Sentiment)
	assert.Equal(t, 0.9, results[0].Confidence)
	assert.Equal(t, 8, results[0].ImpactScore)
	assert.Equal(t, "high", results[0].BusinessRelevance)

	assert.Equal(t, NotAnalyzedInsight, results[1].KeyInsight)
	assert.Equal(t, NotAnalyzedInsight, results[2].KeyInsight)

	assert.Equal(t, "negative", results[3].Sentiment)
	assert.Equal(t, "", results[3].KeyInsight)
}

func TestClassifySentiment_ProviderErrorUsesDefaults(t *testing.T) {
	client := &fakeCompleter{errs: []error{&llm.ProviderError{Provider: "fake", Err: errors.New("connection refused")}}}

	items := sentimentItems("outage")
	results := newTestAnalyzer(client).ClassifySentiment(context.Background(), items)

	assert.Equal(t, 1, len(results))
	r := results[0]
	assert.Equal(t, "neutral", r.Sentiment)
	assert.Equal(t, 0.5, r.Confidence)
	assert.Equal(t, 5, r.ImpactScore)
	assert.Equal(t, "medium", r.BusinessRelevance)
	assert.Equal(t, NotAnalyzedInsight, r.KeyInsight)
	assert.Equal(t, items[0].Snippet, r.Snippet)
	assert.Equal(t, items[0].Date, r.Date)
	assert.Equal(t, items[0].Source, r.Source)
}

func TestClassifySentiment_MergesOverDefaults(t *testing.T) {
	client := &fakeCompleter{replies: []string{`{"confidence":"very","impact_score":7.6,"business_relevance":"low","extra":true}`}}

	results := newTestAnalyzer(client).ClassifySentiment(context.Background(), sentimentItems("x"))

	r := results[0]
	assert.Equal(t, "neutral", r.Sentiment)
	assert.Equal(t, 0.5, r.Confidence)
	assert.Equal(t, 8, r.ImpactScore)
	assert.Equal(t, "", r.KeyInsight)
	assert.Equal(t, "low", r.BusinessRelevance)
}

func TestClassifySentiment_ValuesAreNotClamped(t *testing.T) {
	client := &fakeCompleter{replies: []string{`{"confidence":1.4,"impact_score":12}`}}

	r := newTestAnalyzer(client).ClassifySentiment(context.Background(), sentimentItems("x"))[0]

	assert.Equal(t, 1.4, r.Confidence)
	assert.Equal(t, 12, r.ImpactScore)
}

func TestClassifySentiment_PromptAndOptions(t *testing.T) {
	client := &fakeCompleter{replies: []string{`{}`}}
	item := model.NewsItem{Title: "Samsara beats estimates", Snippet: "Revenue grew 35%", Source: "reuters.com"}

	newTestAnalyzer(client).ClassifySentiment(context.Background(), []model.NewsItem{item})

	call := client.calls[0]
	assert.Equal(t, true, strings.Contains(call.prompt, "Title: Samsara beats estimates"))
	assert.Equal(t, true, strings.Contains(call.prompt, "Content: Revenue grew 35%"))
	assert.Equal(t, true, strings.Contains(call.prompt, "Source: reuters.com"))
	assert.Equal(t, 0.1, call.opts.Temperature)
	assert.Equal(t, 200, call.opts.MaxTokens)
}

func TestClassifySentiment_Empty(t *testing.T) {
	client := &fakeCompleter{}

	results := newTestAnalyzer(client).ClassifySentiment(context.Background(), nil)

	assert.Equal(t, 0, len(results))
	assert.Equal(t, true, results != nil)
	assert.Equal(t, 0, len(client.calls))
}

func TestClassifySentiment_TimeoutFallsBack(t *testing.T) {
	client := &fakeCompleter{block: true}
	a := NewAnalyzer(client, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	results := a.ClassifySentiment(context.Background(), sentimentItems("slow", "slower"))

	assert.Equal(t, 2, len(results))
	assert.Equal(t, NotAnalyzedInsight, results[0].KeyInsight)
	assert.Equal(t, NotAnalyzedInsight, results[1].KeyInsight)
	assert.Equal(t, true, time.Since(start) < 5*time.Second)
}

func TestClassifyFailure(t *testing.T) {
	_, parseErr := llm.ExtractJSON("nothing here")
	assert.Equal(t, FailureParse, classifyFailure(parseErr).Kind)
	assert.Equal(t, FailureParse, classifyFailure(&decodeError{err: errors.New("bad type")}).Kind)
	assert.Equal(t, FailureProvider, classifyFailure(&llm.ProviderError{Provider: "openai", Err: errors.New("401")}).Kind)
}

func TestSentimentFallback(t *testing.T) {
	item := model.NewsItem{Title: "t", Link: "l", Snippet: "s", Date: "d", Source: "src"}

	r := SentimentFallback(item)

	assert.Equal(t, model.SentimentResult{
		Title:             "t",
		Link:              "l",
		Snippet:           "s",
		Date:              "d",
		Source:            "src",
		Sentiment:         "neutral",
		Confidence:        0.5,
		ImpactScore:       5,
		KeyInsight:        "could not analyze",
		BusinessRelevance: "medium",
	}, r)
}
