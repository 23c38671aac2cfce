package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"
)

// ClassifySentiment labels each item in order, one model call at a time. The
// result always has one entry per input item; failed items get SentimentFallback.
func (a *Analyzer) ClassifySentiment(ctx context.Context, items []model.NewsItem) []model.SentimentResult {
	results := make([]model.SentimentResult, 0, len(items))

	for _, item := range items {
		result, failure := a.classifyOne(ctx, item)
		if failure != nil {
			slog.Warn("sentiment analysis failed, using fallback",
				"title", truncate(item.Title, 50),
				"kind", failure.Kind,
				"error", failure.Err,
			)
			result = SentimentFallback(item)
		}
		results = append(results, result)
	}

	return results
}

func (a *Analyzer) classifyOne(ctx context.Context, item model.NewsItem) (model.SentimentResult, *Failure) {
	prompt := fmt.Sprintf(sentimentPrompt, item.Title, item.Snippet, item.Source)

	extraction, err := a.completeJSON(ctx, prompt, llm.CompletionOptions{
		Temperature: sentimentTemperature,
		MaxTokens:   sentimentMaxTokens,
	})
	if err != nil {
		return model.SentimentResult{}, classifyFailure(err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(extraction.Raw, &fields); err != nil {
		return model.SentimentResult{}, classifyFailure(&decodeError{err: err})
	}

	return mergeSentiment(item, fields), nil
}

// mergeSentiment lays the fields the model returned over the defaults. A field
// that is missing or has the wrong JSON type keeps its default.
func mergeSentiment(item model.NewsItem, fields map[string]interface{}) model.SentimentResult {
	r := sentimentDefaults(item)

	if v, ok := fields["sentiment"].(string); ok {
		r.Sentiment = v
	}
	if v, ok := fields["confidence"].(float64); ok {
		r.Confidence = v
	}
	if v, ok := fields["impact_score"].(float64); ok {
		r.ImpactScore = int(math.Round(v))
	}
	if v, ok := fields["key_insight"].(string); ok {
		r.KeyInsight = v
	}
	if v, ok := fields["business_relevance"].(string); ok {
		r.BusinessRelevance = v
	}

	return r
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
