package analysis

import (
	"errors"
	"time"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"
)

const (
	NotAnalyzedInsight   = "could not analyze"
	UnavailableSummary   = "AI analysis currently unavailable"
	analysisErrorTitle   = "Analysis error"
	analysisErrorMessage = "AI analysis could not be generated"
	defaultConfidence    = 0.5
	defaultImpactScore   = 5
	defaultKeyInsight    = ""
	defaultSentiment     = model.SentimentNeutral
	defaultRelevance     = model.RelevanceMedium
)

type FailureKind string

const (
	FailureProvider FailureKind = "provider"
	FailureParse    FailureKind = "parse"
)

// Failure is the classified reason an analysis call fell back to defaults.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func classifyFailure(err error) *Failure {
	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		return &Failure{Kind: FailureParse, Err: err}
	}

	var decodeErr *decodeError
	if errors.As(err, &decodeErr) {
		return &Failure{Kind: FailureParse, Err: err}
	}

	return &Failure{Kind: FailureProvider, Err: err}
}

// decodeError is an extracted object whose fields have the wrong shape.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decode model reply: " + e.err.Error()
}

func (e *decodeError) Unwrap() error {
	return e.err
}

func sentimentDefaults(item model.NewsItem) model.SentimentResult {
	return model.SentimentResult{
		Title:             item.Title,
		Link:              item.Link,
		Snippet:           item.Snippet,
		Date:              item.Date,
		Source:            item.Source,
		Sentiment:         defaultSentiment,
		Confidence:        defaultConfidence,
		ImpactScore:       defaultImpactScore,
		KeyInsight:        defaultKeyInsight,
		BusinessRelevance: defaultRelevance,
	}
}

// SentimentFallback is the record emitted for an item whose analysis failed.
// Every failure kind maps to the same placeholder.
func SentimentFallback(item model.NewsItem) model.SentimentResult {
	r := sentimentDefaults(item)
	r.KeyInsight = NotAnalyzedInsight
	return r
}

// InsightFallback replaces a whole report when generation fails.
func InsightFallback(company string, now time.Time) model.InsightReport {
	return model.InsightReport{
		Opportunities: []model.InsightEntry{
			{
				"title":       analysisErrorTitle,
				"description": analysisErrorMessage,
				"priority":    "low",
				"actionable":  false,
			},
		},
		Threats:         []model.InsightEntry{},
		Trends:          []model.InsightEntry{},
		Recommendations: []model.InsightEntry{},
		Summary:         UnavailableSummary,
		GeneratedAt:     now,
		Company:         company,
	}
}
