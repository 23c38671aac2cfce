package model

import "time"

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	RelevanceHigh   = "high"
	RelevanceMedium = "medium"
	RelevanceLow    = "low"
)

type SentimentResult struct {
	Title             string  `json:"title"`
	Link              string  `json:"link"`
	Snippet           string  `json:"snippet"`
	Date              string  `json:"date"`
	Source            string  `json:"source"`
	Sentiment         string  `json:"sentiment"`
	Confidence        float64 `json:"confidence"`
	ImpactScore       int     `json:"impact_score"`
	KeyInsight        string  `json:"key_insight"`
	BusinessRelevance string  `json:"business_relevance"`
}

// InsightEntry is one opportunity, threat, trend or recommendation exactly as
// the model returned it. The prompt asks for title and description plus a
// category specific pair (priority/actionable, severity/timeline,
// strength/impact, effort/expected_impact), but nothing is enforced.
type InsightEntry map[string]interface{}

type InsightReport struct {
	Opportunities   []InsightEntry `json:"opportunities"`
	Threats         []InsightEntry `json:"threats"`
	Trends          []InsightEntry `json:"trends"`
	Recommendations []InsightEntry `json:"recommendations"`
	Summary         string         `json:"summary"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Company         string         `json:"company"`
}

type FullAnalysis struct {
	SentimentAnalysis []SentimentResult `json:"sentiment_analysis"`
	WeeklyInsights    InsightReport     `json:"weekly_insights"`
	AnalysisTimestamp time.Time         `json:"analysis_timestamp"`
}
