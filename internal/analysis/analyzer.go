package analysis

import (
	"context"
	"time"

	"rivalsense/internal/model"
	"rivalsense/pkg/llm"
)

const (
	sentimentTemperature = 0.1
	sentimentMaxTokens   = 200
	insightsTemperature  = 0.3
	insightsMaxTokens    = 1500

	defaultTimeout  = 60 * time.Second
	defaultLanguage = "English"
)

type Options struct {
	// Timeout bounds each model call; a call that runs over is handled like a
	// provider failure.
	Timeout  time.Duration
	Language string
	Now      func() time.Time
}

// Analyzer runs sentiment classification and insight generation against one
// model client. It holds no per-request state.
type Analyzer struct {
	client    llm.Completer
	extractor *llm.Extractor
	timeout   time.Duration
	language  string
	now       func() time.Time
}

func NewAnalyzer(client llm.Completer, opts Options) *Analyzer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Analyzer{
		client:    client,
		extractor: llm.NewExtractor(),
		timeout:   opts.Timeout,
		language:  opts.Language,
		now:       opts.Now,
	}
}

// completeJSON calls the model once and extracts a JSON object from the reply.
func (a *Analyzer) completeJSON(ctx context.Context, prompt string, opts llm.CompletionOptions) (*llm.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.client.Complete(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}

	return a.extractor.Extract(text)
}

// FullAnalysis classifies the company's own news, then generates the insight
// report, sequentially.
func (a *Analyzer) FullAnalysis(ctx context.Context, company model.CompanyRecord) model.FullAnalysis {
	sentiment := a.ClassifySentiment(ctx, company.News)
	insights := a.GenerateInsights(ctx, company)

	return model.FullAnalysis{
		SentimentAnalysis: sentiment,
		WeeklyInsights:    insights,
		AnalysisTimestamp: a.now(),
	}
}
