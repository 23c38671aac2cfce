package llm

import (
	"bytes"
	"encoding/json"
	"regexp"
)

const (
	StrategyDirect = "direct"
	StrategyFenced = "fenced"
	StrategyBraces = "braces"
)

var (
	fencedBlockPattern = regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceSpanPattern   = regexp.MustCompile(`(?s)\{.*\}`)
)

// Strategy locates a JSON candidate inside a model reply.
type Strategy struct {
	Name string
	Find func(text string) (string, bool)
}

// Extraction is a JSON object recovered from a reply and the strategy that found it.
type Extraction struct {
	Raw      json.RawMessage
	Strategy string
}

// Extractor tries its strategies in order; the first candidate that parses as a
// JSON object wins.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// DefaultStrategies returns direct parse, fenced block, then the greedy brace span.
// The brace span runs from the first '{' to the last '}' and can swallow stray
// braces in trailing prose.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyDirect, Find: findDirect},
		{Name: StrategyFenced, Find: findFencedBlock},
		{Name: StrategyBraces, Find: findBraceSpan},
	}
}

func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name
	}
	return names
}

func (e *Extractor) Extract(text string) (*Extraction, error) {
	for _, s := range e.strategies {
		candidate, ok := s.Find(text)
		if !ok {
			continue
		}
		if raw, ok := asObject(candidate); ok {
			return &Extraction{Raw: raw, Strategy: s.Name}, nil
		}
	}
	return nil, newParseError(text)
}

var defaultExtractor = NewExtractor()

// ExtractJSON runs the default strategy chain.
func ExtractJSON(text string) (*Extraction, error) {
	return defaultExtractor.Extract(text)
}

func findDirect(text string) (string, bool) {
	return text, true
}

func findFencedBlock(text string) (string, bool) {
	m := fencedBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func findBraceSpan(text string) (string, bool) {
	m := braceSpanPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

func asObject(candidate string) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace([]byte(candidate))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	if !json.Valid(trimmed) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}
