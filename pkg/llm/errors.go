package llm

import (
	"fmt"
	"unicode/utf8"
)

const parseSnippetChars = 200

// ParseError reports a reply that no extraction strategy could interpret.
type ParseError struct {
	Snippet string
}

func newParseError(text string) *ParseError {
	return &ParseError{Snippet: truncateRunes(text, parseSnippetChars)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no valid JSON found in response: %s...", e.Snippet)
}

// ProviderError wraps a transport, auth or quota failure from the model provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
