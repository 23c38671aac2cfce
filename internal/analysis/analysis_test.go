package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"rivalsense/pkg/llm"
)

type fakeCall struct {
	prompt string
	opts   llm.CompletionOptions
}

// fakeCompleter answers calls in order from replies; a nil reply entry with a
// non-nil error entry fails that call.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   []fakeCall
	block   bool
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	f.mu.Lock()
	i := len(f.calls)
	f.calls = append(f.calls, fakeCall{prompt: prompt, opts: opts})
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", &llm.ProviderError{Provider: "fake", Err: ctx.Err()}
	}

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", &llm.ProviderError{Provider: "fake", Err: errors.New("no scripted reply")}
}

func (f *fakeCompleter) Model() string { return "fake" }

var fixedNow = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func newTestAnalyzer(client llm.Completer) *Analyzer {
	return NewAnalyzer(client, Options{
		Timeout: time.Second,
		Now:     func() time.Time { return fixedNow },
	})
}
