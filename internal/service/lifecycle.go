package service

import (
	"fmt"
	"log/slog"
	"sync"

	"rivalsense/internal/config"
	"rivalsense/pkg/llm"
)

type State int

const (
	StateUninitialized State = iota
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

// UnavailableError means no usable model client exists for this process.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("AI service not available: %s", e.Reason)
}

// Factory constructs a model client from the LLM settings.
type Factory func(cfg config.LLMConfig) (llm.Completer, error)

func DefaultFactory(cfg config.LLMConfig) (llm.Completer, error) {
	return llm.New(cfg.Provider, cfg.APIKey(), cfg.Model)
}

// Lifecycle owns the process-wide model client. The first call to Client builds
// it; every later call returns the same instance or the same failure.
type Lifecycle struct {
	cfg     config.LLMConfig
	factory Factory

	mu     sync.Mutex
	state  State
	client llm.Completer
	reason string
}

func NewLifecycle(cfg config.LLMConfig, factory Factory) *Lifecycle {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Lifecycle{cfg: cfg, factory: factory}
}

func (l *Lifecycle) Client() (llm.Completer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateReady:
		return l.client, nil
	case StateUnavailable:
		return nil, &UnavailableError{Reason: l.reason}
	}

	if l.cfg.APIKey() == "" {
		l.fail(fmt.Sprintf("no API key configured for provider %q", l.cfg.Provider))
		return nil, &UnavailableError{Reason: l.reason}
	}

	client, err := l.factory(l.cfg)
	if err != nil {
		l.fail(err.Error())
		return nil, &UnavailableError{Reason: l.reason}
	}

	l.client = client
	l.state = StateReady
	slog.Info("AI client initialized", "provider", l.cfg.Provider, "model", client.Model())
	return client, nil
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) fail(reason string) {
	l.state = StateUnavailable
	l.reason = reason
	slog.Error("AI client unavailable", "provider", l.cfg.Provider, "reason", reason)
}
