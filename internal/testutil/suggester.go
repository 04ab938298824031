package testutil

import (
	"context"
	"sync"
)

// FakeSuggester returns Text (or Err) and records the summaries it saw.
type FakeSuggester struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []string
}

func (f *FakeSuggester) SuggestDescription(_ context.Context, summary string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, summary)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Calls returns the summaries passed so far.
func (f *FakeSuggester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
