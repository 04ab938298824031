// Package suggest produces task descriptions from a task summary using a
// generative model. Failures are never fatal to callers: they keep the
// description they already have.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSummaryRequired is returned when asked to suggest for a blank summary.
	ErrSummaryRequired = errors.New("enter a task summary first to get suggestions")

	// ErrUnavailable wraps every backend failure (network, auth, model).
	ErrUnavailable = errors.New("suggestion unavailable")
)

// Suggester returns a suggested description for a task summary.
type Suggester interface {
	SuggestDescription(ctx context.Context, summary string) (string, error)
}

// Func adapts a function to the Suggester interface.
type Func func(ctx context.Context, summary string) (string, error)

func (f Func) SuggestDescription(ctx context.Context, summary string) (string, error) {
	return f(ctx, summary)
}

// Unavailable returns a Suggester that always fails with reason.
func Unavailable(reason error) Suggester {
	return Func(func(context.Context, string) (string, error) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, reason)
	})
}

// Static returns a Suggester that always answers text. Useful offline.
func Static(text string) Suggester {
	return Func(func(context.Context, string) (string, error) {
		return text, nil
	})
}

// Request is the boundary request shape.
type Request struct {
	TaskSummary string `json:"taskSummary"`
}

// Response is the boundary response shape.
type Response struct {
	SuggestedDescription string `json:"suggestedDescription"`
}

// Do runs s for req, normalizing the summary first.
func Do(ctx context.Context, s Suggester, req Request) (Response, error) {
	summary := strings.TrimSpace(req.TaskSummary)
	if summary == "" {
		return Response{}, ErrSummaryRequired
	}
	desc, err := s.SuggestDescription(ctx, summary)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrSummaryRequired) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return Response{}, err
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Response{}, fmt.Errorf("%w: empty suggestion", ErrUnavailable)
	}
	return Response{SuggestedDescription: desc}, nil
}
