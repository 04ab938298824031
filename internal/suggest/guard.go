package suggest

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Guard collapses concurrent requests for the same summary into a single
// backend call; late callers receive the in-flight result.
//
// The shared call is detached from any one caller's cancellation and bounded
// by Timeout instead, so a caller that gives up only abandons its own wait.
type Guard struct {
	next    Suggester
	group   singleflight.Group
	Timeout time.Duration
}

// NewGuard wraps next.
func NewGuard(next Suggester) *Guard {
	return &Guard{next: next, Timeout: DefaultTimeout}
}

func (g *Guard) SuggestDescription(ctx context.Context, summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrSummaryRequired
	}
	ch := g.group.DoChan(summary, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout())
		defer cancel()
		return g.next.SuggestDescription(shared, summary)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (g *Guard) timeout() time.Duration {
	if g.Timeout <= 0 {
		return DefaultTimeout
	}
	return g.Timeout
}
