package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vc-assistant/internal/common/logger"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures BreakerCompleter.
type BreakerSettings struct {
	Name             string
	MinRequests      uint32
	FailureThreshold float64
	OpenTimeout      time.Duration
}

// BreakerCompleter fails fast while the provider is tripping. It never retries.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerCompleter(next Completer, s BreakerSettings, log logger.Logger) *BreakerCompleter {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("completion circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
		IsSuccessful: func(err error) bool {
			// Cancelled calls do not count against the provider.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerCompleter{next: next, cb: cb}
}

func (b *BreakerCompleter) Complete(ctx context.Context, conversation []Turn, data map[string]interface{}) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, conversation, data)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}
		return "", err
	}
	return out.(string), nil
}

func (b *BreakerCompleter) State() gobreaker.State {
	return b.cb.State()
}

// Ready fails while the breaker is open so /ready reports the provider as down.
func (b *BreakerCompleter) Ready(context.Context) error {
	if b.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: breaker %s is open", ErrCompletionFailed, b.cb.Name())
	}
	return nil
}
