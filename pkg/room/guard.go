package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
)

// CallbackGuard runs user collision callbacks through a circuit breaker.
// Panics are turned into errors, and once too many callbacks in a row have
// failed, callbacks are skipped until the breaker lets a trial call through.
type CallbackGuard struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewCallbackGuard creates a guard from the callback configuration.
func NewCallbackGuard(cfg config.CallbackConfig, logger *logging.Logger) *CallbackGuard {
	g := &CallbackGuard{logger: logger}
	settings := gobreaker.Settings{
		Name:        "collision-callbacks",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn(context.Background(), "callback breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	g.breaker = gobreaker.NewCircuitBreaker(settings)
	return g
}

// Call invokes self's collision callback with other. Instances without a
// callback are not counted by the breaker.
func (g *CallbackGuard) Call(ctx context.Context, self, other *entity.Instance) error {
	if self.OnCollision == nil {
		return nil
	}

	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, invoke(self, other)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.logger.Debug(ctx, "collision callback skipped", "self", self.Name, "state", g.breaker.State().String())
		return nil
	}
	return err
}

// State returns the breaker state.
func (g *CallbackGuard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the breaker's request counts for the current interval.
func (g *CallbackGuard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}

func invoke(self, other *entity.Instance) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collision callback of %q panicked: %v", self.Name, p)
		}
	}()
	return self.Collide(other)
}
