package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"soundbex/internal/core"
)

// factories maps configuration names to strategy constructors.
var factories = map[string]func(*http.Client) Strategy{
	"loader":      func(c *http.Client) Strategy { return NewLoaderStrategy(c) },
	"y2mate":      func(c *http.Client) Strategy { return NewY2MateStrategy(c) },
	"convert2mp3": func(c *http.Client) Strategy { return NewConvert2MP3Strategy(c) },
	"vevioz":      func(c *http.Client) Strategy { return NewVeviozStrategy(c) },
	"innertube":   func(c *http.Client) Strategy { return NewNativeStrategy(c) },
}

// KnownStrategies reports whether every name has a registered strategy.
func KnownStrategies(names []string) error {
	for _, name := range names {
		if _, ok := factories[strings.TrimSpace(name)]; !ok {
			return fmt.Errorf("%w: unknown resolver strategy %q", core.ErrValidation, name)
		}
	}
	return nil
}

// NewStrategies builds the configured strategies in order, each behind its own rate limiter.
func NewStrategies(config *core.ResolverConfig, client *http.Client) ([]Strategy, error) {
	if err := KnownStrategies(config.Strategies); err != nil {
		return nil, err
	}

	strategies := make([]Strategy, 0, len(config.Strategies))
	for _, name := range config.Strategies {
		strategy := factories[strings.TrimSpace(name)](client)
		strategies = append(strategies, Limit(strategy, config.RatePerMinute))
	}
	return strategies, nil
}

type limitedStrategy struct {
	Strategy
	limiter *rate.Limiter
}

// Limit wraps strategy so that it makes at most perMinute attempts per minute.
// Attempts above the limit fail immediately with ErrThrottled. perMinute <= 0 disables the limit.
func Limit(strategy Strategy, perMinute int) Strategy {
	if perMinute <= 0 {
		return strategy
	}
	return &limitedStrategy{
		Strategy: strategy,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (s *limitedStrategy) Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error) {
	if !s.limiter.Allow() {
		return nil, ErrThrottled
	}
	return s.Strategy.Attempt(ctx, videoID)
}
