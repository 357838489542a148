// Package resolver turns a video id into something playable by walking an ordered
// list of third-party extraction strategies.
package resolver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"soundbex/internal/core"
)

// FallbackSource names the degraded result returned when every strategy failed.
const FallbackSource = "youtube_direct"

// Attempt outcomes reported to a Recorder.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTimeout   = "timeout"
	OutcomeThrottled = "throttled"
)

// ErrThrottled is returned by a strategy whose rate limit is exhausted.
var ErrThrottled = errors.New("strategy rate limit exceeded")

// Strategy is one independent extraction technique.
type Strategy interface {
	// Name identifies the strategy in config, logs and metrics.
	Name() string
	// Attempt returns a direct media URL for videoID or an error. It makes a single
	// attempt and must honor ctx.
	Attempt(ctx context.Context, videoID string) (*core.ResolvedStream, error)
}

// Recorder observes strategy attempts and final resolutions.
type Recorder interface {
	ObserveAttempt(strategy, outcome string, elapsed time.Duration)
	ObserveResolution(kind core.StreamKind, source string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, string, time.Duration) {}
func (nopRecorder) ObserveResolution(core.StreamKind, string)    {}

// Chain tries its strategies in order and stops at the first usable URL.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	recorder   Recorder
	logger     *zap.Logger
}

// NewChain creates a chain over strategies. Each attempt is bounded by timeout.
// A nil recorder discards observations.
func NewChain(strategies []Strategy, timeout time.Duration, recorder Recorder, logger *zap.Logger) *Chain {
	if timeout <= 0 {
		timeout = core.DefaultStrategyTimeoutSecs * time.Second
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Chain{
		strategies: strategies,
		timeout:    timeout,
		recorder:   recorder,
		logger:     logger,
	}
}

// Strategies returns the strategy names in the order they are tried.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve never fails. When no strategy produces a URL it returns the video's watch page
// with kind core.KindRawPageFallback.
func (c *Chain) Resolve(ctx context.Context, videoID string) core.ResolvedStream {
	for _, strategy := range c.strategies {
		if ctx.Err() != nil {
			break
		}

		stream, ok := c.attempt(ctx, strategy, videoID)
		if ok {
			c.logger.Info("Resolved audio stream",
				zap.String("videoID", videoID),
				zap.String("strategy", strategy.Name()))
			c.recorder.ObserveResolution(stream.Kind, stream.Source)
			return stream
		}
	}

	c.logger.Warn("Falling back to watch page",
		zap.String("videoID", videoID),
		zap.Error(core.ErrResolutionExhausted))

	fallback := core.ResolvedStream{
		URL:    core.WatchURL(videoID),
		Source: FallbackSource,
		Kind:   core.KindRawPageFallback,
	}
	c.recorder.ObserveResolution(fallback.Kind, fallback.Source)
	return fallback
}

func (c *Chain) attempt(ctx context.Context, strategy Strategy, videoID string) (core.ResolvedStream, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	stream, err := strategy.Attempt(attemptCtx, videoID)
	elapsed := time.Since(start)

	if err == nil && (stream == nil || stream.URL == "") {
		err = errors.New("strategy returned no URL")
	}

	if err != nil {
		outcome := OutcomeFailure
		switch {
		case errors.Is(err, ErrThrottled):
			outcome = OutcomeThrottled
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
			outcome = OutcomeTimeout
		}
		c.recorder.ObserveAttempt(strategy.Name(), outcome, elapsed)
		c.logger.Debug("Strategy failed",
			zap.String("videoID", videoID),
			zap.String("strategy", strategy.Name()),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return core.ResolvedStream{}, false
	}

	c.recorder.ObserveAttempt(strategy.Name(), OutcomeSuccess, elapsed)

	result := *stream
	if result.Source == "" {
		result.Source = strategy.Name()
	}
	if result.Kind == "" {
		result.Kind = core.KindDirectAudio
	}
	return result, true
}
