package playback

import (
	"context"
	"time"
)

// DefaultPollInterval is how often the engine position is sampled.
const DefaultPollInterval = 500 * time.Millisecond

// Poll samples the engine position every interval while the machine is Playing and
// records it with Progress. It returns when ctx is done.
func (m *Machine) Poll(ctx context.Context, interval time.Duration, sample func() time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.State() != Playing {
				continue
			}
			// A concurrent pause between the check and the update is harmless.
			_ = m.Progress(sample())
		}
	}
}
