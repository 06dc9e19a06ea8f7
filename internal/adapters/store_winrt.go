package adapters

import "time"

const defaultAsyncPollInterval = 50 * time.Millisecond

type WinRTOptions struct {
	// OwnerWindow parents the install consent dialog. Zero leaves it
	// unowned.
	OwnerWindow  uintptr
	PollInterval time.Duration
}

func (o WinRTOptions) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return defaultAsyncPollInterval
	}
	return o.PollInterval
}
