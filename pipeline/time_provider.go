package pipeline

import "time"

type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

// RealTimeProvider is the wall clock.
var RealTimeProvider TimeProvider = &realTimeProvider{}
