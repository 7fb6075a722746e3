package notary

import "time"

// Clock is the notary's trusted time source. A request reads it
// exactly once, after signature checks and before commit — see
// TimeWindow.Evaluate's callers in nonvalidating.go and validating.go.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

var _ Clock = SystemClock{}
