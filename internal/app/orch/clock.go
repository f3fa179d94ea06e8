package orch

import "time"

// Clock abstracts time so offer timers and the stale sweep can be driven
// manually in tests. No cancel handle is exposed: a fired timer re-checks
// session status and turns itself into a no-op when the call moved on.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
