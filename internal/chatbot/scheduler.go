package chatbot

import (
	"math/rand"
	"time"
)

// Timer is a scheduled task that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// RealScheduler schedules on the runtime timer heap.
var RealScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
})

// Default bounds of the simulated typing delay.
const (
	DefaultTypingDelayMin = 1000 * time.Millisecond
	DefaultTypingDelayMax = 2000 * time.Millisecond
)

// RandomDelay returns a delay source drawing uniformly from [lo, hi).
func RandomDelay(lo, hi time.Duration) func() time.Duration {
	if hi <= lo {
		return func() time.Duration { return lo }
	}
	span := hi - lo
	return func() time.Duration {
		return lo + time.Duration(rand.Int63n(int64(span)))
	}
}
