// Package lockout implements the failed-attempt counter and timed lockout for accounts.
//
// Unlock is lazy: nothing runs in the background, the state is recomputed from
// (failed attempts, locked until, now) whenever an account is read.
package lockout

import "time"

// Defaults applied when a Policy field is zero.
const (
	DefaultMaxAttempts = 5
	DefaultDuration    = 30 * time.Minute
)

// State is the lockout state of an account.
type State int

// States.
const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "LOCKED"
	}
	return "UNLOCKED"
}

// Policy holds the lockout threshold and window.
type Policy struct {
	MaxAttempts int
	Duration    time.Duration
}

// DefaultPolicy returns 5 attempts / 30 minutes.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Duration: DefaultDuration}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Duration <= 0 {
		p.Duration = DefaultDuration
	}
	return p
}

// Evaluate returns the state at now together with the counters the attempt should start from.
// An expired lock yields Unlocked with the counter reset and the lock cleared.
func (p Policy) Evaluate(failed int, lockedUntil *time.Time, now time.Time) (State, int, *time.Time) {
	if lockedUntil == nil {
		return Unlocked, failed, nil
	}
	if now.Before(*lockedUntil) {
		return Locked, failed, lockedUntil
	}
	return Unlocked, 0, nil
}

// Limits returns the attempt threshold and the expiry of a lock taken at now.
// Stores apply them atomically when they record a failure.
func (p Policy) Limits(now time.Time) (int, time.Time) {
	p = p.normalized()
	return p.MaxAttempts, now.Add(p.Duration)
}
