package poa

import "time"

// Clock supplies the evaluation instant. The engine never calls time.Now
// directly so expiry logic stays deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Expiry is the evaluated proof-window state for a head snapshot.
type Expiry struct {
	ValidUntil time.Time
	Expired    bool
}

// EvaluateExpiry computes validUntil = headTS + window and whether now has
// passed it. Clock skew between exporter and verifier is absorbed here and
// not separately detected.
func EvaluateExpiry(headTS time.Time, window time.Duration, now time.Time) Expiry {
	validUntil := headTS.Add(window)
	return Expiry{
		ValidUntil: validUntil,
		Expired:    now.After(validUntil),
	}
}
