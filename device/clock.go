package device

import (
	"math/rand/v2"
	"time"
)

// SystemClock implements Clock using the wall clock, measuring milliseconds
// since the clock was created — a stand-in for an embedded millis() call
// that counts since boot.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock whose Millis() counts up from now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis implements Clock.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// MathRand implements RNG using math/rand/v2.
type MathRand struct{}

// Uint16n implements RNG.
func (MathRand) Uint16n(max uint16) uint16 {
	if max == 0 {
		return 0
	}
	return uint16(rand.UintN(uint(max)))
}
