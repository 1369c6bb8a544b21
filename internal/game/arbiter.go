// internal/game/arbiter.go
//
// Direction arbitration between two asynchronous input sources.
//
// Rules:
//   - Key presses are discrete and bypass debounce.
//   - A pose direction becomes a candidate only if it differs from the latched
//     pose direction and the debounce window has elapsed since the last
//     accepted pose direction. "No confident pose" is ignored.
//   - Any candidate is applied only if it is not the reverse of the current
//     heading.
//
// The arbiter has no grid knowledge; it only tracks the latched pose
// direction and when it was accepted.

package game

import "time"

// DefaultPoseDebounce is the minimum time between accepted pose changes.
const DefaultPoseDebounce = 400 * time.Millisecond

// Steerer is the side of the engine the arbiter drives.
type Steerer interface {
	Heading() Direction
	SetDirection(d Direction) error
}

// Arbiter merges key and pose signals into the engine's pending direction.
type Arbiter struct {
	target   Steerer
	debounce time.Duration

	latched  Direction // last accepted pose direction
	hasLatch bool
	latchAt  time.Time
}

// NewArbiter returns an arbiter steering target. A non-positive debounce
// selects DefaultPoseDebounce.
func NewArbiter(target Steerer, debounce time.Duration) *Arbiter {
	if debounce <= 0 {
		debounce = DefaultPoseDebounce
	}
	return &Arbiter{target: target, debounce: debounce}
}

// Key applies a key-press direction. It reports whether the engine's pending
// direction was updated.
func (a *Arbiter) Key(d Direction) (bool, error) {
	if err := CheckDirection(d); err != nil {
		return false, err
	}
	return a.apply(d)
}

// Pose offers a classifier output observed at time at. ok=false means no
// confident pose for this frame. It reports whether the engine's pending
// direction was updated.
func (a *Arbiter) Pose(d Direction, ok bool, at time.Time) (bool, error) {
	if !ok {
		return false, nil
	}
	if err := CheckDirection(d); err != nil {
		return false, err
	}
	if a.hasLatch {
		if d == a.latched || at.Sub(a.latchAt) < a.debounce {
			return false, nil
		}
	}
	a.latched, a.hasLatch, a.latchAt = d, true, at
	return a.apply(d)
}

// Latched returns the last accepted pose direction, if any.
func (a *Arbiter) Latched() (Direction, bool) {
	return a.latched, a.hasLatch
}

// Reset forgets the latched pose so the next confident pose is accepted.
func (a *Arbiter) Reset() {
	a.latched, a.hasLatch, a.latchAt = Direction{}, false, time.Time{}
}

func (a *Arbiter) apply(d Direction) (bool, error) {
	if d == a.target.Heading().Opposite() {
		return false, nil
	}
	if err := a.target.SetDirection(d); err != nil {
		return false, err
	}
	return true, nil
}
