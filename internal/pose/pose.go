// internal/pose/pose.go
//
// Reduces face landmarks from a camera frame to a steering direction.
//
// Two classifiers are provided:
//   - NoseOffset compares the nose tip with the frame centre and picks the
//     dominant axis when it is past a pixel dead zone.
//   - FaceRatio measures where the nose sits between the cheeks and between
//     forehead and chin, so it does not depend on where the face is in frame.
//
// Both report ok=false when no direction is confident. Image coordinates grow
// right and down, matching game.Direction.

package pose

import (
	"fmt"
	"math"

	"github.com/robalobadob/alphasnake/internal/game"
)

// Point is a landmark position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks is the subset of a face mesh the classifiers use.
type Landmarks struct {
	Nose        Point   `json:"nose"`
	LeftCheek   Point   `json:"leftCheek"`
	RightCheek  Point   `json:"rightCheek"`
	Forehead    Point   `json:"forehead"`
	Chin        Point   `json:"chin"`
	FrameWidth  float64 `json:"frameWidth"`
	FrameHeight float64 `json:"frameHeight"`
}

// Classifier turns one frame's landmarks into a direction.
type Classifier interface {
	Classify(l Landmarks) (game.Direction, bool)
}

// DefaultDeadZone is the nose offset, in pixels, below which no direction is reported.
const DefaultDeadZone = 30

// NoseOffset classifies by the nose tip's offset from the frame centre.
type NoseOffset struct {
	DeadZone float64
}

// Classify implements Classifier.
func (c NoseOffset) Classify(l Landmarks) (game.Direction, bool) {
	if l.FrameWidth <= 0 || l.FrameHeight <= 0 {
		return game.Direction{}, false
	}
	dz := c.DeadZone
	if dz <= 0 {
		dz = DefaultDeadZone
	}
	dx := l.Nose.X - l.FrameWidth/2
	dy := l.Nose.Y - l.FrameHeight/2
	return dominant(dx, dy, dz)
}

// DefaultRatioThreshold is the offset from a centred nose, as a fraction of
// face width or height, below which no direction is reported.
const DefaultRatioThreshold = 0.15

// FaceRatio classifies by the nose position relative to the face outline.
type FaceRatio struct {
	Threshold float64
}

// Classify implements Classifier.
func (c FaceRatio) Classify(l Landmarks) (game.Direction, bool) {
	w := l.RightCheek.X - l.LeftCheek.X
	h := l.Chin.Y - l.Forehead.Y
	if w <= 0 || h <= 0 {
		return game.Direction{}, false
	}
	th := c.Threshold
	if th <= 0 {
		th = DefaultRatioThreshold
	}
	rx := (l.Nose.X-l.LeftCheek.X)/w - 0.5
	ry := (l.Nose.Y-l.Forehead.Y)/h - 0.5
	return dominant(rx, ry, th)
}

// dominant picks the axis with the larger magnitude and reports a direction
// only when that magnitude exceeds limit.
func dominant(dx, dy, limit float64) (game.Direction, bool) {
	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > limit:
			return game.Right, true
		case dx < -limit:
			return game.Left, true
		}
		return game.Direction{}, false
	}
	switch {
	case dy > limit:
		return game.Down, true
	case dy < -limit:
		return game.Up, true
	}
	return game.Direction{}, false
}

// New returns the classifier registered under name ("nose" or "ratio").
func New(name string) (Classifier, error) {
	switch name {
	case "", "nose":
		return NoseOffset{DeadZone: DefaultDeadZone}, nil
	case "ratio":
		return FaceRatio{Threshold: DefaultRatioThreshold}, nil
	}
	return nil, fmt.Errorf("pose: unknown classifier %q", name)
}
