// Package metric implements the pure geometric evaluators that turn one
// landmark snapshot into the scalar measurements the habit state machines
// consume. Evaluators hold no state and no thresholds; the second return is
// false when the snapshot lacks the landmarks a measurement needs.
package metric

import (
	"math"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// minSpan guards ratio denominators against degenerate face geometry.
const minSpan = 0.001

// MouthAspectRatio measures how far the mouth is open: vertical lip distance
// over horizontal corner distance. A closed mouth sits near zero.
func MouthAspectRatio(s *landmark.Snapshot) (float64, bool) {
	if !s.HasFace() {
		return 0, false
	}
	p := &s.Face.Points
	vertical := math.Abs(p[landmark.UpperLip].Y - p[landmark.LowerLip].Y)
	horizontal := math.Abs(p[landmark.MouthCornerR].X - p[landmark.MouthCornerL].X)
	if horizontal < minSpan {
		return 0, false
	}
	return vertical / horizontal, true
}

// EyeAspectRatio measures eye openness: the mean vertical eyelid opening over
// the horizontal eye width, averaged across both eyes. Closed eyes drop the
// ratio sharply, which is what the blink machine keys on.
func EyeAspectRatio(s *landmark.Snapshot) (float64, bool) {
	if !s.HasFace() {
		return 0, false
	}
	p := &s.Face.Points
	left, ok := eyeRatio(p, landmark.LeftEyeUpper, landmark.LeftEyeLower,
		landmark.LeftEyeOuter, landmark.LeftEyeInner)
	if !ok {
		return 0, false
	}
	right, ok := eyeRatio(p, landmark.RightEyeUpper, landmark.RightEyeLower,
		landmark.RightEyeOuter, landmark.RightEyeInner)
	if !ok {
		return 0, false
	}
	return (left + right) / 2, true
}

func eyeRatio(p *[landmark.NumFaceLandmarks]landmark.Point3D, upper, lower [2]int, outer, inner int) (float64, bool) {
	width := landmark.Distance2D(p[outer], p[inner])
	if width < minSpan {
		return 0, false
	}
	var sum float64
	for _, u := range upper {
		for _, l := range lower {
			sum += math.Abs(p[u].Y - p[l].Y)
		}
	}
	mean := sum / float64(len(upper)*len(lower))
	return mean / width, true
}

// HandEyeDistance measures the closest approach between any hand check point
// and either eye corner. Small values mean a hand is at the eyes.
func HandEyeDistance(s *landmark.Snapshot) (float64, bool) {
	if !s.HasFace() || !s.HasHands() {
		return 0, false
	}
	p := &s.Face.Points
	eyes := [2]landmark.Point3D{p[landmark.LeftEyeOuter], p[landmark.RightEyeOuter]}
	closest := math.MaxFloat64
	for h := range s.Hands {
		for _, idx := range landmark.HandCheckPoints {
			pt := s.Hands[h].Points[idx]
			for _, eye := range eyes {
				if d := landmark.Distance2D(pt, eye); d < closest {
					closest = d
				}
			}
		}
	}
	return closest, true
}

// FaceOvalDistance measures how deep the closest hand check point sits inside
// the face oval centered on the nose tip: (dx/rx)^2 + (dy/ry)^2. Values
// strictly below 1.0 are inside the oval.
func FaceOvalDistance(s *landmark.Snapshot, rx, ry float64) (float64, bool) {
	if !s.HasFace() || !s.HasHands() {
		return 0, false
	}
	nose := s.Face.Points[landmark.NoseTip]
	closest := math.MaxFloat64
	for h := range s.Hands {
		for _, idx := range landmark.HandCheckPoints {
			pt := s.Hands[h].Points[idx]
			dx := (pt.X - nose.X) / rx
			dy := (pt.Y - nose.Y) / ry
			if d := dx*dx + dy*dy; d < closest {
				closest = d
			}
		}
	}
	return closest, true
}

// HeadDownOffset measures how far the head is pitched down: the nose tip
// drops below the forehead as the face tilts toward the desk, growing the
// nose-minus-forehead vertical offset.
func HeadDownOffset(s *landmark.Snapshot) (float64, bool) {
	if !s.HasFace() {
		return 0, false
	}
	p := &s.Face.Points
	return p[landmark.NoseTip].Y - p[landmark.ForeheadTop].Y, true
}

// PostureExcess measures posture as the worse of two normalized ratios:
// face width over the allowed width (leaning in) and head tilt over the
// allowed tilt (head cocked sideways). Values strictly above 1.0 mean at
// least one limit is exceeded.
func PostureExcess(s *landmark.Snapshot, maxWidth, maxTiltDeg float64) (float64, bool) {
	if !s.HasFace() {
		return 0, false
	}
	p := &s.Face.Points
	width := math.Abs(p[landmark.RightFaceEdge].X - p[landmark.LeftFaceEdge].X)

	dx := p[landmark.RightEyeOuter].X - p[landmark.LeftEyeOuter].X
	dy := p[landmark.RightEyeOuter].Y - p[landmark.LeftEyeOuter].Y
	tilt := math.Abs(math.Atan2(dy, dx) * 180 / math.Pi)

	return math.Max(width/maxWidth, tilt/maxTiltDeg), true
}
