// Package landmark defines the normalized face and hand landmark types that
// the metric evaluators and habit state machines consume.
package landmark

import (
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// HandCheckPoints are the hand landmarks tested against the face when looking
// for contact: wrist plus all five fingertips.
var HandCheckPoints = [6]int{Wrist, ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D represents a 3D point in normalized image space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumHandLandmarks]Point3D `json:"points"`
	Handedness string                    `json:"handedness"` // "Left" or "Right"
	Score      float64                   `json:"score"`
}

// FaceLandmarks represents the dense face mesh detected by MediaPipe.
type FaceLandmarks struct {
	Points [NumFaceLandmarks]Point3D `json:"points"`
}

// Snapshot is one tick of landmark data. Face is nil when no face was
// detected and Hands is empty when no hands were. A snapshot is immutable
// once produced and is only valid for the duration of the evaluation call
// it is passed to.
type Snapshot struct {
	Face      *FaceLandmarks  `json:"face,omitempty"`
	Hands     []HandLandmarks `json:"hands,omitempty"`
	Timestamp time.Time       `json:"-"`
}

// HasFace reports whether the snapshot carries a face mesh.
func (s *Snapshot) HasFace() bool {
	return s != nil && s.Face != nil
}

// HasHands reports whether the snapshot carries at least one hand.
func (s *Snapshot) HasHands() bool {
	return s != nil && len(s.Hands) > 0
}

// Distance2D calculates the Euclidean distance between two points in the
// image plane, ignoring depth. Landmark coordinates are normalized to the
// frame, so distances are unitless.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
