package landmark

import "time"

// Preset snapshot builders used by tests and replay tooling. Coordinates are
// normalized image space with the face centered around (0.5, 0.5); only the
// indices the evaluators address are positioned, the rest of the mesh stays
// at the origin.

// NeutralFace returns a face mesh with open eyes, a closed mouth and an
// upright head at a normal distance from the camera.
func NeutralFace() *FaceLandmarks {
	f := &FaceLandmarks{}

	f.Points[NoseTip] = Point3D{X: 0.5, Y: 0.5}
	f.Points[ForeheadTop] = Point3D{X: 0.5, Y: 0.38}
	f.Points[Chin] = Point3D{X: 0.5, Y: 0.66}

	// Closed mouth: 0.004 opening over a 0.12 corner span.
	f.Points[UpperLip] = Point3D{X: 0.5, Y: 0.565}
	f.Points[LowerLip] = Point3D{X: 0.5, Y: 0.569}
	f.Points[MouthCornerL] = Point3D{X: 0.44, Y: 0.57}
	f.Points[MouthCornerR] = Point3D{X: 0.56, Y: 0.57}

	// Open eyes: 0.02 mean eyelid gap over a 0.06 eye width.
	f.Points[LeftEyeOuter] = Point3D{X: 0.41, Y: 0.46}
	f.Points[LeftEyeInner] = Point3D{X: 0.47, Y: 0.46}
	f.Points[LeftEyeUpper[0]] = Point3D{X: 0.44, Y: 0.450}
	f.Points[LeftEyeUpper[1]] = Point3D{X: 0.445, Y: 0.451}
	f.Points[LeftEyeLower[0]] = Point3D{X: 0.44, Y: 0.470}
	f.Points[LeftEyeLower[1]] = Point3D{X: 0.445, Y: 0.471}

	f.Points[RightEyeOuter] = Point3D{X: 0.59, Y: 0.46}
	f.Points[RightEyeInner] = Point3D{X: 0.53, Y: 0.46}
	f.Points[RightEyeUpper[0]] = Point3D{X: 0.56, Y: 0.450}
	f.Points[RightEyeUpper[1]] = Point3D{X: 0.555, Y: 0.451}
	f.Points[RightEyeLower[0]] = Point3D{X: 0.56, Y: 0.470}
	f.Points[RightEyeLower[1]] = Point3D{X: 0.555, Y: 0.471}

	// Face edges give a 0.24 width, comfortably back from the screen.
	f.Points[LeftFaceEdge] = Point3D{X: 0.38, Y: 0.5}
	f.Points[RightFaceEdge] = Point3D{X: 0.62, Y: 0.5}

	return f
}

// OpenMouthFace returns a face with the jaw dropped as in mouth breathing.
func OpenMouthFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[LowerLip].Y = 0.585 // 0.02 opening, MAR ~0.167
	return f
}

// YawnFace returns a face with the mouth wide open.
func YawnFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[LowerLip].Y = 0.645 // 0.08 opening, MAR ~0.667
	return f
}

// ClosedEyesFace returns a face with both eyes shut.
func ClosedEyesFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[LeftEyeUpper[0]].Y = 0.468
	f.Points[LeftEyeUpper[1]].Y = 0.469
	f.Points[RightEyeUpper[0]].Y = 0.468
	f.Points[RightEyeUpper[1]].Y = 0.469
	return f
}

// HeadDownFace returns a face pitched down toward the desk.
func HeadDownFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[NoseTip].Y = 0.55 // nose 0.17 below the forehead
	return f
}

// LeanInFace returns a face too close to the screen.
func LeanInFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[LeftFaceEdge].X = 0.30
	f.Points[RightFaceEdge].X = 0.70
	return f
}

// TiltedFace returns a face with the head cocked about twenty degrees.
func TiltedFace() *FaceLandmarks {
	f := NeutralFace()
	f.Points[RightEyeOuter].Y = 0.394
	return f
}

// RestingHand returns a hand well below the face.
func RestingHand() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i := 0; i < NumHandLandmarks; i++ {
		h.Points[i] = Point3D{X: 0.5, Y: 0.95}
	}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.98}
	return h
}

// HandAtEye returns a hand with the index fingertip on the left eye corner.
func HandAtEye() HandLandmarks {
	h := RestingHand()
	h.Points[IndexTip] = Point3D{X: 0.415, Y: 0.462}
	return h
}

// HandOnFace returns a hand with the index fingertip on the cheek, inside
// the face oval but away from the eyes.
func HandOnFace() HandLandmarks {
	h := RestingHand()
	h.Points[IndexTip] = Point3D{X: 0.52, Y: 0.52}
	return h
}

// Snap assembles a snapshot from a face, hands and a timestamp.
func Snap(ts time.Time, face *FaceLandmarks, hands ...HandLandmarks) *Snapshot {
	return &Snapshot{Face: face, Hands: hands, Timestamp: ts}
}
