package landmark

// Face mesh landmark indices following the MediaPipe Face Landmarker
// convention (478-point mesh). Only the indices the evaluators address are
// named here.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip       = 1
	ForeheadTop   = 10
	UpperLip      = 13
	LowerLip      = 14
	Chin          = 152
	MouthCornerL  = 61
	MouthCornerR  = 291
	LeftEyeOuter  = 33
	LeftEyeInner  = 133
	RightEyeInner = 362
	RightEyeOuter = 263
	LeftFaceEdge  = 234
	RightFaceEdge = 454

	NumFaceLandmarks = 478
)

// Eyelid landmark pairs used for the eye-aspect ratio. Vertical openings are
// measured between every upper/lower combination per eye.
var (
	LeftEyeUpper  = [2]int{159, 145}
	LeftEyeLower  = [2]int{23, 130}
	RightEyeUpper = [2]int{386, 374}
	RightEyeLower = [2]int{253, 359}
)
