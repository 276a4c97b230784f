package landmark

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestDistance2D(t *testing.T) {
	t.Run("ignores depth", func(t *testing.T) {
		a := Point3D{X: 0, Y: 0, Z: 5}
		b := Point3D{X: 3, Y: 4, Z: -5}

		if d := Distance2D(a, b); math.Abs(d-5.0) > epsilon {
			t.Errorf("expected distance 5.0, got %f", d)
		}
	})

	t.Run("zero for identical points", func(t *testing.T) {
		p := Point3D{X: 0.5, Y: 0.5, Z: 0.1}

		if d := Distance2D(p, p); d > epsilon {
			t.Errorf("expected distance 0, got %f", d)
		}
	})
}

func TestSnapshotPresence(t *testing.T) {
	now := time.Now()

	t.Run("nil snapshot has nothing", func(t *testing.T) {
		var s *Snapshot
		if s.HasFace() {
			t.Error("nil snapshot should not report a face")
		}
		if s.HasHands() {
			t.Error("nil snapshot should not report hands")
		}
	})

	t.Run("face only", func(t *testing.T) {
		s := Snap(now, NeutralFace())
		if !s.HasFace() {
			t.Error("expected a face")
		}
		if s.HasHands() {
			t.Error("expected no hands")
		}
	})

	t.Run("face and hands", func(t *testing.T) {
		s := Snap(now, NeutralFace(), RestingHand())
		if !s.HasFace() || !s.HasHands() {
			t.Error("expected face and hands")
		}
		if s.Timestamp != now {
			t.Errorf("expected timestamp %v, got %v", now, s.Timestamp)
		}
	})
}

func TestFixtureGeometry(t *testing.T) {
	t.Run("neutral face has closed mouth and open eyes", func(t *testing.T) {
		f := NeutralFace()

		mouthGap := f.Points[LowerLip].Y - f.Points[UpperLip].Y
		if mouthGap > 0.01 {
			t.Errorf("neutral mouth gap too wide: %f", mouthGap)
		}

		lidGap := f.Points[LeftEyeLower[0]].Y - f.Points[LeftEyeUpper[0]].Y
		if lidGap < 0.01 {
			t.Errorf("neutral eyes appear closed, lid gap %f", lidGap)
		}
	})

	t.Run("yawn opens wider than mouth breathing", func(t *testing.T) {
		open := OpenMouthFace().Points[LowerLip].Y
		yawn := YawnFace().Points[LowerLip].Y
		if yawn <= open {
			t.Errorf("yawn lip %f should sit below open-mouth lip %f", yawn, open)
		}
	})

	t.Run("closed eyes collapse the lid gap", func(t *testing.T) {
		f := ClosedEyesFace()
		lidGap := f.Points[LeftEyeLower[0]].Y - f.Points[LeftEyeUpper[0]].Y
		if lidGap > 0.005 {
			t.Errorf("closed-eye lid gap too wide: %f", lidGap)
		}
	})

	t.Run("hand at eye touches the eye corner", func(t *testing.T) {
		h := HandAtEye()
		f := NeutralFace()
		d := Distance2D(h.Points[IndexTip], f.Points[LeftEyeOuter])
		if d > 0.01 {
			t.Errorf("index tip should be at the eye corner, distance %f", d)
		}
	})

	t.Run("resting hand stays clear of the face", func(t *testing.T) {
		h := RestingHand()
		f := NeutralFace()
		for _, idx := range HandCheckPoints {
			if d := Distance2D(h.Points[idx], f.Points[NoseTip]); d < 0.3 {
				t.Errorf("check point %d too close to the face: %f", idx, d)
			}
		}
	})
}
