package pointsource

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestUniform_WithinCube(t *testing.T) {
	centre := r3.Vec{X: 10, Y: -5, Z: 2}
	src := NewUniform(centre, 3, 1)
	for i, e := range Take(src, 1000) {
		d := r3.Sub(e.Position, centre)
		if math.Abs(d.X) > 3 || math.Abs(d.Y) > 3 || math.Abs(d.Z) > 3 {
			t.Fatalf("sample %d at %+v outside cube", i, e.Position)
		}
		if e.Payload < 0 || e.Payload >= 1 {
			t.Fatalf("sample %d payload %f outside [0,1)", i, e.Payload)
		}
	}
}

func TestUniform_SeedIsDeterministic(t *testing.T) {
	a := Take(NewUniform(r3.Vec{}, 1, 99), 50)
	b := Take(NewUniform(r3.Vec{}, 1, 99), 50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDisc_Shape(t *testing.T) {
	src := NewDisc(20, 4)
	raised := 0
	const n = 5000
	for i, e := range Take(src, n) {
		p := e.Position
		if r := math.Hypot(p.X, p.Z); r > 20+1e-9 {
			t.Fatalf("sample %d radius %f beyond disc", i, r)
		}
		if p.Y < -src.GroundJitter || p.Y > src.RaisedHeight {
			t.Fatalf("sample %d height %f out of range", i, p.Y)
		}
		if p.Y > src.GroundJitter {
			raised++
		}
		if e.Payload < 0.25 || e.Payload > 1 {
			t.Fatalf("sample %d intensity %f out of range", i, e.Payload)
		}
	}
	// Roughly RaisedFraction of points sit above the ground band.
	if frac := float64(raised) / n; frac < 0.05 || frac > 0.15 {
		t.Errorf("raised fraction = %f, want about 0.1", frac)
	}
}

func TestTake_Zero(t *testing.T) {
	if got := Take(NewUniform(r3.Vec{}, 1, 1), 0); len(got) != 0 {
		t.Errorf("Take(0) returned %d entries", len(got))
	}
}
