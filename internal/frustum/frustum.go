package frustum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Containment is the result of classifying a box against the frustum.
type Containment int

const (
	Outside Containment = iota
	Inside
	Intersecting
)

func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case Intersecting:
		return "intersecting"
	default:
		return "outside"
	}
}

// Frustum holds the six planes of a view volume. It is a pure function of the
// last transform passed to Recompute and is safe for concurrent reads as long
// as nobody calls Recompute at the same time.
type Frustum struct {
	planes [planeCount]Plane
	eps    float64
}

// Option configures a Frustum.
type Option func(*Frustum)

// WithEpsilon overrides DefaultEpsilon for point/plane classification.
func WithEpsilon(eps float64) Option {
	return func(f *Frustum) {
		if eps >= 0 {
			f.eps = eps
		}
	}
}

// New builds a frustum from a combined projection×view(×model) transform.
func New(m mat.Matrix, opts ...Option) (*Frustum, error) {
	f := &Frustum{eps: DefaultEpsilon}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Recompute(m); err != nil {
		return nil, err
	}
	return f, nil
}

// Recompute replaces all six planes with those extracted from m. The matrix
// acts on column vectors (clip = m·p), so row K of m is the 4-vector
// (m[K,0], m[K,1], m[K,2], m[K,3]). On error the previous planes are kept.
func (f *Frustum) Recompute(m mat.Matrix) error {
	if r, c := m.Dims(); r != 4 || c != 4 {
		return fmt.Errorf("%w: got %dx%d", ErrBadDimensions, r, c)
	}

	var rows [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite element at (%d,%d)", ErrDegenerateTransform, i, j)
			}
			rows[i][j] = v
		}
	}

	combine := func(k int, sign float64) Plane {
		return Plane{
			Normal: r3.Vec{
				X: rows[3][0] + sign*rows[k][0],
				Y: rows[3][1] + sign*rows[k][1],
				Z: rows[3][2] + sign*rows[k][2],
			},
			D: rows[3][3] + sign*rows[k][3],
		}
	}

	raw := [planeCount]Plane{
		Right:  combine(0, -1),
		Left:   combine(0, 1),
		Bottom: combine(1, 1),
		Top:    combine(1, -1),
		Far:    combine(2, -1),
		Near:   combine(2, 1),
	}

	var planes [planeCount]Plane
	for i, p := range raw {
		n, err := p.normalize()
		if err != nil {
			return fmt.Errorf("%s plane: %w", PlaneID(i), err)
		}
		planes[i] = n
	}
	f.planes = planes
	return nil
}

// Plane returns the plane with the given id.
func (f *Frustum) Plane(id PlaneID) Plane {
	return f.planes[id]
}

// Planes returns a copy of all six planes, indexed by PlaneID.
func (f *Frustum) Planes() [planeCount]Plane {
	return f.planes
}

// Epsilon returns the classification tolerance in use.
func (f *Frustum) Epsilon() float64 {
	return f.eps
}

// ContainsPoint reports whether p is not behind any plane.
func (f *Frustum) ContainsPoint(p r3.Vec) bool {
	for _, pl := range f.planes {
		if ClassifyPoint(p, pl.Normal, pl.D, f.eps) == Back {
			return false
		}
	}
	return true
}

// ClassifyBox tests the box centred at origin with the given half extent.
//
// Every one of the eight corners is tested against every plane. A plane with
// no corner in front separates the box from the view volume (Outside). The
// box is Inside only when all corners are in front of all six planes.
func (f *Frustum) ClassifyBox(origin, halfExtent r3.Vec) Containment {
	corners := boxCorners(origin, halfExtent)

	allFront := true
	for _, pl := range f.planes {
		front := 0
		for _, c := range corners {
			if ClassifyPoint(c, pl.Normal, pl.D, f.eps) == Front {
				front++
			}
		}
		if front == 0 {
			return Outside
		}
		if front < len(corners) {
			allFront = false
		}
	}
	if allFront {
		return Inside
	}
	return Intersecting
}

// boxCorners returns the eight corners of the box, indexed with the same bit
// layout as octree octants: bit 2 = +x, bit 1 = +y, bit 0 = +z.
func boxCorners(origin, h r3.Vec) [8]r3.Vec {
	var out [8]r3.Vec
	for i := range out {
		c := origin
		if i&4 != 0 {
			c.X += h.X
		} else {
			c.X -= h.X
		}
		if i&2 != 0 {
			c.Y += h.Y
		} else {
			c.Y -= h.Y
		}
		if i&1 != 0 {
			c.Z += h.Z
		} else {
			c.Z -= h.Z
		}
		out[i] = c
	}
	return out
}
