package frustum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the half-width of the band around a plane inside which a
// point is classified as On. It is expressed in the units of the transformed
// space and absorbs floating point noise at plane boundaries.
const DefaultEpsilon = 0.02

// MinNormalLength is the smallest plane normal magnitude accepted before
// normalisation. Anything shorter comes from a degenerate transform.
const MinNormalLength = 1e-9

// PlaneID names one of the six view-volume planes. The ordering matches the
// extraction order used by Recompute.
type PlaneID int

const (
	Right PlaneID = iota
	Left
	Bottom
	Top
	Far
	Near

	planeCount = 6
)

var planeNames = [planeCount]string{"right", "left", "bottom", "top", "far", "near"}

func (id PlaneID) String() string {
	if id < 0 || int(id) >= planeCount {
		return fmt.Sprintf("plane(%d)", int(id))
	}
	return planeNames[id]
}

// Side is the result of classifying a point against a single plane.
type Side int

const (
	On Side = iota
	Front
	Back
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "on"
	}
}

// Plane is the implicit plane Normal·p + D = 0. After extraction Normal has
// unit length and points toward the interior of the view volume.
type Plane struct {
	Normal r3.Vec
	D      float64
}

// Distance returns the signed distance from p to the plane. Positive values
// lie on the interior side.
func (pl Plane) Distance(p r3.Vec) float64 {
	return r3.Dot(p, pl.Normal) + pl.D
}

// normalize scales the plane so its normal has unit length.
func (pl Plane) normalize() (Plane, error) {
	n := r3.Norm(pl.Normal)
	if n < MinNormalLength || math.IsNaN(n) || math.IsInf(n, 0) {
		return Plane{}, ErrDegenerateTransform
	}
	inv := 1 / n
	return Plane{Normal: r3.Scale(inv, pl.Normal), D: pl.D * inv}, nil
}

// ClassifyPoint reports on which side of the plane (normal, offset) the point
// lies, using eps as the tolerance band around the plane.
func ClassifyPoint(p, normal r3.Vec, offset, eps float64) Side {
	dist := r3.Dot(p, normal) + offset
	switch {
	case dist > eps:
		return Front
	case dist < -eps:
		return Back
	default:
		return On
	}
}
