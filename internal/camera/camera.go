// Package camera builds the projection and view transforms that feed the
// frustum each frame, and keeps the orbiting camera state the point-cloud
// viewer steps through.
package camera

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidProjection is returned for projection parameters that do not
// describe a finite, non-empty view volume.
var ErrInvalidProjection = errors.New("camera: invalid projection parameters")

// Perspective returns an OpenGL-style perspective projection. Clip-space z
// spans [-w, w] between the near and far planes. fovYDeg is the full
// vertical field of view in degrees.
func Perspective(fovYDeg, aspect, near, far float64) (*mat.Dense, error) {
	if fovYDeg <= 0 || fovYDeg >= 180 || aspect <= 0 || near <= 0 || far <= near {
		return nil, fmt.Errorf("%w: fov=%.3f aspect=%.3f near=%.3f far=%.3f",
			ErrInvalidProjection, fovYDeg, aspect, near, far)
	}
	f := 1 / math.Tan(fovYDeg*math.Pi/360)
	return mat.NewDense(4, 4, []float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	}), nil
}

// LookAt returns a right-handed view matrix placing the camera at eye,
// looking toward target with the given up direction.
func LookAt(eye, target, up r3.Vec) *mat.Dense {
	fwd := r3.Unit(r3.Sub(target, eye))
	side := r3.Unit(r3.Cross(fwd, up))
	u := r3.Cross(side, fwd)
	return mat.NewDense(4, 4, []float64{
		side.X, side.Y, side.Z, -r3.Dot(side, eye),
		u.X, u.Y, u.Z, -r3.Dot(u, eye),
		-fwd.X, -fwd.Y, -fwd.Z, r3.Dot(fwd, eye),
		0, 0, 0, 1,
	})
}

// Translate returns the homogeneous translation by v.
func Translate(v r3.Vec) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	})
}

// Camera is a perspective camera described by its pose and lens.
type Camera struct {
	Eye    r3.Vec
	Target r3.Vec
	Up     r3.Vec

	FovYDeg float64 // full vertical field of view
	Aspect  float64 // width / height
	Near    float64
	Far     float64
}

// NewOrbit places a camera at distance from target along +Z, looking at
// target with +Y up.
func NewOrbit(target r3.Vec, distance, fovYDeg, aspect, near, far float64) *Camera {
	return &Camera{
		Eye:     r3.Add(target, r3.Vec{Z: distance}),
		Target:  target,
		Up:      r3.Vec{Y: 1},
		FovYDeg: fovYDeg,
		Aspect:  aspect,
		Near:    near,
		Far:     far,
	}
}

// Projection returns the camera's projection matrix.
func (c *Camera) Projection() (*mat.Dense, error) {
	return Perspective(c.FovYDeg, c.Aspect, c.Near, c.Far)
}

// View returns the camera's view matrix.
func (c *Camera) View() *mat.Dense {
	return LookAt(c.Eye, c.Target, c.Up)
}

// ViewProjection returns projection·view, the transform handed to the
// frustum.
func (c *Camera) ViewProjection() (*mat.Dense, error) {
	proj, err := c.Projection()
	if err != nil {
		return nil, err
	}
	var vp mat.Dense
	vp.Mul(proj, c.View())
	return &vp, nil
}

// OrbitY rotates the eye about the vertical axis through the target.
func (c *Camera) OrbitY(deg float64) {
	rot := r3.NewRotation(deg*math.Pi/180, r3.Vec{Y: 1})
	c.Eye = r3.Add(c.Target, rot.Rotate(r3.Sub(c.Eye, c.Target)))
}
