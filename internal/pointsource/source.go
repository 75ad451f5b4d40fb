// Package pointsource generates synthetic point clouds to feed the octree,
// standing in for a live sensor or a recorded capture.
package pointsource

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/octree"
)

// Source produces an unbounded stream of positioned samples.
type Source interface {
	Next() (r3.Vec, float64)
}

// Take draws n entries from src.
func Take(src Source, n int) []octree.Entry[float64] {
	out := make([]octree.Entry[float64], 0, n)
	for i := 0; i < n; i++ {
		p, v := src.Next()
		out = append(out, octree.Entry[float64]{Position: p, Payload: v})
	}
	return out
}

// Uniform samples positions uniformly in the cube [-Spread, Spread]^3
// around Centre, with a payload uniform in [0, 1).
type Uniform struct {
	Centre r3.Vec
	Spread float64

	rng *rand.Rand
}

// NewUniform returns a seeded uniform source.
func NewUniform(centre r3.Vec, spread float64, seed int64) *Uniform {
	return &Uniform{Centre: centre, Spread: spread, rng: rand.New(rand.NewSource(seed))}
}

func (u *Uniform) rangeSample() float64 {
	return (u.rng.Float64()*2 - 1) * u.Spread
}

// Next returns the next sample.
func (u *Uniform) Next() (r3.Vec, float64) {
	p := r3.Vec{X: u.rangeSample(), Y: u.rangeSample(), Z: u.rangeSample()}
	return r3.Add(u.Centre, p), u.rng.Float64()
}

// Disc samples a flat ground disc in the X/Z plane with a fraction of raised
// points above it, the shape of a LiDAR sweep over open ground. The payload
// is a return intensity in [0, 1] that falls off with range.
type Disc struct {
	Radius         float64
	GroundJitter   float64 // half height of the ground band
	RaisedFraction float64 // share of points lifted above the ground
	RaisedHeight   float64

	rng *rand.Rand
}

// NewDisc returns a seeded disc source with 10% raised points up to 2 units
// high.
func NewDisc(radius float64, seed int64) *Disc {
	return &Disc{
		Radius:         radius,
		GroundJitter:   0.1,
		RaisedFraction: 0.1,
		RaisedHeight:   2,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next sample.
func (d *Disc) Next() (r3.Vec, float64) {
	angle := d.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(d.rng.Float64()) * d.Radius

	var y float64
	if d.rng.Float64() < d.RaisedFraction {
		y = d.rng.Float64() * d.RaisedHeight
	} else {
		y = (d.rng.Float64()*2 - 1) * d.GroundJitter
	}

	intensity := 1.0
	if d.Radius > 0 {
		intensity = math.Max(0.25, 1-r/d.Radius*0.75)
	}
	return r3.Vec{X: r * math.Cos(angle), Y: y, Z: r * math.Sin(angle)}, intensity
}
