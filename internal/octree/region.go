package octree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Entry is a stored point and its payload.
type Entry[T any] struct {
	Position r3.Vec
	Payload  T
}

// Region is one axis-aligned cuboid of the tree. children is nil for a leaf
// and points to all eight octants for an internal region, so a partially
// populated child set cannot be represented.
type Region[T any] struct {
	origin     r3.Vec
	halfExtent r3.Vec
	depth      int

	children *[8]*Region[T]
	points   []Entry[T]
}

func newRegion[T any](origin, halfExtent r3.Vec, depth int) *Region[T] {
	return &Region[T]{origin: origin, halfExtent: halfExtent, depth: depth}
}

// OctantIndex returns the octant of a region centred at origin that contains
// p: bit 2 is set for p.X >= origin.X, bit 1 for Y and bit 0 for Z.
func OctantIndex(p, origin r3.Vec) int {
	idx := 0
	if p.X >= origin.X {
		idx |= 4
	}
	if p.Y >= origin.Y {
		idx |= 2
	}
	if p.Z >= origin.Z {
		idx |= 1
	}
	return idx
}

// childOrigin is the centre of octant i, using the same bit layout as
// OctantIndex.
func childOrigin(origin, halfExtent r3.Vec, i int) r3.Vec {
	sign := func(bit int) float64 {
		if i&bit != 0 {
			return 0.5
		}
		return -0.5
	}
	return r3.Vec{
		X: origin.X + halfExtent.X*sign(4),
		Y: origin.Y + halfExtent.Y*sign(2),
		Z: origin.Z + halfExtent.Z*sign(1),
	}
}

// split turns a leaf into an internal region and pushes its points down.
// A child receives at most as many points as the parent held, so no child
// overflows during redistribution.
func (r *Region[T]) split() {
	half := r3.Scale(0.5, r.halfExtent)
	var kids [8]*Region[T]
	for i := range kids {
		kids[i] = newRegion[T](childOrigin(r.origin, r.halfExtent, i), half, r.depth+1)
	}
	for _, e := range r.points {
		child := kids[OctantIndex(e.Position, r.origin)]
		child.points = append(child.points, e)
	}
	r.points = nil
	r.children = &kids
}

// Origin returns the centre of the region.
func (r *Region[T]) Origin() r3.Vec { return r.origin }

// HalfExtent returns the per-axis half width of the region.
func (r *Region[T]) HalfExtent() r3.Vec { return r.halfExtent }

// Depth returns the distance from the root, which has depth 0.
func (r *Region[T]) Depth() int { return r.depth }

// IsLeaf reports whether the region has no children.
func (r *Region[T]) IsLeaf() bool { return r.children == nil }

// Bounds returns the region as a min/max box.
func (r *Region[T]) Bounds() r3.Box {
	return r3.Box{
		Min: r3.Sub(r.origin, r.halfExtent),
		Max: r3.Add(r.origin, r.halfExtent),
	}
}

// Contains reports whether p lies in the region's closed box. Non-finite
// coordinates are never contained.
func (r *Region[T]) Contains(p r3.Vec) bool {
	d := r3.Sub(p, r.origin)
	return math.Abs(d.X) <= r.halfExtent.X &&
		math.Abs(d.Y) <= r.halfExtent.Y &&
		math.Abs(d.Z) <= r.halfExtent.Z
}

// Child returns octant i of an internal region.
func (r *Region[T]) Child(i int) (*Region[T], error) {
	if r.children == nil {
		return nil, ErrNotInternal
	}
	if i < 0 || i >= len(r.children) {
		return nil, fmt.Errorf("%w: %d", ErrChildIndex, i)
	}
	return r.children[i], nil
}

// Points returns a copy of the points stored directly in this region. It is
// empty for internal regions.
func (r *Region[T]) Points() []Entry[T] {
	if len(r.points) == 0 {
		return nil
	}
	out := make([]Entry[T], len(r.points))
	copy(out, r.points)
	return out
}

// Len returns the number of points stored directly in this region.
func (r *Region[T]) Len() int { return len(r.points) }

// Walk visits r and its descendants in pre-order, children in octant order.
// Returning false from fn skips the children of that region.
func (r *Region[T]) Walk(fn func(*Region[T]) bool) {
	if !fn(r) || r.children == nil {
		return
	}
	for _, c := range r.children {
		c.Walk(fn)
	}
}

// CollectPoints returns every point stored in r's subtree, in pre-order.
// This is what a renderer draws for a region reported as visible.
func (r *Region[T]) CollectPoints() []Entry[T] {
	var out []Entry[T]
	r.Walk(func(n *Region[T]) bool {
		out = append(out, n.points...)
		return true
	})
	return out
}

// Leaves returns the leaf regions of r's subtree in pre-order.
func (r *Region[T]) Leaves() []*Region[T] {
	var out []*Region[T]
	r.Walk(func(n *Region[T]) bool {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}
