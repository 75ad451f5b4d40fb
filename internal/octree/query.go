package octree

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/frustum"
)

// BoxClassifier classifies an axis-aligned box given by its centre and half
// extent. *frustum.Frustum implements it.
type BoxClassifier interface {
	ClassifyBox(origin, halfExtent r3.Vec) frustum.Containment
}

// QueryPolicy controls the granularity of Visible for internal regions that
// lie entirely inside the frustum.
type QueryPolicy int

const (
	// Coarse reports a fully visible internal region as a single unit.
	Coarse QueryPolicy = iota
	// Fine expands a fully visible internal region into its leaves.
	Fine
)

func (p QueryPolicy) String() string {
	switch p {
	case Coarse:
		return "coarse"
	case Fine:
		return "fine"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseQueryPolicy converts "coarse" or "fine" to a QueryPolicy.
func ParseQueryPolicy(s string) (QueryPolicy, error) {
	switch s {
	case "coarse", "":
		return Coarse, nil
	case "fine":
		return Fine, nil
	default:
		return Coarse, fmt.Errorf("unknown query policy %q", s)
	}
}

// Visible returns the regions whose contents may be visible to c, in
// pre-order with children in octant order. Regions classified Outside are
// skipped along with their subtrees. Insert keeps every point inside its
// leaf's box, so every stored point inside the view volume lies in one of the
// returned regions. Some returned regions may in fact be invisible because
// the box test is conservative.
func (t *Tree[T]) Visible(c BoxClassifier) []*Region[T] {
	var out []*Region[T]
	t.root.visible(c, t.policy, &out)
	return out
}

// VisiblePoints returns every point held by the regions Visible reports.
func (t *Tree[T]) VisiblePoints(c BoxClassifier) []Entry[T] {
	var out []Entry[T]
	for _, r := range t.Visible(c) {
		out = append(out, r.CollectPoints()...)
	}
	return out
}

func (r *Region[T]) visible(c BoxClassifier, policy QueryPolicy, out *[]*Region[T]) {
	switch c.ClassifyBox(r.origin, r.halfExtent) {
	case frustum.Outside:
		return
	case frustum.Inside:
		if policy == Fine && !r.IsLeaf() {
			*out = append(*out, r.Leaves()...)
			return
		}
		*out = append(*out, r)
	default:
		if r.IsLeaf() {
			*out = append(*out, r)
			return
		}
		for _, child := range r.children {
			child.visible(c, policy, out)
		}
	}
}
