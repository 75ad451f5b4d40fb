package octree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Unbounded disables the depth limit.
const Unbounded = 0

// Tree is an octree of points carrying payloads of type T.
type Tree[T any] struct {
	root     *Region[T]
	capacity int
	maxDepth int
	policy   QueryPolicy
	onSplit  func(depth int)

	size   int
	splits int
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	maxDepth int
	policy   QueryPolicy
	onSplit  func(depth int)
}

// WithMaxDepth caps subdivision at depth n. Leaves at depth n keep accepting
// points beyond capacity. Zero or a negative value means Unbounded.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = Unbounded
		}
		o.maxDepth = n
	}
}

// WithQueryPolicy selects how Visible reports internal regions that are
// entirely inside the frustum.
func WithQueryPolicy(p QueryPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithSplitHook registers fn to be called with the depth of every region
// that splits.
func WithSplitHook(fn func(depth int)) Option {
	return func(o *options) { o.onSplit = fn }
}

// New creates an empty tree whose root covers the box centred at origin with
// the given half extent. capacity is the number of points a leaf stores
// before it splits.
func New[T any](origin, halfExtent r3.Vec, capacity int, opts ...Option) (*Tree[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	for _, v := range []float64{halfExtent.X, halfExtent.Y, halfExtent.Z} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: got %+v", ErrInvalidExtent, halfExtent)
		}
	}
	o := options{policy: Coarse}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[T]{
		root:     newRegion[T](origin, halfExtent, 0),
		capacity: capacity,
		maxDepth: o.maxDepth,
		policy:   o.policy,
		onSplit:  o.onSplit,
	}, nil
}

// Insert stores payload at position. Points outside the root box are
// rejected with ErrOutOfBounds, so every stored point lies in its leaf's box.
//
// A leaf with room appends the point. A full leaf splits into eight children
// first, then the point continues down to the child that contains it, which
// may split again.
func (t *Tree[T]) Insert(position r3.Vec, payload T) error {
	if !t.root.Contains(position) {
		return fmt.Errorf("%w: %+v not in box at %+v half extent %+v",
			ErrOutOfBounds, position, t.root.origin, t.root.halfExtent)
	}
	e := Entry[T]{Position: position, Payload: payload}
	r := t.root
	for {
		if r.children != nil {
			r = r.children[OctantIndex(position, r.origin)]
			continue
		}
		if len(r.points) < t.capacity || t.atDepthLimit(r) {
			r.points = append(r.points, e)
			t.size++
			return nil
		}
		r.split()
		t.splits++
		if t.onSplit != nil {
			t.onSplit(r.depth)
		}
	}
}

// InsertEntries inserts each entry in order. All positions are checked
// first; if any lies outside the root box nothing is inserted.
func (t *Tree[T]) InsertEntries(entries []Entry[T]) error {
	for i, e := range entries {
		if !t.root.Contains(e.Position) {
			return fmt.Errorf("entry %d: %w: %+v", i, ErrOutOfBounds, e.Position)
		}
	}
	for _, e := range entries {
		if err := t.Insert(e.Position, e.Payload); err != nil {
			return err
		}
	}
	return nil
}

// EnclosingHalfExtent returns the smallest half extent of a cube centred at
// origin that contains every finite entry position. It returns 0 when there
// are none.
func EnclosingHalfExtent[T any](origin r3.Vec, entries []Entry[T]) float64 {
	var h float64
	for _, e := range entries {
		d := r3.Sub(e.Position, origin)
		for _, v := range []float64{d.X, d.Y, d.Z} {
			if a := math.Abs(v); !math.IsInf(a, 0) && !math.IsNaN(a) && a > h {
				h = a
			}
		}
	}
	return h
}

func (t *Tree[T]) atDepthLimit(r *Region[T]) bool {
	return t.maxDepth != Unbounded && r.depth >= t.maxDepth
}

// Root returns the root region.
func (t *Tree[T]) Root() *Region[T] { return t.root }

// Len returns the number of points in the tree.
func (t *Tree[T]) Len() int { return t.size }

// Capacity returns the per-leaf capacity.
func (t *Tree[T]) Capacity() int { return t.capacity }

// MaxDepth returns the depth limit, or Unbounded.
func (t *Tree[T]) MaxDepth() int { return t.maxDepth }

// Policy returns the query policy used by Visible.
func (t *Tree[T]) Policy() QueryPolicy { return t.policy }

// Stats summarises the shape of a tree.
type Stats struct {
	Points   int
	Leaves   int
	Internal int
	Splits   int
	Depth    int // deepest region
	Overfull int // leaves holding more than capacity at the depth limit
}

// Stats walks the tree and reports its shape.
func (t *Tree[T]) Stats() Stats {
	s := Stats{Points: t.size, Splits: t.splits}
	t.root.Walk(func(r *Region[T]) bool {
		if r.depth > s.Depth {
			s.Depth = r.depth
		}
		if r.IsLeaf() {
			s.Leaves++
			if len(r.points) > t.capacity {
				s.Overfull++
			}
		} else {
			s.Internal++
		}
		return true
	})
	return s
}
