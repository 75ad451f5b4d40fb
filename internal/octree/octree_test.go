package octree

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var unit = r3.Vec{X: 1, Y: 1, Z: 1}

func newTestTree(t *testing.T, capacity int, opts ...Option) *Tree[int] {
	t.Helper()
	tree, err := New[int](r3.Vec{}, unit, capacity, opts...)
	require.NoError(t, err)
	return tree
}

func randomPoint(rng *rand.Rand, spread float64) r3.Vec {
	return r3.Vec{
		X: (rng.Float64()*2 - 1) * spread,
		Y: (rng.Float64()*2 - 1) * spread,
		Z: (rng.Float64()*2 - 1) * spread,
	}
}

func sortEntries() cmp.Option {
	return cmpopts.SortSlices(func(a, b Entry[int]) bool { return a.Payload < b.Payload })
}

func TestNew_Validation(t *testing.T) {
	_, err := New[int](r3.Vec{}, unit, 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New[int](r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 1}, 4)
	assert.ErrorIs(t, err, ErrInvalidExtent)

	_, err = New[int](r3.Vec{}, r3.Vec{X: 1, Y: -1, Z: 1}, 4)
	assert.ErrorIs(t, err, ErrInvalidExtent)
}

func TestOctantIndex(t *testing.T) {
	cases := []struct {
		p    r3.Vec
		want int
	}{
		{r3.Vec{X: -1, Y: -1, Z: -1}, 0},
		{r3.Vec{X: -1, Y: -1, Z: 1}, 1},
		{r3.Vec{X: -1, Y: 1, Z: -1}, 2},
		{r3.Vec{X: -1, Y: 1, Z: 1}, 3},
		{r3.Vec{X: 1, Y: -1, Z: -1}, 4},
		{r3.Vec{X: 1, Y: -1, Z: 1}, 5},
		{r3.Vec{X: 1, Y: 1, Z: -1}, 6},
		{r3.Vec{X: 1, Y: 1, Z: 1}, 7},
		{r3.Vec{}, 7}, // ties route to the positive side
	}
	for _, tc := range cases {
		if got := OctantIndex(tc.p, r3.Vec{}); got != tc.want {
			t.Errorf("OctantIndex(%+v) = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestChildOriginMatchesOctantIndex(t *testing.T) {
	origin := r3.Vec{X: 3, Y: -2, Z: 7}
	half := r3.Vec{X: 2, Y: 4, Z: 1}
	for i := 0; i < 8; i++ {
		c := childOrigin(origin, half, i)
		if got := OctantIndex(c, origin); got != i {
			t.Errorf("child %d origin %+v routes to octant %d", i, c, got)
		}
	}
}

func TestInsert_SameLeafInIdenticalTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var pts []r3.Vec
	for i := 0; i < 200; i++ {
		pts = append(pts, randomPoint(rng, 1))
	}
	a := newTestTree(t, 2)
	b := newTestTree(t, 2)
	for i, p := range pts {
		require.NoError(t, a.Insert(p, i))
		require.NoError(t, b.Insert(p, i))
	}

	la, lb := a.Root().Leaves(), b.Root().Leaves()
	require.Len(t, lb, len(la))
	for i := range la {
		if diff := cmp.Diff(la[i].Points(), lb[i].Points()); diff != "" {
			t.Errorf("leaf %d differs (-a +b):\n%s", i, diff)
		}
	}
}

func TestInsert_EndToEndScenario(t *testing.T) {
	tree := newTestTree(t, 1)
	a := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	b := r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}
	c := r3.Vec{X: 0.5, Y: -0.5, Z: 0.5}

	require.NoError(t, tree.Insert(a, 1))
	root := tree.Root()
	require.True(t, root.IsLeaf())
	assert.Equal(t, []Entry[int]{{Position: a, Payload: 1}}, root.Points())

	require.NoError(t, tree.Insert(b, 2))
	require.False(t, root.IsLeaf(), "second insert should split the root")
	assert.Empty(t, root.Points())

	child7, err := root.Child(7)
	require.NoError(t, err)
	assert.Equal(t, []Entry[int]{{Position: a, Payload: 1}}, child7.Points())
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, child7.Origin())
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, child7.HalfExtent())

	child0, err := root.Child(0)
	require.NoError(t, err)
	assert.Equal(t, []Entry[int]{{Position: b, Payload: 2}}, child0.Points())
	assert.Equal(t, r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, child0.Origin())

	require.NoError(t, tree.Insert(c, 3))
	child5, err := root.Child(5)
	require.NoError(t, err)
	assert.True(t, child5.IsLeaf(), "third insert lands in an empty child and must not split it")
	assert.Equal(t, []Entry[int]{{Position: c, Payload: 3}}, child5.Points())

	stats := tree.Stats()
	assert.Equal(t, Stats{Points: 3, Leaves: 8, Internal: 1, Splits: 1, Depth: 1}, stats)
}

func TestInsert_CapacityInvariant(t *testing.T) {
	const capacity = 8
	rng := rand.New(rand.NewSource(42))
	tree := newTestTree(t, capacity)
	for i := 0; i < 2000; i++ {
		require.NoError(t, tree.Insert(randomPoint(rng, 1), i))
	}

	total := 0
	tree.Root().Walk(func(r *Region[int]) bool {
		if r.IsLeaf() {
			if r.Len() > capacity {
				t.Errorf("leaf at depth %d holds %d points (capacity %d)", r.Depth(), r.Len(), capacity)
			}
			total += r.Len()
		} else if r.Len() != 0 {
			t.Errorf("internal region at depth %d holds %d points", r.Depth(), r.Len())
		}
		return true
	})
	assert.Equal(t, 2000, total)
	assert.Equal(t, 2000, tree.Len())
}

func TestInsert_SplitRedistributesWithoutLoss(t *testing.T) {
	const capacity = 4
	rng := rand.New(rand.NewSource(3))
	tree := newTestTree(t, capacity)

	var want []Entry[int]
	for i := 0; i < capacity+1; i++ {
		p := randomPoint(rng, 1)
		want = append(want, Entry[int]{Position: p, Payload: i})
		require.NoError(t, tree.Insert(p, i))
	}
	root := tree.Root()
	require.False(t, root.IsLeaf())

	var got []Entry[int]
	seen := map[int]int{}
	for i := 0; i < 8; i++ {
		child, err := root.Child(i)
		require.NoError(t, err)
		for _, e := range child.CollectPoints() {
			seen[e.Payload]++
			b := child.Bounds()
			if e.Position.X < b.Min.X || e.Position.X > b.Max.X ||
				e.Position.Y < b.Min.Y || e.Position.Y > b.Max.Y ||
				e.Position.Z < b.Min.Z || e.Position.Z > b.Max.Z {
				t.Errorf("point %d at %+v outside child %d bounds %+v", e.Payload, e.Position, i, b)
			}
		}
		got = append(got, child.CollectPoints()...)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("point %d found %d times", id, n)
		}
	}
	if diff := cmp.Diff(want, got, sortEntries()); diff != "" {
		t.Errorf("points after split (-want +got):\n%s", diff)
	}
}

func TestInsert_MaxDepthStopsSubdivision(t *testing.T) {
	var splitDepths []int
	tree := newTestTree(t, 1,
		WithMaxDepth(2),
		WithSplitHook(func(d int) { splitDepths = append(splitDepths, d) }),
	)
	p := r3.Vec{X: 0.3, Y: 0.3, Z: 0.3}
	for i := 0; i < 5; i++ {
		require.NoError(t, tree.Insert(p, i))
	}

	assert.Equal(t, []int{0, 1}, splitDepths)
	stats := tree.Stats()
	assert.Equal(t, 2, stats.Depth)
	assert.Equal(t, 1, stats.Overfull)
	assert.Equal(t, 5, stats.Points)
	assert.Equal(t, 2, tree.MaxDepth())
}

func TestInsert_RejectsPointsOutsideRoot(t *testing.T) {
	tree := newTestTree(t, 1)
	require.NoError(t, tree.Insert(r3.Vec{X: 0.1}, 0))

	for _, p := range []r3.Vec{
		{X: -50, Y: 50, Z: -50},
		{Y: 1.0000001},
		{X: math.NaN()},
		{Z: math.Inf(-1)},
	} {
		assert.ErrorIsf(t, tree.Insert(p, 1), ErrOutOfBounds, "point %+v", p)
	}
	assert.Equal(t, 1, tree.Len())
	assert.True(t, tree.Root().IsLeaf(), "rejected points must not split the root")

	// The closed box includes its faces and corners.
	require.NoError(t, tree.Insert(r3.Vec{X: 1, Y: -1, Z: 1}, 2))
	assert.Equal(t, 2, tree.Len())
}

func TestInsert_StoredPointsLieInTheirLeaf(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	tree := newTestTree(t, 3)
	for i := 0; i < 500; i++ {
		require.NoError(t, tree.Insert(randomPoint(rng, 1), i))
	}
	for _, leaf := range tree.Root().Leaves() {
		for _, e := range leaf.Points() {
			assert.Truef(t, leaf.Contains(e.Position), "point %d at %+v outside leaf at %+v", e.Payload, e.Position, leaf.Origin())
		}
	}
}

func TestInsertEntries_AllOrNothing(t *testing.T) {
	tree := newTestTree(t, 2)
	entries := []Entry[int]{
		{Position: r3.Vec{X: 0.1}, Payload: 1},
		{Position: r3.Vec{Y: 3}, Payload: 2},
	}
	err := tree.InsertEntries(entries)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Contains(t, err.Error(), "entry 1")
	assert.Equal(t, 0, tree.Len())
}

func TestEnclosingHalfExtent(t *testing.T) {
	entries := []Entry[int]{
		{Position: r3.Vec{X: 0.5, Y: 1.75}},
		{Position: r3.Vec{Z: -1.25}},
		{Position: r3.Vec{X: math.Inf(1)}},
	}
	assert.Equal(t, 1.75, EnclosingHalfExtent(r3.Vec{}, entries))
	assert.Equal(t, 2.75, EnclosingHalfExtent(r3.Vec{Y: -1}, entries))
	assert.Zero(t, EnclosingHalfExtent[int](r3.Vec{}, nil))
}

func TestRegion_ChildErrors(t *testing.T) {
	tree := newTestTree(t, 1)
	_, err := tree.Root().Child(0)
	assert.True(t, errors.Is(err, ErrNotInternal))

	require.NoError(t, tree.Insert(r3.Vec{X: 0.5}, 0))
	require.NoError(t, tree.Insert(r3.Vec{X: -0.5}, 1))
	for _, i := range []int{-1, 8, 100} {
		_, err := tree.Root().Child(i)
		assert.ErrorIsf(t, err, ErrChildIndex, "index %d", i)
	}
}

func TestRegion_PointsIsACopy(t *testing.T) {
	tree := newTestTree(t, 4)
	require.NoError(t, tree.Insert(r3.Vec{X: 0.2}, 9))
	pts := tree.Root().Points()
	pts[0].Payload = 100
	assert.Equal(t, 9, tree.Root().Points()[0].Payload)
}

func TestRegion_Bounds(t *testing.T) {
	tree, err := New[string](r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}, 1)
	require.NoError(t, err)
	b := tree.Root().Bounds()
	assert.Equal(t, r3.Vec{}, b.Min)
	assert.Equal(t, r3.Vec{X: 2, Y: 4, Z: 6}, b.Max)
}

func TestInsertEntries(t *testing.T) {
	tree := newTestTree(t, 2)
	entries := []Entry[int]{
		{Position: r3.Vec{X: 0.1}, Payload: 1},
		{Position: r3.Vec{Y: -0.4}, Payload: 2},
		{Position: r3.Vec{Z: 0.9}, Payload: 3},
	}
	require.NoError(t, tree.InsertEntries(entries))
	if diff := cmp.Diff(entries, tree.Root().CollectPoints(), sortEntries()); diff != "" {
		t.Errorf("CollectPoints (-want +got):\n%s", diff)
	}
}
