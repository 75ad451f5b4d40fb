// Package octree stores (position, payload) points in an adaptive,
// axis-aligned octree and answers frustum visibility queries over it.
//
// A Region is either a leaf holding up to its capacity of points, or an
// internal node owning exactly eight children, one per octant. A full leaf
// splits once and irreversibly when another point arrives; its points are
// pushed down to the children and never re-aggregated. There is no removal,
// merge or rebalancing.
//
// The root box is fixed when the tree is created and Insert rejects points
// outside it. EnclosingHalfExtent sizes a root for a known point set.
//
// Without WithMaxDepth, coincident or near-coincident points subdivide
// without limit until the stack or memory runs out. A positive maximum depth
// makes leaves at that depth store beyond capacity instead of splitting.
//
// The tree is not safe for concurrent mutation. Callers that insert and query
// from several goroutines must serialise access themselves.
package octree
