// Package frustum derives the six clipping planes of a camera view volume
// from a combined projection×view transform and classifies axis-aligned
// boxes against them.
//
// Key types: Plane, Frustum, Side, Containment.
//
// Planes are extracted from the rows of the transform (Gribb/Hartmann) and
// normalised so that each normal has unit length and points into the view
// volume. The box test evaluates all eight corners against every plane,
// which makes it conservative: a box may be reported Intersecting while
// lying outside, but never Outside while any part is visible.
//
// Dependency rule: this package must not depend on the octree.
package frustum
