// Package scene drives the per-frame culling loop: it owns the point octree,
// the camera and the frustum, and turns each camera pose into the set of
// regions and points a renderer should draw.
package scene

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/camera"
	"github.com/banshee-data/pointcull/internal/config"
	"github.com/banshee-data/pointcull/internal/frustum"
	"github.com/banshee-data/pointcull/internal/monitoring"
	"github.com/banshee-data/pointcull/internal/octree"
)

// deepSplitDepth is the depth from which splits are logged at debug level;
// splits this deep usually mean clustered or duplicate input.
const deepSplitDepth = 12

// RegionSummary describes one region reported visible in a frame.
type RegionSummary struct {
	Origin     r3.Vec
	HalfExtent r3.Vec
	Depth      int
	Leaf       bool
	Points     int
}

// FrameResult is the outcome of culling one frame.
type FrameResult struct {
	Index   int
	Eye     r3.Vec
	Regions []RegionSummary
	Visible []octree.Entry[float64]
	Culled  int // points in regions that were not reported
	Elapsed time.Duration
}

// Scene holds one point octree viewed through one camera. All methods are
// safe for concurrent use.
type Scene struct {
	mu sync.Mutex

	tree    *octree.Tree[float64]
	cam     camera.Camera
	frustum *frustum.Frustum
	eps     float64
	frame   int
}

// New builds an empty scene from cfg. The octree root is centred on the
// origin with half extent root_half_extent on every axis; the camera orbits
// the origin at camera_distance.
func New(cfg *config.TuningConfig) (*Scene, error) {
	return newScene(cfg, cfg.GetRootHalfExtent())
}

// NewFitted builds a scene holding entries. The root half extent is
// root_half_extent, grown when needed so the root box encloses every entry.
func NewFitted(cfg *config.TuningConfig, entries []octree.Entry[float64]) (*Scene, error) {
	h := cfg.GetRootHalfExtent()
	if need := octree.EnclosingHalfExtent(r3.Vec{}, entries); need > h {
		monitoring.Logf("growing octree root half extent from %g to %g to enclose %d points", h, need, len(entries))
		h = need
	}
	s, err := newScene(cfg, h)
	if err != nil {
		return nil, err
	}
	if err := s.InsertBatch(entries); err != nil {
		return nil, err
	}
	return s, nil
}

func newScene(cfg *config.TuningConfig, h float64) (*Scene, error) {
	policy, err := octree.ParseQueryPolicy(cfg.GetQueryPolicy())
	if err != nil {
		return nil, err
	}

	tree, err := octree.New[float64](r3.Vec{}, r3.Vec{X: h, Y: h, Z: h}, cfg.GetCapacity(),
		octree.WithMaxDepth(cfg.GetMaxDepth()),
		octree.WithQueryPolicy(policy),
		octree.WithSplitHook(onSplit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create octree: %w", err)
	}

	cam := camera.NewOrbit(r3.Vec{}, cfg.GetCameraDistance(),
		cfg.GetFovYDeg(), cfg.GetAspect(), cfg.GetNear(), cfg.GetFar())

	return &Scene{
		tree: tree,
		cam:  *cam,
		eps:  cfg.GetEpsilon(),
	}, nil
}

func onSplit(depth int) {
	monitoring.InstrumentSplit()
	if depth >= deepSplitDepth {
		monitoring.Debugf("octree region split at depth %d", depth)
	}
}

// Insert adds one point. Points outside the root box return
// octree.ErrOutOfBounds.
func (s *Scene) Insert(p r3.Vec, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Insert(p, v)
}

// InsertBatch adds entries in order. If any entry lies outside the root box
// none are added.
func (s *Scene) InsertBatch(entries []octree.Entry[float64]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.InsertEntries(entries)
}

// RootHalfExtent returns the half extent of the octree root on each axis.
func (s *Scene) RootHalfExtent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Root().HalfExtent().X
}

// Len returns the number of points in the scene.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

// Stats returns the current octree shape.
func (s *Scene) Stats() octree.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Stats()
}

// Camera returns a copy of the current camera.
func (s *Scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = c
}

// Orbit rotates the camera about the vertical axis through its target.
func (s *Scene) Orbit(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam.OrbitY(deg)
}

// Frame recomputes the frustum from the current camera and returns the
// visible regions and their points. A camera that produces a degenerate
// transform leaves the previous frustum in place and returns the error.
func (s *Scene) Frame() (FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.updateFrustum(); err != nil {
		if errors.Is(err, frustum.ErrDegenerateTransform) {
			monitoring.InstrumentDegenerateTransform()
			monitoring.Logf("frame %d: camera at %+v rejected: %v", s.frame, s.cam.Eye, err)
		}
		return FrameResult{}, err
	}

	regions := s.tree.Visible(s.frustum)
	res := FrameResult{
		Index:   s.frame,
		Eye:     s.cam.Eye,
		Regions: make([]RegionSummary, 0, len(regions)),
	}
	for _, r := range regions {
		pts := r.CollectPoints()
		res.Visible = append(res.Visible, pts...)
		res.Regions = append(res.Regions, RegionSummary{
			Origin:     r.Origin(),
			HalfExtent: r.HalfExtent(),
			Depth:      r.Depth(),
			Leaf:       r.IsLeaf(),
			Points:     len(pts),
		})
	}
	res.Culled = s.tree.Len() - len(res.Visible)
	res.Elapsed = time.Since(start)
	s.frame++

	monitoring.InstrumentFrame(s.tree.Policy().String(), len(res.Regions), len(res.Visible), start)
	monitoring.Debugf("frame %d: %d regions, %d visible, %d culled in %s",
		res.Index, len(res.Regions), len(res.Visible), res.Culled, res.Elapsed)
	return res, nil
}

func (s *Scene) updateFrustum() error {
	vp, err := s.cam.ViewProjection()
	if err != nil {
		return err
	}
	if s.frustum == nil {
		f, err := frustum.New(vp, frustum.WithEpsilon(s.eps))
		if err != nil {
			return err
		}
		s.frustum = f
		return nil
	}
	return s.frustum.Recompute(vp)
}
