package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Defaults used when a field is omitted from the JSON file.
const (
	DefaultCapacity       = 8
	DefaultMaxDepth       = 16
	DefaultEpsilon        = 0.02
	DefaultQueryPolicy    = "coarse"
	DefaultRootHalfExtent = 1.0
	DefaultFovYDeg        = 45.0
	DefaultAspect         = 800.0 / 600.0
	DefaultNear           = 0.01
	DefaultFar            = 100.0
	DefaultCameraDistance = 8.0
	DefaultOrbitStepDeg   = 5.0
	DefaultPointCount     = 1000
	DefaultPointSpread    = 1.0
)

// TuningConfig holds the tree, frustum and camera parameters. Every field is
// optional; the Get* accessors fall back to the defaults above so partial
// files are safe.
type TuningConfig struct {
	// Octree
	Capacity       *int     `json:"capacity,omitempty"`
	MaxDepth       *int     `json:"max_depth,omitempty"` // 0 = unbounded
	QueryPolicy    *string  `json:"query_policy,omitempty"`
	RootHalfExtent *float64 `json:"root_half_extent,omitempty"`

	// Frustum
	Epsilon *float64 `json:"epsilon,omitempty"`

	// Camera
	FovYDeg        *float64 `json:"fov_deg,omitempty"`
	Aspect         *float64 `json:"aspect,omitempty"`
	Near           *float64 `json:"near,omitempty"`
	Far            *float64 `json:"far,omitempty"`
	CameraDistance *float64 `json:"camera_distance,omitempty"`
	OrbitStepDeg   *float64 `json:"orbit_step_deg,omitempty"`

	// Synthetic point source
	PointCount  *int     `json:"point_count,omitempty"`
	PointSpread *float64 `json:"point_spread,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every field populated from the
// built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		Capacity:       ptrInt(DefaultCapacity),
		MaxDepth:       ptrInt(DefaultMaxDepth),
		QueryPolicy:    ptrString(DefaultQueryPolicy),
		RootHalfExtent: ptrFloat64(DefaultRootHalfExtent),
		Epsilon:        ptrFloat64(DefaultEpsilon),
		FovYDeg:        ptrFloat64(DefaultFovYDeg),
		Aspect:         ptrFloat64(DefaultAspect),
		Near:           ptrFloat64(DefaultNear),
		Far:            ptrFloat64(DefaultFar),
		CameraDistance: ptrFloat64(DefaultCameraDistance),
		OrbitStepDeg:   ptrFloat64(DefaultOrbitStepDeg),
		PointCount:     ptrInt(DefaultPointCount),
		PointSpread:    ptrFloat64(DefaultPointSpread),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func positive(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if !(*v > 0) || math.IsInf(*v, 0) {
		return fmt.Errorf("%s must be positive and finite, got %f", name, *v)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Capacity != nil && *c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", *c.Capacity)
	}
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", *c.MaxDepth)
	}
	if c.QueryPolicy != nil {
		switch *c.QueryPolicy {
		case "coarse", "fine":
		default:
			return fmt.Errorf("query_policy must be \"coarse\" or \"fine\", got %q", *c.QueryPolicy)
		}
	}
	if c.Epsilon != nil && (*c.Epsilon < 0 || math.IsNaN(*c.Epsilon)) {
		return fmt.Errorf("epsilon must be non-negative, got %f", *c.Epsilon)
	}
	if c.FovYDeg != nil && (*c.FovYDeg <= 0 || *c.FovYDeg >= 180) {
		return fmt.Errorf("fov_deg must be in (0, 180), got %f", *c.FovYDeg)
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"root_half_extent", c.RootHalfExtent},
		{"aspect", c.Aspect},
		{"near", c.Near},
		{"far", c.Far},
		{"camera_distance", c.CameraDistance},
		{"point_spread", c.PointSpread},
	} {
		if err := positive(f.name, f.v); err != nil {
			return err
		}
	}
	if c.GetFar() <= c.GetNear() {
		return fmt.Errorf("far (%f) must be greater than near (%f)", c.GetFar(), c.GetNear())
	}
	if c.PointCount != nil && *c.PointCount < 0 {
		return fmt.Errorf("point_count must be non-negative, got %d", *c.PointCount)
	}
	return nil
}

// GetCapacity returns the capacity value or the default.
func (c *TuningConfig) GetCapacity() int {
	if c.Capacity == nil {
		return DefaultCapacity
	}
	return *c.Capacity
}

// GetMaxDepth returns the max_depth value or the default.
func (c *TuningConfig) GetMaxDepth() int {
	if c.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return *c.MaxDepth
}

// GetQueryPolicy returns the query_policy value or the default.
func (c *TuningConfig) GetQueryPolicy() string {
	if c.QueryPolicy == nil || *c.QueryPolicy == "" {
		return DefaultQueryPolicy
	}
	return *c.QueryPolicy
}

// GetRootHalfExtent returns the root_half_extent value or the default.
func (c *TuningConfig) GetRootHalfExtent() float64 {
	if c.RootHalfExtent == nil {
		return DefaultRootHalfExtent
	}
	return *c.RootHalfExtent
}

// GetEpsilon returns the epsilon value or the default.
func (c *TuningConfig) GetEpsilon() float64 {
	if c.Epsilon == nil {
		return DefaultEpsilon
	}
	return *c.Epsilon
}

// GetFovYDeg returns the fov_deg value or the default.
func (c *TuningConfig) GetFovYDeg() float64 {
	if c.FovYDeg == nil {
		return DefaultFovYDeg
	}
	return *c.FovYDeg
}

// GetAspect returns the aspect value or the default.
func (c *TuningConfig) GetAspect() float64 {
	if c.Aspect == nil {
		return DefaultAspect
	}
	return *c.Aspect
}

// GetNear returns the near value or the default.
func (c *TuningConfig) GetNear() float64 {
	if c.Near == nil {
		return DefaultNear
	}
	return *c.Near
}

// GetFar returns the far value or the default.
func (c *TuningConfig) GetFar() float64 {
	if c.Far == nil {
		return DefaultFar
	}
	return *c.Far
}

// GetCameraDistance returns the camera_distance value or the default.
func (c *TuningConfig) GetCameraDistance() float64 {
	if c.CameraDistance == nil {
		return DefaultCameraDistance
	}
	return *c.CameraDistance
}

// GetOrbitStepDeg returns the orbit_step_deg value or the default.
func (c *TuningConfig) GetOrbitStepDeg() float64 {
	if c.OrbitStepDeg == nil {
		return DefaultOrbitStepDeg
	}
	return *c.OrbitStepDeg
}

// GetPointCount returns the point_count value or the default.
func (c *TuningConfig) GetPointCount() int {
	if c.PointCount == nil {
		return DefaultPointCount
	}
	return *c.PointCount
}

// GetPointSpread returns the point_spread value or the default.
func (c *TuningConfig) GetPointSpread() float64 {
	if c.PointSpread == nil {
		return DefaultPointSpread
	}
	return *c.PointSpread
}
