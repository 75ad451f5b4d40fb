package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/octree"
	"github.com/banshee-data/pointcull/internal/scene"
)

func sampleFrame(n int) scene.FrameResult {
	res := scene.FrameResult{
		Index: 3,
		Eye:   r3.Vec{Z: 8},
		Regions: []scene.RegionSummary{
			{Origin: r3.Vec{X: 0.5, Z: 0.5}, HalfExtent: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, Depth: 1, Leaf: true, Points: n},
		},
		Culled: 7,
	}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n)
		res.Visible = append(res.Visible, octree.Entry[float64]{Position: r3.Vec{X: f, Z: 1 - f}, Payload: f})
	}
	return res
}

func TestRegionOutline_IsClosed(t *testing.T) {
	out := regionOutline(scene.RegionSummary{Origin: r3.Vec{X: 1, Z: -1}, HalfExtent: r3.Vec{X: 2, Y: 9, Z: 3}})
	require.Len(t, out, 5)
	assert.Equal(t, out[0], out[4])
	assert.Equal(t, -1.0, out[0].X)
	assert.Equal(t, -4.0, out[0].Y)
	assert.Equal(t, 3.0, out[2].X)
	assert.Equal(t, 2.0, out[2].Y)
}

func TestWritePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	path, err := WritePNG(dir, sampleFrame(50))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frame_0003.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWritePNG_EmptyFrame(t *testing.T) {
	_, err := WritePNG(t.TempDir(), scene.FrameResult{Eye: r3.Vec{Z: 8}})
	assert.NoError(t, err)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleFrame(20), sampleFrame(0)))

	html := buf.String()
	assert.True(t, strings.Contains(html, "Frame 3"))
	assert.True(t, strings.Contains(html, "visible=20"))
}

func TestFrameChart_Downsamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleFrame(MaxChartPoints*2+1)))
	assert.Contains(t, buf.String(), "stride=3")
}
