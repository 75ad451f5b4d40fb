// Package report renders culled frames for offline inspection: PNG plots via
// gonum/plot and interactive HTML charts via go-echarts. Both draw a
// top-down (X/Z) projection of the visible points, the reported regions and
// the camera position.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pointcull/internal/scene"
)

var (
	pointColour  = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	regionColour = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	eyeColour    = color.RGBA{R: 20, G: 90, B: 220, A: 255}
)

// regionOutline returns the X/Z footprint of a region as a closed polyline.
func regionOutline(r scene.RegionSummary) plotter.XYs {
	x0, x1 := r.Origin.X-r.HalfExtent.X, r.Origin.X+r.HalfExtent.X
	z0, z1 := r.Origin.Z-r.HalfExtent.Z, r.Origin.Z+r.HalfExtent.Z
	return plotter.XYs{{X: x0, Y: z0}, {X: x1, Y: z0}, {X: x1, Y: z1}, {X: x0, Y: z1}, {X: x0, Y: z0}}
}

// FramePlot builds the plot for one frame without saving it.
func FramePlot(res scene.FrameResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Frame %d: %d regions, %d visible, %d culled",
		res.Index, len(res.Regions), len(res.Visible), res.Culled)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Z"
	p.Add(plotter.NewGrid())

	for _, r := range res.Regions {
		line, err := plotter.NewLine(regionOutline(r))
		if err != nil {
			return nil, fmt.Errorf("failed to create region outline: %w", err)
		}
		line.Color = regionColour
		line.Width = vg.Points(0.5)
		p.Add(line)
	}

	if len(res.Visible) > 0 {
		pts := make(plotter.XYs, len(res.Visible))
		for i, e := range res.Visible {
			pts[i] = plotter.XY{X: e.Position.X, Y: e.Position.Z}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create point scatter: %w", err)
		}
		scatter.GlyphStyle.Color = pointColour
		scatter.GlyphStyle.Radius = vg.Points(1)
		p.Add(scatter)
		p.Legend.Add("visible", scatter)
	}

	eye, err := plotter.NewScatter(plotter.XYs{{X: res.Eye.X, Y: res.Eye.Z}})
	if err != nil {
		return nil, fmt.Errorf("failed to create eye marker: %w", err)
	}
	eye.GlyphStyle.Color = eyeColour
	eye.GlyphStyle.Radius = vg.Points(4)
	p.Add(eye)
	p.Legend.Add("camera", eye)

	return p, nil
}

// WritePNG renders the frame to dir/frame_NNNN.png and returns the path.
func WritePNG(dir string, res scene.FrameResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	p, err := FramePlot(res)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", res.Index))
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save plot: %w", err)
	}
	return path, nil
}
