package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pointcull/internal/scene"
)

// MaxChartPoints bounds the number of points drawn per chart; larger frames
// are downsampled by stride.
const MaxChartPoints = 8000

// frameChart builds a scatter chart of one frame's visible points coloured
// by payload, plus the camera position.
func frameChart(res scene.FrameResult) *charts.Scatter {
	stride := 1
	if len(res.Visible) > MaxChartPoints {
		stride = int(math.Ceil(float64(len(res.Visible)) / float64(MaxChartPoints)))
	}

	data := make([]opts.ScatterData, 0, len(res.Visible)/stride+1)
	maxAbs := math.Max(math.Abs(res.Eye.X), math.Abs(res.Eye.Z))
	for i := 0; i < len(res.Visible); i += stride {
		e := res.Visible[i]
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(e.Position.X), math.Abs(e.Position.Z)))
		data = append(data, opts.ScatterData{Value: []interface{}{e.Position.X, e.Position.Z, e.Payload}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Frustum culling", Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Frame %d", res.Index),
			Subtitle: fmt.Sprintf("regions=%d visible=%d culled=%d stride=%d", len(res.Regions), len(res.Visible), res.Culled, stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)

	scatter.AddSeries("visible", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scatter.AddSeries("camera", []opts.ScatterData{{Value: []interface{}{res.Eye.X, res.Eye.Z}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter
}

// WriteHTML renders one chart per frame onto a single page.
func WriteHTML(w io.Writer, frames ...scene.FrameResult) error {
	page := components.NewPage()
	page.PageTitle = "Frustum culling"
	for _, f := range frames {
		page.AddCharts(frameChart(f))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}
