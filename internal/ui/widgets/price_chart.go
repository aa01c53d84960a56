package widgets

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/presenter"
)

const (
	chartWidth    = 960
	chartHeight   = 440
	maxXAxisTicks = 8
)

// PriceChart displays a prediction series as a rendered line chart.
type PriceChart struct {
	widget.BaseWidget

	image *canvas.Image
	font  *truetype.Font
}

// NewPriceChart creates an empty chart. font is used for the title, axes and
// legend; nil selects the renderer's built-in Latin font.
func NewPriceChart(font *truetype.Font) *PriceChart {
	c := &PriceChart{image: canvas.NewImageFromImage(blank(chartWidth, chartHeight)), font: font}
	c.image.FillMode = canvas.ImageFillContain
	c.image.SetMinSize(fyne.NewSize(480, 220))
	c.ExtendBaseWidget(c)
	return c
}

// SetView re-renders the chart for a new projection.
func (c *PriceChart) SetView(view presenter.ChartView, title string) {
	c.image.Image = RenderPriceChart(view, title, chartWidth, chartHeight, c.font)
	c.image.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (c *PriceChart) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.image)
}

// RenderPriceChart renders view as a PNG-backed image of the given size.
// Render failures and series without finite values yield a blank image.
func RenderPriceChart(view presenter.ChartView, title string, width, height int, font *truetype.Font) image.Image {
	xs, ys := finitePoints(view.Series.Values)
	if len(xs) == 0 {
		return blank(width, height)
	}

	lo, hi := minMax(ys)
	// A single point or a flat line has no x or y extent; pad both.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	if hi <= lo {
		lo, hi = lo-1, hi+1
	}

	ticks := xTicks(view.Categories, maxXAxisTicks)
	if len(ticks) < 2 {
		ticks = nil
	}

	series := chart.ContinuousSeries{
		Name:    view.Series.Name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			StrokeWidth: 2,
			DotColor:    chart.ColorBlue,
			DotWidth:    3,
		},
	}

	ch := chart.Chart{
		Title:      title,
		Font:       font,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 24, Bottom: 56}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Style: chart.Style{TextRotationDegrees: 30},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return presenter.FormatPrice(f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		logging.Warnf("chart: render error: %v; showing blank fallback", err)
		return blank(width, height)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logging.Warnf("chart: decode error: %v; showing blank fallback", err)
		return blank(width, height)
	}
	return img
}

// xTicks labels at most maxTicks evenly spaced categories, always including
// the last one.
func xTicks(categories []string, maxTicks int) []chart.Tick {
	if len(categories) == 0 || maxTicks <= 0 {
		return nil
	}
	step := int(math.Ceil(float64(len(categories)) / float64(maxTicks)))
	var ticks []chart.Tick
	for i := 0; i < len(categories); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: categories[i]})
	}
	last := len(categories) - 1
	if int(ticks[len(ticks)-1].Value) != last {
		if len(ticks) == maxTicks {
			ticks = ticks[:len(ticks)-1]
		}
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: categories[last]})
	}
	return ticks
}

// finitePoints returns positional x values and the finite y values.
func finitePoints(values []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	return xs, ys
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: drawing.ColorWhite}, image.Point{}, draw.Src)
	return img
}
