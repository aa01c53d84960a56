// Package presenter turns a prediction result into the table and chart views
// shown to the user.
package presenter

import (
	"fmt"
	"math"

	"github.com/piwi3910/jajaero/internal/model"
)

// SeriesName is the legend label of the single chart series.
const SeriesName = "Predicted Price"

// TableRow is one row of the tabular view.
type TableRow struct {
	Index int
	Date  string
	Price string
}

// ChartSeries is a named list of values aligned with the chart categories.
type ChartSeries struct {
	Name   string
	Values []float64
}

// ChartView is a category axis of dates plus one value series.
type ChartView struct {
	Categories []string
	Series     ChartSeries
}

// Projection holds both views of the same series. Rows and categories are
// always the same length and in series order.
type Projection struct {
	Table []TableRow
	Chart ChartView
}

// Len returns the number of projected points.
func (p Projection) Len() int { return len(p.Table) }

// Display is what the result area should show.
type Display int

const (
	DisplayLoading Display = iota
	DisplayTable
	DisplayChart
)

func (d Display) String() string {
	switch d {
	case DisplayTable:
		return "table"
	case DisplayChart:
		return "chart"
	default:
		return "loading"
	}
}

// FormatPrice renders a price with three decimals. Non-finite values render
// as "n/a".
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

// Project derives the tabular and chart views from a series.
func Project(series model.PredictionSeries) Projection {
	p := Projection{
		Table: make([]TableRow, len(series)),
		Chart: ChartView{
			Categories: series.Dates(),
			Series:     ChartSeries{Name: SeriesName, Values: series.Prices()},
		},
	}
	for i, pt := range series {
		p.Table[i] = TableRow{Index: i + 1, Date: pt.Date, Price: FormatPrice(pt.PredictedPrice)}
	}
	return p
}

// ResultPresenter owns the view mode and caches the projection of the most
// recent result. Like the controller it is confined to the UI goroutine.
type ResultPresenter struct {
	mode model.ViewMode

	cachedFor *model.PredictionResult
	cached    Projection
	hasCached bool
	projectFn func(model.PredictionSeries) Projection
	listeners []func(model.ViewMode)
}

// New creates a presenter with the given initial view mode.
func New(initial model.ViewMode) *ResultPresenter {
	return &ResultPresenter{mode: initial, projectFn: Project}
}

// ViewMode returns the active view mode.
func (p *ResultPresenter) ViewMode() model.ViewMode { return p.mode }

// SetViewMode switches between table and chart. It never touches request
// state.
func (p *ResultPresenter) SetViewMode(m model.ViewMode) {
	if p.mode == m {
		return
	}
	p.mode = m
	for _, fn := range p.listeners {
		fn(m)
	}
}

// OnViewModeChange registers a listener for view mode changes.
func (p *ResultPresenter) OnViewModeChange(fn func(model.ViewMode)) {
	p.listeners = append(p.listeners, fn)
}

// Projection returns the projection of result, recomputing only when a
// different result is passed. A nil result projects to empty views.
func (p *ResultPresenter) Projection(result *model.PredictionResult) Projection {
	if p.hasCached && p.cachedFor == result {
		return p.cached
	}
	var series model.PredictionSeries
	if result != nil {
		series = result.Series
	}
	p.cached = p.projectFn(series)
	p.cachedFor = result
	p.hasCached = true
	return p.cached
}

// Display decides what the result area shows. Loading is shown while a
// request is pending and before any submission has completed.
func (p *ResultPresenter) Display(status model.RequestStatus, completed bool) Display {
	if status == model.StatusPending || !completed {
		return DisplayLoading
	}
	if p.mode == model.ViewChart {
		return DisplayChart
	}
	return DisplayTable
}
