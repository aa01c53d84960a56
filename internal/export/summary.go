// Package export writes prediction results to PDF reports and Excel workbooks.
package export

import (
	"errors"
	"math"
	"time"

	"github.com/piwi3910/jajaero/internal/model"
)

// ErrNoResult is returned when there is nothing to export.
var ErrNoResult = errors.New("no prediction result to export")

// Summary holds descriptive statistics over the finite prices of a series.
type Summary struct {
	Points int
	Finite int
	Min    float64
	Max    float64
	Mean   float64
	From   string
	To     string
}

// Summarize computes a Summary. Non-finite prices are counted in Points but
// excluded from the statistics; with no finite prices Min, Max and Mean are NaN.
func Summarize(series model.PredictionSeries) Summary {
	s := Summary{Points: len(series), Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	if len(series) > 0 {
		s.From = series[0].Date
		s.To = series[len(series)-1].Date
	}
	var sum float64
	for _, p := range series {
		v := p.PredictedPrice
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if s.Finite == 0 || v < s.Min {
			s.Min = v
		}
		if s.Finite == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		s.Finite++
	}
	if s.Finite > 0 {
		s.Mean = sum / float64(s.Finite)
	}
	return s
}

// ReportInfo is the request metadata encoded into the report's QR code.
type ReportInfo struct {
	Material   string `json:"material"`
	Region     string `json:"region"`
	RequestID  string `json:"request_id,omitempty"`
	Points     int    `json:"points"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	ReceivedAt string `json:"received_at,omitempty"`
}

// CollectReportInfo extracts the QR metadata from a result.
func CollectReportInfo(result *model.PredictionResult) ReportInfo {
	sum := Summarize(result.Series)
	info := ReportInfo{
		Material:  result.Selection.Material,
		Region:    result.Selection.Region,
		RequestID: result.RequestID,
		Points:    sum.Points,
		From:      sum.From,
		To:        sum.To,
	}
	if !result.ReceivedAt.IsZero() {
		info.ReceivedAt = result.ReceivedAt.Format(time.RFC3339)
	}
	return info
}
