package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PredictionPoint is a single predicted price for a month.
type PredictionPoint struct {
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
}

// UnmarshalJSON decodes a point, treating a null or unparseable price as NaN
// instead of failing the whole response.
func (p *PredictionPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date           string          `json:"date"`
		PredictedPrice json.RawMessage `json:"predicted_price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("prediction point: %w", err)
	}
	p.Date = raw.Date
	p.PredictedPrice = parsePrice(raw.PredictedPrice)
	return nil
}

func parsePrice(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

// PredictionSeries is the ordered list of points returned for one selection.
// Order is the order received; it is never re-sorted.
type PredictionSeries []PredictionPoint

// Dates returns the date of every point in series order.
func (s PredictionSeries) Dates() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// Prices returns the predicted price of every point in series order.
func (s PredictionSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.PredictedPrice
	}
	return out
}

// PredictionResult is one successful prediction. A new result is created for
// every success, so pointer identity doubles as series identity.
type PredictionResult struct {
	Selection  Selection
	Series     PredictionSeries
	RequestID  string
	ReceivedAt time.Time
}

// Len returns the number of points, tolerating a nil result.
func (r *PredictionResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Series)
}
