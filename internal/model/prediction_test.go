package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPredictionPointDecode(t *testing.T) {
	var series PredictionSeries
	data := `[
		{"date": "2025-01-01", "predicted_price": 1.2},
		{"date": "2025-02-01", "predicted_price": null},
		{"date": "2025-03-01", "predicted_price": "1,234.5"},
		{"date": "2025-04-01"}
	]`
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("expected 4 points, got %d", len(series))
	}
	if series[0].PredictedPrice != 1.2 {
		t.Errorf("expected 1.2, got %f", series[0].PredictedPrice)
	}
	if !math.IsNaN(series[1].PredictedPrice) {
		t.Errorf("null price should decode as NaN, got %f", series[1].PredictedPrice)
	}
	if series[2].PredictedPrice != 1234.5 {
		t.Errorf("numeric string should be parsed, got %f", series[2].PredictedPrice)
	}
	if !math.IsNaN(series[3].PredictedPrice) {
		t.Errorf("missing price should decode as NaN, got %f", series[3].PredictedPrice)
	}
}

func TestSeriesDatesAndPricesKeepOrder(t *testing.T) {
	series := PredictionSeries{
		{Date: "2024-02", PredictedPrice: 2},
		{Date: "2024-01", PredictedPrice: 1},
	}
	dates := series.Dates()
	prices := series.Prices()
	if dates[0] != "2024-02" || dates[1] != "2024-01" {
		t.Errorf("dates must keep received order, got %v", dates)
	}
	if prices[0] != 2 || prices[1] != 1 {
		t.Errorf("prices must keep received order, got %v", prices)
	}
}

func TestPredictionResultLenNil(t *testing.T) {
	var r *PredictionResult
	if r.Len() != 0 {
		t.Error("nil result should have length 0")
	}
}

func TestSelectionMissing(t *testing.T) {
	if !(Selection{Material: "MDF", Region: "서울"}).Complete() {
		t.Error("selection with both fields should be complete")
	}
	missing := Selection{Region: "서울"}.Missing()
	if len(missing) != 1 || missing[0] != "material" {
		t.Errorf("expected [material], got %v", missing)
	}
	if len(Selection{}.Missing()) != 2 {
		t.Error("empty selection should miss both fields")
	}
}
