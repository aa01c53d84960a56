package ui

import (
	"testing"

	"github.com/piwi3910/jajaero/internal/model"
)

func TestExportFileName(t *testing.T) {
	tests := []struct {
		sel  model.Selection
		ext  string
		want string
	}{
		{model.Selection{Material: "MDF", Region: "Seoul"}, "pdf", "MDF_Seoul_prediction.pdf"},
		{model.Selection{Material: "Ready mixed concrete", Region: "Gyeonggi"}, "xlsx", "Ready_mixed_concrete_Gyeonggi_prediction.xlsx"},
		{model.Selection{Material: "a/b:c", Region: "철근"}, "pdf", "a_b_c_철근_prediction.pdf"},
		{model.Selection{}, "pdf", "prediction.pdf"},
	}
	for _, tt := range tests {
		if got := ExportFileName(tt.sel, tt.ext); got != tt.want {
			t.Errorf("ExportFileName(%+v, %q) = %q, want %q", tt.sel, tt.ext, got, tt.want)
		}
	}
}

func TestResultTitle(t *testing.T) {
	if got := resultTitle(nil); got != "No prediction available" {
		t.Errorf("unexpected nil title %q", got)
	}
	r := &model.PredictionResult{
		Selection: model.Selection{Material: "MDF", Region: "Seoul"},
		Series:    model.PredictionSeries{{Date: "2024-01-01", PredictedPrice: 1}},
	}
	if got, want := resultTitle(r), "MDF / Seoul (1 points)"; got != want {
		t.Errorf("resultTitle() = %q, want %q", got, want)
	}
}
