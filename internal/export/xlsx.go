package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/jajaero/internal/model"
	"github.com/piwi3910/jajaero/internal/presenter"
)

const (
	dataSheet = "Prediction"
	infoSheet = "Info"
)

// ExportXLSX writes result to an Excel workbook: a data sheet with prices in
// 0.000 format, a native line chart of the series and a sheet of request
// metadata.
func ExportXLSX(path string, result *model.PredictionResult) error {
	if result == nil {
		return ErrNoResult
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return fmt.Errorf("failed to name data sheet: %w", err)
	}
	if err := writeDataSheet(f, result.Series); err != nil {
		return err
	}
	if len(result.Series) > 0 {
		if err := addPriceChart(f, result); err != nil {
			return err
		}
	}
	if err := writeInfoSheet(f, result); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeDataSheet(f *excelize.File, series model.PredictionSeries) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	priceFmt := "0.000"
	priceStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt})
	if err != nil {
		return fmt.Errorf("failed to create price style: %w", err)
	}

	for i, h := range []string{"#", "Date", presenter.SeriesName} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(dataSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(dataSheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range series {
		row := i + 2
		idx, _ := excelize.CoordinatesToCellName(1, row)
		date, _ := excelize.CoordinatesToCellName(2, row)
		price, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellValue(dataSheet, idx, i+1); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellValue(dataSheet, date, p.Date); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		// Non-finite prices stay blank so the chart shows a gap.
		if v := p.PredictedPrice; !math.IsNaN(v) && !math.IsInf(v, 0) {
			if err := f.SetCellValue(dataSheet, price, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}
	if len(series) > 0 {
		last, _ := excelize.CoordinatesToCellName(3, len(series)+1)
		if err := f.SetCellStyle(dataSheet, "C2", last, priceStyle); err != nil {
			return fmt.Errorf("failed to style prices: %w", err)
		}
	}
	if err := f.SetColWidth(dataSheet, "B", "C", 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}

func addPriceChart(f *excelize.File, result *model.PredictionResult) error {
	lastRow := len(result.Series) + 1
	title := fmt.Sprintf("%s / %s", result.Selection.Material, result.Selection.Region)
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$C$1", dataSheet),
			Categories: fmt.Sprintf("'%s'!$B$2:$B$%d", dataSheet, lastRow),
			Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", dataSheet, lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		YAxis:  excelize.ChartAxis{NumFmt: excelize.ChartNumFmt{CustomNumFmt: "0.000"}},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 360,
		},
	}
	if err := f.AddChart(dataSheet, "E2", chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}

func writeInfoSheet(f *excelize.File, result *model.PredictionResult) error {
	if _, err := f.NewSheet(infoSheet); err != nil {
		return fmt.Errorf("failed to create info sheet: %w", err)
	}
	info := CollectReportInfo(result)
	sum := Summarize(result.Series)
	rows := [][]any{
		{"Material", info.Material},
		{"Region", info.Region},
		{"Points", info.Points},
		{"From", info.From},
		{"To", info.To},
		{"Minimum", presenter.FormatPrice(sum.Min)},
		{"Maximum", presenter.FormatPrice(sum.Max)},
		{"Mean", presenter.FormatPrice(sum.Mean)},
		{"Request ID", info.RequestID},
		{"Received", info.ReceivedAt},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(infoSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write info row: %w", err)
		}
	}
	return f.SetColWidth(infoSheet, "A", "B", 24)
}
