package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/jajaero/internal/fonts"
	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
	"github.com/piwi3910/jajaero/internal/presenter"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 10.0
	qrSize       = 35.0
	chartHeight  = 70.0
	rowHeight    = 6.0
)

var tableColWidths = []float64{20, 70, 60}

// reportFamily is the family name the embedded UTF-8 font is registered under.
const reportFamily = "report"

// face is the font family used for report text and the translator that text
// goes through before it is written.
type face struct {
	family string
	tr     func(string) string
}

// newFace registers font with pdf. Without a font the core Helvetica face is
// used, which can only show cp1252 text.
func newFace(pdf *fpdf.Fpdf, font *fonts.Font) face {
	if font == nil {
		return face{family: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	}
	// One face serves every style; fpdf has no synthetic bold for UTF-8 fonts.
	for _, style := range []string{"", "B", "I"} {
		pdf.AddUTF8FontFromBytes(reportFamily, style, font.Data)
	}
	return face{family: reportFamily, tr: func(s string) string { return s }}
}

// ExportPDF writes a report for result: a summary with a QR code of the
// request metadata, a price plot and the full price table. font, when not
// nil, is embedded so that Korean names render; otherwise text outside
// cp1252 is lost.
func ExportPDF(path string, result *model.PredictionResult, font *fonts.Font) error {
	if result == nil {
		return ErrNoResult
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	fc := newFace(pdf, font)
	if font == nil && !latin1(result.Selection.Material+result.Selection.Region) {
		logging.Warnf("export: no Hangul font available; %s / %s will not render in %s",
			result.Selection.Material, result.Selection.Region, path)
	}
	pdf.SetFooterFunc(func() {
		pdf.SetFont(fc.family, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(marginLeft, pageHeight-marginBottom+2)
		footer := fmt.Sprintf("Generated by Jajaero - page %d", pdf.PageNo())
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	y, err := renderSummary(pdf, fc, result)
	if err != nil {
		return err
	}
	y = renderPlot(pdf, fc, result.Series, y+5)
	if proj := presenter.Project(result.Series); proj.Len() > 0 {
		renderTable(pdf, fc, proj.Table, y+8)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func latin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// renderSummary draws the title, the statistics block and the QR code.
// It returns the y position below the block.
func renderSummary(pdf *fpdf.Fpdf, fc face, result *model.PredictionResult) (float64, error) {
	contentW := pageWidth - marginLeft - marginRight

	pdf.SetFont(fc.family, "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentW, headerHeight, "Price Prediction Report", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+headerHeight+1, pageWidth-marginRight, marginTop+headerHeight+1)

	sum := Summarize(result.Series)
	received := "-"
	if !result.ReceivedAt.IsZero() {
		received = result.ReceivedAt.Format("2006-01-02 15:04:05")
	}
	items := []struct {
		label string
		value string
	}{
		{"Material", fc.tr(result.Selection.Material)},
		{"Region", fc.tr(result.Selection.Region)},
		{"Points", fmt.Sprintf("%d", sum.Points)},
		{"Period", periodLabel(sum)},
		{"Minimum", presenter.FormatPrice(sum.Min)},
		{"Maximum", presenter.FormatPrice(sum.Max)},
		{"Mean", presenter.FormatPrice(sum.Mean)},
		{"Received", received},
		{"Request ID", result.RequestID},
	}

	y := marginTop + headerHeight + 6
	pdf.SetFont(fc.family, "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+2, y)
		pdf.CellFormat(35, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont(fc.family, "B", 10)
		pdf.CellFormat(contentW-qrSize-40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont(fc.family, "", 10)
		y += 6
	}

	if err := renderQR(pdf, CollectReportInfo(result), pageWidth-marginRight-qrSize, marginTop+headerHeight+6); err != nil {
		return 0, err
	}
	return math.Max(y, marginTop+headerHeight+6+qrSize), nil
}

func periodLabel(sum Summary) string {
	if sum.Points == 0 {
		return "-"
	}
	return sum.From + " - " + sum.To
}

// renderQR places a QR code encoding info as JSON at (x, y).
func renderQR(pdf *fpdf.Fpdf, info ReportInfo, x, y float64) error {
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal report info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr_report", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr_report", x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// renderPlot draws the price series as a polyline inside a framed area and
// returns the y position below it. Non-finite prices break the line.
func renderPlot(pdf *fpdf.Fpdf, fc face, series model.PredictionSeries, top float64) float64 {
	left := marginLeft + 18
	width := pageWidth - marginRight - left
	bottom := top + chartHeight

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(left, top, width, chartHeight, "D")

	sum := Summarize(series)
	if sum.Finite == 0 {
		pdf.SetFont(fc.family, "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(left, top+chartHeight/2-3)
		pdf.CellFormat(width, 6, "No data", "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		return bottom
	}

	lo, hi := sum.Min, sum.Max
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	xAt := func(i int) float64 {
		if len(series) == 1 {
			return left + width/2
		}
		return left + width*float64(i)/float64(len(series)-1)
	}
	yAt := func(v float64) float64 {
		return bottom - chartHeight*(v-lo)/(hi-lo)
	}

	// Y axis labels
	pdf.SetFont(fc.family, "", 7)
	for _, v := range []float64{lo, (lo + hi) / 2, hi} {
		pdf.SetXY(marginLeft, yAt(v)-2)
		pdf.CellFormat(17, 4, presenter.FormatPrice(v), "", 0, "R", false, 0, "")
	}

	// X axis labels: first, middle and last date
	for _, i := range []int{0, len(series) / 2, len(series) - 1} {
		label := series[i].Date
		w := pdf.GetStringWidth(label)
		pdf.SetXY(math.Min(math.Max(xAt(i)-w/2, left), left+width-w), bottom+1)
		pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
	}

	pdf.SetDrawColor(33, 150, 243)
	pdf.SetLineWidth(0.5)
	prev := -1
	for i, p := range series {
		v := p.PredictedPrice
		if math.IsNaN(v) || math.IsInf(v, 0) {
			prev = -1
			continue
		}
		if prev >= 0 {
			pdf.Line(xAt(prev), yAt(series[prev].PredictedPrice), xAt(i), yAt(v))
		} else {
			pdf.Circle(xAt(i), yAt(v), 0.4, "F")
		}
		prev = i
	}
	pdf.SetDrawColor(0, 0, 0)
	return bottom + 5
}

// renderTable draws the price table, adding pages and repeating the header
// as needed.
func renderTable(pdf *fpdf.Fpdf, fc face, rows []presenter.TableRow, y float64) {
	drawHeader := func(y float64) float64 {
		pdf.SetFont(fc.family, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, header := range []string{"#", "Date", presenter.SeriesName} {
			pdf.SetXY(x, y)
			pdf.CellFormat(tableColWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
			x += tableColWidths[i]
		}
		pdf.SetFont(fc.family, "", 9)
		return y + rowHeight
	}

	y = drawHeader(y)
	for i, row := range rows {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = drawHeader(marginTop)
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x := marginLeft
		for j, cell := range []string{fmt.Sprintf("%d", row.Index), row.Date, row.Price} {
			pdf.SetXY(x, y)
			pdf.CellFormat(tableColWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			x += tableColWidths[j]
		}
		y += rowHeight
	}
}
