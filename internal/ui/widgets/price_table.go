package widgets

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/jajaero/internal/presenter"
)

var priceTableHeaders = []string{"#", "Date", presenter.SeriesName}

// PriceTable shows the tabular projection of a prediction series.
type PriceTable struct {
	widget.BaseWidget

	table *widget.Table
	rows  []presenter.TableRow
}

// NewPriceTable creates an empty table.
func NewPriceTable() *PriceTable {
	t := &PriceTable{}
	t.table = widget.NewTable(
		func() (int, int) { return len(t.rows), len(priceTableHeaders) },
		func() fyne.CanvasObject { return widget.NewLabel("0000-00-00") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(cellText(t.rows, id.Row, id.Col))
		},
	)
	t.table.ShowHeaderRow = true
	t.table.CreateHeader = func() fyne.CanvasObject { return widget.NewLabel("") }
	t.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(priceTableHeaders) {
			o.(*widget.Label).SetText(priceTableHeaders[id.Col])
		}
	}
	t.table.SetColumnWidth(0, 60)
	t.table.SetColumnWidth(1, 140)
	t.table.SetColumnWidth(2, 160)
	t.ExtendBaseWidget(t)
	return t
}

// SetRows replaces the table contents.
func (t *PriceTable) SetRows(rows []presenter.TableRow) {
	t.rows = rows
	t.table.ScrollToTop()
	t.table.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (t *PriceTable) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.table)
}

// cellText returns the text for a cell; out-of-range cells are empty.
func cellText(rows []presenter.TableRow, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	switch col {
	case 0:
		return fmt.Sprintf("%d", r.Index)
	case 1:
		return r.Date
	case 2:
		return r.Price
	default:
		return ""
	}
}
