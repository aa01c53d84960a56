package ui

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/golang/freetype/truetype"

	"github.com/piwi3910/jajaero/internal/controller"
	"github.com/piwi3910/jajaero/internal/export"
	"github.com/piwi3910/jajaero/internal/fonts"
	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
	"github.com/piwi3910/jajaero/internal/presenter"
	"github.com/piwi3910/jajaero/internal/settings"
	"github.com/piwi3910/jajaero/internal/ui/widgets"
)

const idleHint = "Select a material and a region, then press Predict."

// App holds all application state and UI references.
type App struct {
	app       fyne.App
	window    fyne.Window
	prefs     model.AppConfig
	prefsPath string
	theme     *JajaeroTheme
	font      *fonts.Font

	ctrl      *controller.SelectionController
	presenter *presenter.ResultPresenter
	activity  *ActivityLog

	// UI references for dynamic updates
	materialSelect *widget.Select
	regionSelect   *widget.Select
	predictBtn     *ttwidget.Button
	tableBtn       *ttwidget.Button
	chartBtn       *ttwidget.Button
	statusLabel    *widget.Label
	resultTitle    *widget.Label
	loadingPanel   *fyne.Container
	loadingHint    *widget.Label
	progress       *widget.ProgressBarInfinite
	priceTable     *widgets.PriceTable
	priceChart     *widgets.PriceChart
	charted        *model.PredictionResult

	mainMenu   *fyne.MainMenu
	reloadItem *fyne.MenuItem
	tableItem  *fyne.MenuItem
	chartItem  *fyne.MenuItem
}

// NewApp creates the application UI around a catalog source and a predictor.
// Preferences are saved back to prefsPath when they change. font renders
// Korean text in charts and PDF reports; it may be nil.
func NewApp(application fyne.App, window fyne.Window, source controller.CatalogSource, predictor controller.Predictor, prefs model.AppConfig, prefsPath string, font *fonts.Font) *App {
	a := &App{
		app:       application,
		window:    window,
		prefs:     prefs,
		prefsPath: prefsPath,
		font:      font,
		theme:     NewJajaeroTheme(prefs.Theme),
		presenter: presenter.New(prefs.ViewMode()),
		activity:  NewActivityLog(),
	}
	a.ctrl = controller.New(source, predictor, a, fyne.Do)
	application.Settings().SetTheme(a.theme)
	return a
}

// Start loads the catalog. Call it once the window content is built.
func (a *App) Start() {
	a.setStatus("Loading material catalog...")
	a.ctrl.LoadCatalog()
	a.refreshMenus()
}

// Close abandons any in-flight request.
func (a *App) Close() {
	a.ctrl.Close()
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	// File Menu
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export PDF Report...", func() {
			a.exportResult("pdf")
		}),
		fyne.NewMenuItem("Export Excel Workbook...", func() {
			a.exportResult("xlsx")
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Back Up Preferences...", func() {
			a.backupPreferences()
		}),
		fyne.NewMenuItem("Restore Preferences...", func() {
			a.restorePreferences()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	// Catalog Menu
	a.reloadItem = fyne.NewMenuItem("Reload Catalog", func() {
		if err := a.ctrl.ReloadCatalog(); err != nil {
			dialog.ShowInformation("Catalog", err.Error(), a.window)
			return
		}
		a.setStatus("Reloading material catalog...")
		a.refreshMenus()
	})
	catalogMenu := fyne.NewMenu("Catalog", a.reloadItem)

	// View Menu
	a.tableItem = fyne.NewMenuItem("Table", func() { a.presenter.SetViewMode(model.ViewTable) })
	a.chartItem = fyne.NewMenuItem("Chart", func() { a.presenter.SetViewMode(model.ViewChart) })
	viewMenu := fyne.NewMenu("View", a.tableItem, a.chartItem)

	// Help Menu
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Activity Log", func() {
			a.showActivityDialog()
		}),
		fyne.NewMenuItem("About", func() {
			a.showAboutDialog()
		}),
	)

	a.mainMenu = fyne.NewMainMenu(fileMenu, catalogMenu, viewMenu, helpMenu)
	a.window.SetMainMenu(a.mainMenu)
	a.refreshMenus()
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About Jajaero",
		"Jajaero - Construction Material Price Prediction\n\n"+
			"Pick a material and a region to request a monthly\n"+
			"price forecast from the prediction service.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

func (a *App) showActivityDialog() {
	entries := a.activity.Entries()
	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(FormatEntry(entries[id]))
		},
	)
	empty := widget.NewLabel("No activity yet.")
	content := container.NewStack(list, empty)
	if len(entries) == 0 {
		list.Hide()
	} else {
		empty.Hide()
	}

	d := dialog.NewCustomWithoutButtons(fmt.Sprintf("Activity Log (%d)", a.activity.Len()), content, a.window)
	clearBtn := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), nil)
	clearBtn.OnTapped = func() {
		a.activity.Clear()
		entries = nil
		list.Refresh()
		list.Hide()
		empty.Show()
		clearBtn.Disable()
	}
	if len(entries) == 0 {
		clearBtn.Disable()
	}
	d.SetButtons([]fyne.CanvasObject{
		clearBtn,
		widget.NewButton("Close", d.Hide),
	})
	d.Resize(fyne.NewSize(560, 400))
	d.Show()
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	top := a.buildSelectionPanel()
	result := a.buildResultPanel()
	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Truncation = fyne.TextTruncateEllipsis

	a.window.SetOnClosed(a.Close)
	a.wireController()
	a.refreshResult()

	return container.NewBorder(top, a.statusLabel, nil, nil, result)
}

// ─── Selection Panel ───────────────────────────────────────

func (a *App) buildSelectionPanel() fyne.CanvasObject {
	a.materialSelect = widget.NewSelect(nil, func(name string) {
		a.ctrl.SetMaterial(name)
	})
	a.materialSelect.PlaceHolder = "Select material"
	a.materialSelect.Disable()

	a.regionSelect = widget.NewSelect(nil, func(name string) {
		a.ctrl.SetRegion(name)
	})
	a.regionSelect.PlaceHolder = "Select region"
	a.regionSelect.Disable()

	a.predictBtn = newButtonWithTooltip("Predict", theme.MediaPlayIcon(), "Request a price prediction", func() {
		a.submit()
	})
	a.predictBtn.Importance = widget.HighImportance

	a.tableBtn = newIconButtonWithTooltip(theme.ListIcon(), "Show as table", func() {
		a.presenter.SetViewMode(model.ViewTable)
	})
	a.chartBtn = newIconButtonWithTooltip(theme.GridIcon(), "Show as chart", func() {
		a.presenter.SetViewMode(model.ViewChart)
	})
	a.refreshViewToggle()

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Material"), a.materialSelect,
		widget.NewLabel("Region"), a.regionSelect,
	)
	actions := container.NewHBox(a.predictBtn, layout.NewSpacer(), a.tableBtn, a.chartBtn)
	return container.NewVBox(form, actions, widget.NewSeparator())
}

// ─── Result Panel ──────────────────────────────────────────

func (a *App) buildResultPanel() fyne.CanvasObject {
	a.resultTitle = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	a.progress = widget.NewProgressBarInfinite()
	a.loadingHint = widget.NewLabelWithStyle(idleHint, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	a.loadingPanel = container.NewCenter(container.NewVBox(a.progress, a.loadingHint))

	a.priceTable = widgets.NewPriceTable()
	var chartFont *truetype.Font
	if a.font != nil {
		chartFont = a.font.TTF
	}
	a.priceChart = widgets.NewPriceChart(chartFont)

	stack := container.NewStack(a.loadingPanel, a.priceTable, a.priceChart)
	return container.NewBorder(a.resultTitle, nil, nil, nil, stack)
}

func (a *App) wireController() {
	a.ctrl.OnCatalogChange(func(catalog model.Catalog) {
		a.materialSelect.Options = catalog.Materials()
		a.materialSelect.Enable()
		a.materialSelect.Refresh()
		a.setStatus(fmt.Sprintf("Loaded %d materials.", len(catalog)))
		a.refreshMenus()
	})
	a.ctrl.OnSelectionChange(func(sel model.Selection, regions []string) {
		a.regionSelect.Options = regions
		if len(regions) > 0 {
			a.regionSelect.Enable()
		} else {
			a.regionSelect.Disable()
		}
		if a.regionSelect.Selected != sel.Region {
			if sel.Region == "" {
				a.regionSelect.ClearSelected()
			} else {
				a.regionSelect.SetSelected(sel.Region)
			}
		}
		a.regionSelect.Refresh()
	})
	a.ctrl.OnStatusChange(func(model.RequestStatus) {
		a.refreshResult()
	})
	a.ctrl.OnResult(func(*model.PredictionResult) {
		a.refreshResult()
	})
	a.presenter.OnViewModeChange(func(mode model.ViewMode) {
		a.refreshViewToggle()
		a.refreshMenus()
		a.refreshResult()
		a.prefs.DefaultViewMode = strings.ToLower(mode.String())
		a.savePrefs()
	})
}

func (a *App) submit() {
	if err := a.ctrl.Submit(); err != nil {
		// The controller has already notified about validation failures.
		logging.Debugf("ui: submit rejected: %v", err)
	}
}

// refreshResult shows the loading panel, the table or the chart depending on
// the request status and the view mode.
func (a *App) refreshResult() {
	status := a.ctrl.Status()
	display := a.presenter.Display(status, a.ctrl.Completed())
	result := a.ctrl.Result()

	if status == model.StatusPending {
		a.predictBtn.Disable()
	} else {
		a.predictBtn.Enable()
	}

	switch display {
	case presenter.DisplayLoading:
		a.resultTitle.SetText("")
		if status == model.StatusPending {
			sel := a.ctrl.Selection()
			a.loadingHint.SetText(fmt.Sprintf("Predicting %s prices for %s...", sel.Material, sel.Region))
		} else {
			a.loadingHint.SetText(idleHint)
		}
		a.progress.Start()
		a.loadingPanel.Show()
		a.priceTable.Hide()
		a.priceChart.Hide()
		return
	case presenter.DisplayTable:
		a.priceTable.SetRows(a.presenter.Projection(result).Table)
		a.priceTable.Show()
		a.priceChart.Hide()
	case presenter.DisplayChart:
		if a.charted != result || result == nil {
			a.priceChart.SetView(a.presenter.Projection(result).Chart, resultTitle(result))
			a.charted = result
		}
		a.priceChart.Show()
		a.priceTable.Hide()
	}
	a.progress.Stop()
	a.loadingPanel.Hide()
	a.resultTitle.SetText(resultTitle(result))
}

func resultTitle(result *model.PredictionResult) string {
	if result == nil {
		return "No prediction available"
	}
	return fmt.Sprintf("%s / %s (%d points)", result.Selection.Material, result.Selection.Region, result.Len())
}

func (a *App) refreshViewToggle() {
	if a.presenter.ViewMode() == model.ViewChart {
		a.tableBtn.Importance = widget.MediumImportance
		a.chartBtn.Importance = widget.HighImportance
	} else {
		a.tableBtn.Importance = widget.HighImportance
		a.chartBtn.Importance = widget.MediumImportance
	}
	a.tableBtn.Refresh()
	a.chartBtn.Refresh()
}

func (a *App) refreshMenus() {
	if a.mainMenu == nil {
		return
	}
	a.reloadItem.Disabled = len(a.ctrl.Catalog()) > 0 || a.ctrl.CatalogLoading()
	a.tableItem.Checked = a.presenter.ViewMode() == model.ViewTable
	a.chartItem.Checked = a.presenter.ViewMode() == model.ViewChart
	a.mainMenu.Refresh()
}

func (a *App) setStatus(msg string) {
	if a.statusLabel != nil {
		a.statusLabel.SetText(msg)
	}
}

// Notify implements controller.Notifier. It runs on the UI goroutine.
// Every notification goes to the status bar and the activity log; error
// kinds also open a dialog unless the same message was just shown.
func (a *App) Notify(n model.Notification) {
	alert := needsDialog(a.activity, n)
	a.activity.Push(n)
	a.setStatus(n.Message)
	if n.Kind == model.NotifyCatalogUnavailable {
		a.refreshMenus()
	}
	if !alert {
		return
	}
	switch n.Kind {
	case model.NotifyValidationBlocked:
		dialog.ShowInformation("Selection required", n.Message, a.window)
	case model.NotifyCatalogUnavailable:
		dialog.ShowError(fmt.Errorf("%s\n\nUse Catalog > Reload Catalog to try again.", n.Message), a.window)
	default:
		dialog.ShowError(fmt.Errorf("%s", n.Message), a.window)
	}
}

// ─── Export ────────────────────────────────────────────────

func (a *App) exportResult(format string) {
	result := a.ctrl.Result()
	if result == nil {
		dialog.ShowInformation("No results", "Request a prediction before exporting.", a.window)
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if format == "pdf" {
			err = export.ExportPDF(path, result, a.font)
		} else {
			err = export.ExportXLSX(path, result)
		}
		if err != nil {
			logging.Errorf("export: %s failed: %v", path, err)
			dialog.ShowError(err, a.window)
			return
		}
		logging.Infof("export: wrote %s", path)
		a.prefs.AddRecentExport(path)
		a.savePrefs()
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(ExportFileName(result.Selection, format))
	d.Show()
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// ExportFileName suggests a file name such as "MDF_Seoul_prediction.pdf".
func ExportFileName(sel model.Selection, ext string) string {
	parts := []string{}
	for _, p := range []string{sel.Material, sel.Region} {
		if p = strings.Trim(unsafeFileChars.ReplaceAllString(p, "_"), "_"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "prediction")
	return filepath.Clean(strings.Join(parts, "_") + "." + ext)
}

// ─── Preferences ───────────────────────────────────────────

func (a *App) backupPreferences() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := settings.ExportBackup(path, a.prefs, time.Now()); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Backup Complete", fmt.Sprintf("Preferences saved to %s", path), a.window)
	}, a.window)
	d.SetFileName("jajaero-preferences.json")
	d.Show()
}

func (a *App) restorePreferences() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		backup, err := settings.ImportBackup(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.applyPreferences(backup.Preferences)
		dialog.ShowInformation("Restore Complete", "Preferences restored.", a.window)
	}, a.window)
}

// applyPreferences switches theme and view mode to prefs and persists them.
func (a *App) applyPreferences(prefs model.AppConfig) {
	a.prefs = prefs
	a.theme.SetPreference(prefs.Theme)
	a.app.Settings().SetTheme(a.theme)
	a.presenter.SetViewMode(prefs.ViewMode())
	a.savePrefs()
}

func (a *App) savePrefs() {
	if a.prefsPath == "" {
		return
	}
	if err := settings.Save(a.prefsPath, a.prefs); err != nil {
		logging.Warnf("settings: failed to save preferences: %v", err)
	}
}
