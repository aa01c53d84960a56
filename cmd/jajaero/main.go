// Jajaero - Construction Material Price Prediction
//
// A desktop client that lets a user pick a construction material and a
// region, requests a monthly price forecast from the prediction service and
// shows it as a table or a chart.
//
// Build:
//   go build -o jajaero ./cmd/jajaero
//
// Configuration (environment or .env):
//   JAJAERO_API_URL       prediction service base URL (default http://localhost:5000/api)
//   JAJAERO_TIMEOUT_MS    request timeout in milliseconds (default 120000)
//   JAJAERO_CATALOG_FILE  load the material catalog from a CSV, XLSX or JSON file
//   JAJAERO_LOG_LEVEL     debug, info, warn or error
//   JAJAERO_CONFIG_PATH   preferences file (default ~/.jajaero/config.json)
//   JAJAERO_FONT_FILE     TrueType font with Hangul glyphs for charts and PDF reports

package main

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/jajaero/internal/config"
	"github.com/piwi3910/jajaero/internal/controller"
	"github.com/piwi3910/jajaero/internal/fonts"
	"github.com/piwi3910/jajaero/internal/importer"
	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
	"github.com/piwi3910/jajaero/internal/predict"
	"github.com/piwi3910/jajaero/internal/settings"
	"github.com/piwi3910/jajaero/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Errorf("config: %v", err)
		os.Exit(1)
	}
	if !logging.SetLevel(cfg.LogLevel) {
		logging.Warnf("config: unknown log level %q, using info", cfg.LogLevel)
	}

	prefsPath := cfg.ConfigPath
	if prefsPath == "" {
		prefsPath = settings.DefaultConfigPath()
	}
	prefs, err := settings.Load(prefsPath)
	if err != nil {
		logging.Warnf("settings: %v; using defaults", err)
		prefs = model.DefaultAppConfig()
	}

	client := predict.NewClient(cfg.APIBaseURL, cfg.Timeout())
	var source controller.CatalogSource = client
	if cfg.CatalogFile != "" {
		logging.Infof("catalog: using local file %s", cfg.CatalogFile)
		source = importer.FileSource{Path: cfg.CatalogFile}
	}
	logging.Infof("predict: service at %s (timeout %s)", cfg.APIBaseURL, cfg.Timeout())

	font, err := fonts.Find(cfg.FontFile)
	if err != nil {
		logging.Warnf("fonts: %v; Korean text in charts and PDF reports will not render", err)
	} else {
		logging.Infof("fonts: using %s", font.Path)
	}

	application := app.NewWithID("com.piwi3910.jajaero")
	window := application.NewWindow("Jajaero - Material Price Prediction")

	appUI := ui.NewApp(application, window, source, client, prefs, prefsPath, font)
	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1100, 720))
	window.CenterOnScreen()
	appUI.Start()
	window.ShowAndRun()
}
