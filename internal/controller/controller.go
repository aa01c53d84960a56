// Package controller owns the material/region selection and drives the
// prediction request lifecycle.
//
// A SelectionController is not safe for concurrent use. Every method, and every
// listener it invokes, runs on the goroutine that owns it (the UI event
// goroutine in the application). Network calls run in the background and hand
// their continuation back through the Dispatcher.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
)

var (
	// ErrPending is returned by Submit while a request is already outstanding.
	ErrPending = errors.New("a prediction request is already pending")
	// ErrCatalogLoaded is returned by ReloadCatalog once a catalog is in place.
	ErrCatalogLoaded = errors.New("catalog already loaded")
)

// ValidationError reports which selection fields were empty at submit time.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("select a %s before requesting a prediction", strings.Join(e.Missing, " and "))
}

// CatalogSource provides the material catalog.
type CatalogSource interface {
	GetCatalog(ctx context.Context) (model.Catalog, error)
}

// Predictor requests a prediction series for a selection.
type Predictor interface {
	Predict(ctx context.Context, sel model.Selection) (*model.PredictionResult, error)
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(n model.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(model.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n model.Notification) { f(n) }

// Dispatcher runs fn on the goroutine that owns the controller.
type Dispatcher func(fn func())

// SelectionController holds the selection state and the request status.
type SelectionController struct {
	source    CatalogSource
	predictor Predictor
	notifier  Notifier
	dispatch  Dispatcher
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	catalog        model.Catalog
	catalogLoading bool
	selection      model.Selection
	regions        []string
	status         model.RequestStatus
	result         *model.PredictionResult
	completed      bool

	statusListeners    []func(model.RequestStatus)
	selectionListeners []func(model.Selection, []string)
	resultListeners    []func(*model.PredictionResult)
	catalogListeners   []func(model.Catalog)
}

// New creates a controller. A nil notifier discards notifications; a nil
// dispatcher runs continuations directly on the background goroutine, which
// is only appropriate when nothing else touches the controller concurrently.
func New(source CatalogSource, predictor Predictor, notifier Notifier, dispatch Dispatcher) *SelectionController {
	if notifier == nil {
		notifier = NotifierFunc(func(model.Notification) {})
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SelectionController{
		source:    source,
		predictor: predictor,
		notifier:  notifier,
		dispatch:  dispatch,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		catalog:   model.Catalog{},
		regions:   []string{},
		status:    model.StatusIdle,
	}
}

// Close abandons any in-flight request. Continuations arriving afterwards
// are dropped.
func (c *SelectionController) Close() {
	c.cancel()
}

// OnStatusChange registers a listener for RequestStatus transitions.
func (c *SelectionController) OnStatusChange(fn func(model.RequestStatus)) {
	c.statusListeners = append(c.statusListeners, fn)
}

// OnSelectionChange registers a listener for selection changes. The listener
// also receives the regions allowed for the selected material.
func (c *SelectionController) OnSelectionChange(fn func(model.Selection, []string)) {
	c.selectionListeners = append(c.selectionListeners, fn)
}

// OnResult registers a listener for each new successful result.
func (c *SelectionController) OnResult(fn func(*model.PredictionResult)) {
	c.resultListeners = append(c.resultListeners, fn)
}

// OnCatalogChange registers a listener called once the catalog is loaded.
func (c *SelectionController) OnCatalogChange(fn func(model.Catalog)) {
	c.catalogListeners = append(c.catalogListeners, fn)
}

// Catalog returns the loaded catalog, empty until loading succeeds.
func (c *SelectionController) Catalog() model.Catalog { return c.catalog }

// CatalogLoading reports whether a catalog fetch is in progress.
func (c *SelectionController) CatalogLoading() bool { return c.catalogLoading }

// Selection returns the current selection.
func (c *SelectionController) Selection() model.Selection { return c.selection }

// Regions returns the regions allowed for the selected material.
func (c *SelectionController) Regions() []string {
	out := make([]string, len(c.regions))
	copy(out, c.regions)
	return out
}

// Status returns the current request status.
func (c *SelectionController) Status() model.RequestStatus { return c.status }

// Result returns the most recent successful result, or nil.
func (c *SelectionController) Result() *model.PredictionResult { return c.result }

// Completed reports whether any submission has resolved yet.
func (c *SelectionController) Completed() bool { return c.completed }

// LoadCatalog fetches the catalog in the background. It is a no-op while a
// fetch is running or once a catalog is loaded.
func (c *SelectionController) LoadCatalog() {
	if c.catalogLoading || len(c.catalog) > 0 || c.source == nil {
		return
	}
	c.catalogLoading = true
	ctx := c.ctx
	go func() {
		catalog, err := c.source.GetCatalog(ctx)
		c.dispatch(func() { c.applyCatalog(catalog, err) })
	}()
}

// ReloadCatalog retries a failed catalog load. It is only allowed while the
// catalog is still empty.
func (c *SelectionController) ReloadCatalog() error {
	if len(c.catalog) > 0 {
		return ErrCatalogLoaded
	}
	c.LoadCatalog()
	return nil
}

func (c *SelectionController) applyCatalog(catalog model.Catalog, err error) {
	c.catalogLoading = false
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		logging.Errorf("catalog: load failed: %v", err)
		c.notify(model.NotifyCatalogUnavailable, fmt.Sprintf("Material catalog unavailable: %v", err))
		return
	}
	if len(catalog) == 0 {
		logging.Warnf("catalog: service returned no materials")
		c.notify(model.NotifyCatalogUnavailable, "Material catalog is empty")
		return
	}
	c.catalog = catalog
	logging.Infof("catalog: loaded %d materials", len(catalog))
	for _, fn := range c.catalogListeners {
		fn(catalog)
	}
	if c.selection.Material != "" {
		c.regions = c.catalog.Regions(c.selection.Material)
		c.emitSelection()
	}
}

// SetMaterial selects a material, recomputes the allowed regions and clears
// the region. Unknown materials yield no regions.
func (c *SelectionController) SetMaterial(name string) {
	prev := c.selection
	c.selection = model.Selection{Material: name}
	c.regions = c.catalog.Regions(name)
	if prev != c.selection {
		c.emitSelection()
	}
}

// SetRegion sets the region. The value is not checked against the catalog.
func (c *SelectionController) SetRegion(name string) {
	if c.selection.Region == name {
		return
	}
	if name != "" && !c.catalog.HasRegion(c.selection.Material, name) {
		logging.Debugf("controller: region %q is not listed for material %q", name, c.selection.Material)
	}
	c.selection.Region = name
	c.emitSelection()
}

// Submit starts a prediction request for the current selection. It returns
// ErrPending while a request is outstanding and a *ValidationError when the
// selection is incomplete; neither changes the status.
func (c *SelectionController) Submit() error {
	if c.status == model.StatusPending {
		return ErrPending
	}
	if !c.selection.Complete() {
		verr := &ValidationError{Missing: c.selection.Missing()}
		c.notify(model.NotifyValidationBlocked, "Material and region are required")
		return verr
	}
	if c.predictor == nil {
		return errors.New("no predictor configured")
	}

	sel := c.selection
	ctx := c.ctx
	c.setStatus(model.StatusPending)
	c.notify(model.NotifySubmissionPending, fmt.Sprintf("Predicting %s prices for %s...", sel.Material, sel.Region))

	go func() {
		result, err := c.predictor.Predict(ctx, sel)
		c.dispatch(func() { c.resolve(sel, result, err) })
	}()
	return nil
}

func (c *SelectionController) resolve(sel model.Selection, result *model.PredictionResult, err error) {
	if c.ctx.Err() != nil {
		return
	}
	c.completed = true
	if err != nil {
		logging.Warnf("controller: prediction for %s/%s failed: %v", sel.Material, sel.Region, err)
		c.setStatus(model.StatusFailed)
		c.notify(model.NotifySubmissionFailed, fmt.Sprintf("Prediction failed: %v", err))
		return
	}
	if result == nil {
		result = &model.PredictionResult{Selection: sel, ReceivedAt: c.now()}
	}
	c.result = result
	c.setStatus(model.StatusSucceeded)
	for _, fn := range c.resultListeners {
		fn(result)
	}
	c.notify(model.NotifySubmissionSucceeded, fmt.Sprintf("Prediction ready: %d points for %s in %s", result.Len(), sel.Material, sel.Region))
}

func (c *SelectionController) setStatus(s model.RequestStatus) {
	if c.status == s {
		return
	}
	logging.Debugf("controller: status %s -> %s", c.status, s)
	c.status = s
	for _, fn := range c.statusListeners {
		fn(s)
	}
}

func (c *SelectionController) emitSelection() {
	for _, fn := range c.selectionListeners {
		fn(c.selection, c.Regions())
	}
}

func (c *SelectionController) notify(kind model.NotificationKind, msg string) {
	c.notifier.Notify(model.Notification{Kind: kind, Message: msg, At: c.now()})
}
