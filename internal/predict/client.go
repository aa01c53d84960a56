// Package predict talks to the material price prediction service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// StatusError is returned when the service answers with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("prediction service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("prediction service returned status %d", e.StatusCode)
}

type predictRequest struct {
	Material string `json:"material"`
	Region   string `json:"region"`
}

type predictResponse struct {
	Predictions model.PredictionSeries `json:"predictions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client is an HTTP client for the prediction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client for the service at baseURL, e.g.
// "http://localhost:5000/api". The timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// GetCatalog fetches the material catalog.
func (c *Client) GetCatalog(ctx context.Context) (model.Catalog, error) {
	var raw map[string]model.MaterialEntry
	if err := c.doJSON(ctx, http.MethodGet, "materials", nil, uuid.NewString(), &raw); err != nil {
		return nil, err
	}
	catalog, dropped := model.NewCatalog(raw)
	if len(dropped) > 0 {
		logging.Warnf("catalog: ignoring materials without regions: %s", strings.Join(dropped, ", "))
	}
	return catalog, nil
}

// Predict requests a price prediction for the selection. A response without
// a predictions field yields an empty series.
func (c *Client) Predict(ctx context.Context, sel model.Selection) (*model.PredictionResult, error) {
	requestID := uuid.NewString()
	logging.Infof("predict: request %s material=%q region=%q", requestID, sel.Material, sel.Region)

	var resp predictResponse
	body := predictRequest{Material: sel.Material, Region: sel.Region}
	if err := c.doJSON(ctx, http.MethodPost, "predict", body, requestID, &resp); err != nil {
		logging.Warnf("predict: request %s failed: %v", requestID, err)
		return nil, err
	}

	series := resp.Predictions
	if series == nil {
		series = model.PredictionSeries{}
	}
	logging.Infof("predict: request %s returned %d points", requestID, len(series))
	return &model.PredictionResult{
		Selection:  sel,
		Series:     series,
		RequestID:  requestID,
		ReceivedAt: c.now(),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, requestID string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(data, &e) == nil {
			statusErr.Message = e.Error
		}
		return statusErr
	}

	if err := json.Unmarshal(sanitizeNonFinite(data), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
