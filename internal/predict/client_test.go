package predict

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/jajaero/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 5*time.Second)
}

func TestGetCatalog(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/materials", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"MDF": ["MDF_9T.csv", ["서울", "부산", "제주"]],
			"RoundSteelBars": ["RoundSteelBars.csv", ["서울", "전주"]],
			"Empty": ["Empty.csv", []]
		}`))
	})

	catalog, err := client.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MDF", "RoundSteelBars"}, catalog.Materials())
	assert.Equal(t, []string{"서울", "부산", "제주"}, catalog.Regions("MDF"))
	assert.Equal(t, "RoundSteelBars.csv", catalog["RoundSteelBars"].DataFile)
}

func TestGetCatalogServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GetCatalog(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestGetCatalogMalformed(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not", "an", "object"]`))
	})

	_, err := client.GetCatalog(context.Background())
	require.Error(t, err)
}

func TestPredictSendsSelection(t *testing.T) {
	var got predictRequest
	var requestID string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestID = r.Header.Get("X-Request-ID")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"predictions":[
			{"date":"2025-01-01","predicted_price":1.2},
			{"date":"2025-02-01","predicted_price":1.25}
		]}`))
	})

	sel := model.Selection{Material: "MDF", Region: "서울"}
	result, err := client.Predict(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, predictRequest{Material: "MDF", Region: "서울"}, got)
	assert.Equal(t, sel, result.Selection)
	assert.Equal(t, requestID, result.RequestID)
	assert.False(t, result.ReceivedAt.IsZero())
	require.Len(t, result.Series, 2)
	assert.Equal(t, "2025-01-01", result.Series[0].Date)
	assert.InDelta(t, 1.25, result.Series[1].PredictedPrice, 1e-9)
}

func TestPredictMissingPredictionsIsEmptySeries(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	result, err := client.Predict(context.Background(), model.Selection{Material: "MDF", Region: "서울"})
	require.NoError(t, err)
	require.NotNil(t, result.Series)
	assert.Empty(t, result.Series)
}

func TestPredictNonFiniteValues(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[
			{"date":"2025-01-01","predicted_price":NaN},
			{"date":"2025-02-01","predicted_price":-Infinity},
			{"date":"2025-03-01","predicted_price":3.5}
		]}`))
	})

	result, err := client.Predict(context.Background(), model.Selection{Material: "MDF", Region: "서울"})
	require.NoError(t, err)
	require.Len(t, result.Series, 3)
	assert.True(t, math.IsNaN(result.Series[0].PredictedPrice))
	assert.True(t, math.IsNaN(result.Series[1].PredictedPrice))
	assert.Equal(t, 3.5, result.Series[2].PredictedPrice)
}

func TestPredictErrorMessage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid material or region"}`))
	})

	_, err := client.Predict(context.Background(), model.Selection{Material: "MDF", Region: "울산"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Invalid material or region", statusErr.Message)
	assert.Contains(t, err.Error(), "Invalid material or region")
}

func TestPredictContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Predict(ctx, model.Selection{Material: "MDF", Region: "서울"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}

func TestPredictTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Predict(context.Background(), model.Selection{Material: "MDF", Region: "서울"})
	require.Error(t, err)
}
