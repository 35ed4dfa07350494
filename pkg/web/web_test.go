package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		expectedID   int64
		expectedOK   bool
		expectedBody string
	}{
		{name: "valid id", path: "/items/1000", expectedID: 1000, expectedOK: true},
		{name: "zero id", path: "/items/0", expectedID: 0, expectedOK: true},
		{name: "negative id", path: "/items/-1", expectedBody: "Invalid id: -1"},
		{name: "not a number", path: "/items/abc", expectedBody: "Invalid id: abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var gotID int64
			var gotOK bool
			mux := chi.NewRouter()
			mux.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = ParseID(w, r, testLogger())
				if gotOK {
					w.WriteHeader(http.StatusOK)
				}
			})
			rec := httptest.NewRecorder()

			// when
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			// then
			assert.Equal(t, tc.expectedOK, gotOK)
			if tc.expectedOK {
				assert.Equal(t, tc.expectedID, gotID)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedBody, body.Error)
		})
	}
}

func TestRequestIDInjector(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		var seen string
		h := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
		}))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("reuses incoming header", func(t *testing.T) {
		var seen string
		h := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")

		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "abc-123", seen)
	})
}

func TestRecoverer(t *testing.T) {
	// given
	h := Recoverer(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	// when
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestRespondJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, testLogger(), http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStructuredLogger_RouteAndLevel(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			mux := chi.NewRouter()
			mux.Use(StructuredLogger(logger))
			mux.Get("/api/v1/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})

			// when
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil))

			// then
			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tc.wantLevel, record["level"])
			assert.Equal(t, "/api/v1/products/{id}", record["route"])
			assert.Equal(t, "/api/v1/products/42", record["path"])
			assert.EqualValues(t, tc.status, record["status"])
		})
	}
}

func TestActiveRequests(t *testing.T) {
	// given
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	activeValue := func() int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "http.server.active_requests" {
					continue
				}
				var total int64
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					total += dp.Value
				}
				return total
			}
		}
		return 0
	}

	var inFlight int64
	h := ActiveRequests(mp.Meter("test"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		inFlight = activeValue()
	}))

	// when
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, int64(1), inFlight)
	assert.Equal(t, int64(0), activeValue())
}
