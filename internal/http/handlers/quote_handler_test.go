// README: Handler tests for quotes, the catalog form and address suggestions.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "towquote/internal/errors"
	"towquote/internal/http/handlers"
	"towquote/internal/maps"
	"towquote/internal/modules/catalog"
	"towquote/internal/modules/pricing"
)

type stubPlaces struct {
	out []maps.Suggestion
	err error
}

func (s *stubPlaces) Suggest(_ context.Context, _ string) ([]maps.Suggestion, error) {
	return s.out, s.err
}

type downSource struct{}

func (downSource) Document(_ context.Context, name string) ([]byte, error) {
	return nil, apperrors.Upstream(errors.New("connection refused"), "read %s from postgres", name)
}

// buildTestRouter wires a minimal Gin engine around a pricing service reading src.
func buildTestRouter(src catalog.Source, places handlers.PlaceSuggester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := pricing.NewService(catalog.NewLoader(src), nil)
	r := gin.New()
	qh := handlers.NewQuoteHandler(svc, 5*time.Second)
	r.POST("/api/quotes", qh.Create)
	r.POST("/api/quotes/receipt", qh.Receipt)
	r.GET("/api/catalog", handlers.NewCatalogHandler(svc.Catalog()).Form)
	r.GET("/api/places/suggest", handlers.NewPlacesHandler(places, time.Second).Suggest)
	return r
}

func sampleRouter() *gin.Engine {
	return buildTestRouter(catalog.NewFileSource("../../../data"), nil)
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pinnedQuote() map[string]any {
	return map[string]any{
		"tow_type":        "light_duty",
		"services":        []string{"tow"},
		"source":          "Dallas, TX",
		"destination":     "Plano, TX",
		"distance_miles":  12,
		"local_time":      "2026-02-10T12:00:00Z",
		"timezone_offset": 0,
	}
}

func TestQuoteHandler_Create(t *testing.T) {
	w := doRequest(sampleRouter(), http.MethodPost, "/api/quotes", pinnedQuote())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got struct {
		QuoteID       string `json:"quote_id"`
		StandardTotal string `json:"standard_total"`
		FinalTotal    string `json:"final_total"`
		Breakdown     string `json:"breakdown"`
		Distance      struct {
			BucketMiles float64 `json:"bucket_miles"`
		} `json:"distance"`
		Services []struct {
			Service         string `json:"service"`
			MileageUpcharge string `json:"mileage_upcharge"`
		} `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.StandardTotal != "270" || got.FinalTotal != "350" {
		t.Errorf("totals = %s / %s, want 270 / 350", got.StandardTotal, got.FinalTotal)
	}
	if got.Distance.BucketMiles != 20 || len(got.Services) != 1 || got.Services[0].MileageUpcharge != "80" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if got.QuoteID == "" || !strings.Contains(got.Breakdown, "Standard Tow") {
		t.Errorf("missing quote id or breakdown")
	}
}

func TestQuoteHandler_Receipt(t *testing.T) {
	w := doRequest(sampleRouter(), http.MethodPost, "/api/quotes/receipt", pinnedQuote())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if w.Header().Get("X-Quote-Id") == "" {
		t.Error("missing X-Quote-Id")
	}
	if !strings.HasSuffix(w.Body.String(), "$350") {
		t.Errorf("receipt:\n%s", w.Body.String())
	}
}

func TestQuoteHandler_Errors(t *testing.T) {
	missingDocs := catalog.NewMemorySource(nil)

	tests := []struct {
		name       string
		router     *gin.Engine
		body       any
		wantStatus int
		wantField  string
	}{
		{"malformed json", sampleRouter(), `{"tow_type":`, http.StatusBadRequest, ""},
		{"unknown tow type", sampleRouter(), map[string]any{"tow_type": "space", "services": []string{"tow"}, "distance_miles": 3}, http.StatusBadRequest, "tow_type"},
		{"unknown service", sampleRouter(), map[string]any{"tow_type": "light_duty", "services": []string{"teleport"}, "distance_miles": 3}, http.StatusBadRequest, "services"},
		{"missing destination", sampleRouter(), map[string]any{"tow_type": "light_duty", "services": []string{"tow"}, "source": "Dallas"}, http.StatusBadRequest, "destination"},
		{"no distance provider", sampleRouter(), map[string]any{"tow_type": "light_duty", "services": []string{"tow"}, "source": "Dallas", "destination": "Plano"}, http.StatusBadGateway, ""},
		{"catalog unavailable", buildTestRouter(missingDocs, nil), pinnedQuote(), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(tt.router, http.MethodPost, "/api/quotes", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
				Field string `json:"field"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" || resp.Field != tt.wantField {
				t.Errorf("response = %+v, want field %q", resp, tt.wantField)
			}
		})
	}
}

func TestQuoteHandler_UpstreamMessage(t *testing.T) {
	tests := []struct {
		name      string
		router    *gin.Engine
		body      any
		wantError string
	}{
		{"distance lookup", sampleRouter(), map[string]any{"tow_type": "light_duty", "services": []string{"tow"}, "source": "Dallas", "destination": "Plano"}, "distance lookup failed"},
		{"config store down", buildTestRouter(downSource{}, nil), pinnedQuote(), "read pricing from postgres failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(tt.router, http.MethodPost, "/api/quotes", tt.body)
			if w.Code != http.StatusBadGateway {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestCatalogHandler_Form(t *testing.T) {
	w := doRequest(sampleRouter(), http.MethodGet, "/api/catalog", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var form catalog.Form
	if err := json.Unmarshal(w.Body.Bytes(), &form); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(form.TowTypes) == 0 || form.TowTypes[0].Code != "light_duty" {
		t.Fatalf("tow types = %+v", form.TowTypes)
	}
	if first := form.TowTypes[0].Services[0]; first.Code != "tow" {
		t.Errorf("first service = %s, want tow (dropdown_rank 1)", first.Code)
	}
}

func TestPlacesHandler_Suggest(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := doRequest(sampleRouter(), http.MethodGet, "/api/places/suggest?input=main", nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", w.Code)
		}
	})

	src := catalog.NewFileSource("../../../data")
	tests := []struct {
		name       string
		places     *stubPlaces
		query      string
		wantStatus int
	}{
		{"suggestions", &stubPlaces{out: []maps.Suggestion{{Description: "100 Main St, Dallas, TX", PlaceID: "p1"}}}, "?input=100+main", http.StatusOK},
		{"empty input", &stubPlaces{}, "?input=+", http.StatusBadRequest},
		{"provider failure", &stubPlaces{err: errors.New("REQUEST_DENIED")}, "?input=main", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(buildTestRouter(src, tt.places), http.MethodGet, "/api/places/suggest"+tt.query, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && !strings.Contains(w.Body.String(), `"place_id":"p1"`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
