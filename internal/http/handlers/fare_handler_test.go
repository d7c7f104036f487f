// README: Handler tests for fare quoting against the bundled rules.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cabfare/internal/http/handlers"
	"cabfare/internal/maps"
	"cabfare/internal/modules/pricing"
	"cabfare/internal/types"
)

// Tuesday noon, outside every time-based modifier in the bundled rules.
const offPeak = "2026-02-10T12:00:00Z"

type stubRoutes struct {
	yards float64
	err   error
	calls []string
}

func (s *stubRoutes) DistanceYards(_ context.Context, origin, destination string) (float64, error) {
	s.calls = append(s.calls, origin+"|"+destination)
	return s.yards, s.err
}

type emptySource struct{}

func (emptySource) Rules(context.Context) (*pricing.PricingRules, error) {
	return nil, pricing.ErrRulesNotFound
}

func buildTestRouter(t *testing.T, source pricing.RulesSource, routes handlers.DistanceResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if source == nil {
		fs, err := pricing.NewFileSource("")
		if err != nil {
			t.Fatal(err)
		}
		source = fs
	}
	h := handlers.NewFareHandler(pricing.NewService(source, nil, "USD"), routes)
	r := gin.New()
	r.POST("/api/fares/quote", h.Quote)
	r.POST("/api/fares/quote/vehicles", h.QuoteVehicles)
	r.GET("/api/pricing/rules", h.Rules)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type quoteResp struct {
	QuoteID     string      `json:"quote_id"`
	VehicleType string      `json:"vehicle_type"`
	Total       types.Money `json:"total"`
	Breakdown   struct {
		RulesVersion string `json:"rules_version"`
		LineItems    []struct {
			Label    string `json:"label"`
			Category string `json:"category"`
		} `json:"line_items"`
	} `json:"breakdown"`
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		wantCode  int
		wantTotal int64
	}{
		{
			name: "ten miles by sedan",
			body: map[string]any{
				"trip_type": "point_to_point", "distance": 17600, "vehicle_type": "sedan",
				"passenger_count": 1, "pickup_time": offPeak,
			},
			wantCode:  http.StatusOK,
			wantTotal: 29,
		},
		{
			name: "suv with five passengers",
			body: map[string]any{
				"trip_type": "point_to_point", "distance": 17600, "vehicle_type": "suv",
				"passenger_count": 5, "pickup_time": offPeak,
			},
			wantCode:  http.StatusOK,
			wantTotal: 43,
		},
		{
			name: "returning customer discount",
			body: map[string]any{
				"trip_type": "point_to_point", "distance": 17600, "vehicle_type": "sedan",
				"passenger_count": 1, "pickup_time": offPeak, "is_repeat_customer": true,
			},
			wantCode:  http.StatusOK,
			wantTotal: 28,
		},
		{
			name:     "missing trip type",
			body:     map[string]any{"distance": 100},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing distance",
			body:     map[string]any{"trip_type": "point_to_point"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "disabled trip type",
			body:     map[string]any{"trip_type": "hourly", "distance": 100},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "addresses without a maps client",
			body:     map[string]any{"trip_type": "point_to_point", "origin": "JFK", "destination": "Midtown"},
			wantCode: http.StatusBadRequest,
		},
	}

	r := buildTestRouter(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/fares/quote", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp quoteResp
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Total.Amount != tt.wantTotal || resp.Total.Currency != "USD" {
				t.Errorf("total = %+v, want %d USD", resp.Total, tt.wantTotal)
			}
			if resp.QuoteID == "" || resp.Breakdown.RulesVersion == "" || len(resp.Breakdown.LineItems) == 0 {
				t.Errorf("incomplete quote: %s", w.Body.String())
			}
		})
	}
}

func TestQuote_DistanceResolution(t *testing.T) {
	t.Run("addresses use the route service", func(t *testing.T) {
		routes := &stubRoutes{yards: 17600}
		r := buildTestRouter(t, nil, routes)
		w := doRequest(r, http.MethodPost, "/api/fares/quote", map[string]any{
			"trip_type": "point_to_point", "origin": "JFK", "destination": "Midtown",
			"vehicle_type": "sedan", "passenger_count": 1, "pickup_time": offPeak,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if len(routes.calls) != 1 || routes.calls[0] != "JFK|Midtown" {
			t.Errorf("route calls = %v", routes.calls)
		}
	})

	t.Run("coordinates use the route service when configured", func(t *testing.T) {
		routes := &stubRoutes{yards: 17600}
		r := buildTestRouter(t, nil, routes)
		w := doRequest(r, http.MethodPost, "/api/fares/quote", map[string]any{
			"trip_type": "point_to_point",
			"pickup":    map[string]float64{"lat": 40.5, "lng": -73.25},
			"dropoff":   map[string]float64{"lat": 40.75, "lng": -73.5},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if len(routes.calls) != 1 || routes.calls[0] != "40.5,-73.25|40.75,-73.5" {
			t.Errorf("route calls = %v", routes.calls)
		}
	})

	t.Run("no route", func(t *testing.T) {
		r := buildTestRouter(t, nil, &stubRoutes{err: maps.ErrNoRoute})
		w := doRequest(r, http.MethodPost, "/api/fares/quote", map[string]any{
			"trip_type": "point_to_point", "origin": "Atlantis", "destination": "Midtown",
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})

	t.Run("maps failure", func(t *testing.T) {
		r := buildTestRouter(t, nil, &stubRoutes{err: errors.New("quota exceeded")})
		w := doRequest(r, http.MethodPost, "/api/fares/quote", map[string]any{
			"trip_type": "point_to_point", "origin": "JFK", "destination": "Midtown",
		})
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})

	t.Run("coordinates fall back to straight line", func(t *testing.T) {
		r := buildTestRouter(t, nil, nil)
		// one degree of latitude is about 121,600 yards, 691 units at 0.25
		w := doRequest(r, http.MethodPost, "/api/fares/quote", map[string]any{
			"trip_type": "point_to_point", "vehicle_type": "sedan", "passenger_count": 1,
			"pickup_time": offPeak,
			"pickup":      map[string]float64{"lat": 0, "lng": 0},
			"dropoff":     map[string]float64{"lat": 1, "lng": 0},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp quoteResp
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Total.Amount < 170 || resp.Total.Amount > 180 {
			t.Errorf("total = %d, want ~176", resp.Total.Amount)
		}
	})
}

func TestQuoteVehicles(t *testing.T) {
	r := buildTestRouter(t, nil, nil)
	w := doRequest(r, http.MethodPost, "/api/fares/quote/vehicles", map[string]any{
		"trip_type": "point_to_point", "distance": 17600, "passenger_count": 1, "pickup_time": offPeak,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Quotes []quoteResp `json:"quotes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	want := []struct {
		vehicle string
		total   int64
	}{{"sedan", 29}, {"suv", 39}, {"luxury", 40}, {"van", 44}}
	if len(resp.Quotes) != len(want) {
		t.Fatalf("got %d quotes, want %d", len(resp.Quotes), len(want))
	}
	for i, q := range resp.Quotes {
		if q.VehicleType != want[i].vehicle || q.Total.Amount != want[i].total {
			t.Errorf("quote %d = %s/%d, want %s/%d", i, q.VehicleType, q.Total.Amount, want[i].vehicle, want[i].total)
		}
	}
}

func TestRules(t *testing.T) {
	r := buildTestRouter(t, nil, nil)
	w := doRequest(r, http.MethodGet, "/api/pricing/rules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var doc pricing.PricingRules
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Version != "2026-10-default" || !doc.TripTypes["point_to_point"].Enabled {
		t.Errorf("unexpected rules document: %s", w.Body.String())
	}

	down := buildTestRouter(t, emptySource{}, nil)
	if w := doRequest(down, http.MethodGet, "/api/pricing/rules", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if w := doRequest(down, http.MethodPost, "/api/fares/quote", map[string]any{"trip_type": "point_to_point", "distance": 1}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("quote status = %d, want 503", w.Code)
	}
}
