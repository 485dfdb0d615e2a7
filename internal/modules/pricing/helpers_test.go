package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"towquote/internal/maps"
	"towquote/internal/modules/catalog"
	"towquote/internal/types"
)

const testPricing = `{
  "light_duty": {
    "tow": {
      "label": "Standard Tow", "pricing_type": "flat",
      "base_rate": 150, "mileage": 10, "includes": 0,
      "modifiers": {"weather": true, "make_model": false},
      "accident": {"hook": 200, "includes": 5},
      "rules": [{"condition": "winch", "addon_rate": 175}]
    },
    "recovery": {
      "label": "Accident Recovery", "pricing_type": "flat",
      "base_rate": 150, "mileage": 10, "includes": 0,
      "modifiers": {},
      "accident": {"mileage": 4},
      "rules": [{"condition": "winch", "addon_rate": 175}]
    },
    "winch": {
      "label": "Winch Out", "pricing_type": "flat",
      "base_rate": 80, "mileage": 0, "includes": 0,
      "modifiers": {}, "rules": []
    },
    "glass": {
      "label": "Window Cover", "pricing_type": "per_unit", "base_rate": 0,
      "units": {"side": {"label": "Side Window", "price": 20}, "rear": 35},
      "modifiers": {}, "rules": []
    },
    "wait": {
      "label": "Wait Time", "pricing_type": "time_based", "base_rate": 0,
      "includes_time": 0, "increment_minutes": 30, "rate_per_increment": 40,
      "modifiers": {}, "rules": []
    },
    "lockout": {
      "label": "Lockout", "pricing_type": "fixed", "base_rate": 75,
      "modifiers": {}, "rules": []
    },
    "stacked": {
      "label": "Roadside Recovery", "pricing_type": "flat",
      "base_rate": 100, "mileage": 0, "includes": 0,
      "modifiers": {"make_model": true, "lane": true, "weather": true, "time_of_day": true, "truck_utilization": true},
      "rules": []
    }
  }
}`

const testModifiers = `{
  "bucket_mileage_pricing": {
    "mode": "pattern",
    "pattern": {"free_miles": 5, "start": 6, "first_step": 5, "step_growth": 5, "max_miles": 50}
  },
  "vehicle_location": {
    "Highway": {"label": "Highway", "lanes": {"Left Lane": {"label": "Left Lane", "upcharge": 0.3}}}
  },
  "weather": {
    "rain": {"label": "Rain", "upcharge": 0.05},
    "snow": {"label": "Snow", "upcharge": 0.4}
  },
  "time_of_day": {
    "evening": {"start": "18:00", "end": "23:59", "upcharge": 0.1},
    "late": {"start": "20:00", "end": "23:59", "upcharge": 0.5}
  },
  "truck_utilization": 0.2,
  "subtotal_upcharge_bands": [
    {"label": "small", "min": 0, "max": 200, "max_upcharge": 0.3},
    {"label": "medium", "min": 200.01, "max": 500, "max_upcharge": 0.25}
  ]
}`

const testVehicles = `{
  "Tesla": {"label": "Tesla", "models": {"Cybertruck": {"label": "Cybertruck", "car_type": "ev_pickup", "upcharge_percentage": 0.2}}}
}`

var noon = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func testSource() *catalog.MemorySource {
	return catalog.NewMemorySource(map[string][]byte{
		catalog.DocPricing:   []byte(testPricing),
		catalog.DocModifiers: []byte(testModifiers),
		catalog.DocVehicles:  []byte(testVehicles),
	})
}

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewLoader(testSource()).Load(context.Background())
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return c
}

type stubDistance struct {
	trip  maps.Trip
	err   error
	calls int
}

func (s *stubDistance) Distance(_ context.Context, _, _ string) (maps.Trip, error) {
	s.calls++
	return s.trip, s.err
}

func newTestService(dist DistanceProvider) *Service {
	return NewService(catalog.NewLoader(testSource()), dist, WithClock(func() time.Time { return noon }))
}

func milesPtr(v float64) *float64 { return &v }

func assertMoney(t *testing.T, name string, got types.Money, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
