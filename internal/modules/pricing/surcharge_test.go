package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"towquote/internal/modules/catalog"
)

func fractions(ups []Upcharge) map[string]string {
	out := map[string]string{}
	for _, u := range ups {
		out[u.Category] = u.Fraction.String()
	}
	return out
}

func TestResolveSurcharges(t *testing.T) {
	c := loadTestCatalog(t)
	light, _ := c.Pricing.Get("light_duty")
	stacked, _ := light.Get("stacked")
	tow, _ := light.Get("tow")

	evening := catalog.Clock(21*3600 + 30*60)

	t.Run("every category matched", func(t *testing.T) {
		got := fractions(ResolveSurcharges(stacked, c, SurchargeContext{
			Make: "Tesla", Model: "Cybertruck",
			Location: &UnsafeLocation{RoadType: "Highway", Lane: "Left Lane"},
			Weather:  "snow",
			Now:      evening,
		}))
		want := map[string]string{
			"make_model": "0.2", "vehicle_location": "0.3", "weather": "0.4",
			"time_of_day": "0.1", "truck_utilization": "0.2",
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("%s = %s, want %s", k, got[k], v)
			}
		}
	})

	t.Run("unmatched lookups are zero", func(t *testing.T) {
		got := fractions(ResolveSurcharges(stacked, c, SurchargeContext{
			Make: "Tesla", Model: "Roadster",
			Location: &UnsafeLocation{RoadType: "Highway", Lane: "Shoulder"},
			Weather:  "hail",
			Now:      catalog.Clock(9 * 3600),
		}))
		for _, k := range []string{"make_model", "vehicle_location", "weather", "time_of_day"} {
			if got[k] != "0" {
				t.Errorf("%s = %s, want 0", k, got[k])
			}
		}
		if got["truck_utilization"] != "0.2" {
			t.Errorf("truck_utilization applies without request context, got %s", got["truck_utilization"])
		}
	})

	t.Run("disabled categories skipped", func(t *testing.T) {
		ups := ResolveSurcharges(tow, c, SurchargeContext{Make: "Tesla", Model: "Cybertruck", Weather: "rain", Now: evening})
		if len(ups) != 1 || ups[0].Category != "weather" {
			t.Fatalf("upcharges = %+v, want weather only", ups)
		}
	})

	t.Run("slot boundaries inclusive", func(t *testing.T) {
		for _, tc := range []struct {
			at   catalog.Clock
			want string
		}{
			{catalog.Clock(18 * 3600), "0.1"},
			{catalog.Clock(23*3600 + 59*60), "0.1"},
			{catalog.Clock(23*3600 + 59*60 + 1), "0"},
			{catalog.Clock(17*3600 + 59*60 + 59), "0"},
		} {
			got := fractions(ResolveSurcharges(stacked, c, SurchargeContext{Now: tc.at}))
			if got["time_of_day"] != tc.want {
				t.Errorf("at %s: time_of_day = %s, want %s", tc.at, got["time_of_day"], tc.want)
			}
		}
	})
}

func TestUpchargeCap(t *testing.T) {
	bands := loadTestCatalog(t).Modifiers.SubtotalBands
	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "0.3"},
		{"200", "0.3"},
		{"200.005", "0.25"}, // between bands
		{"270", "0.25"},
		{"500", "0.25"},
		{"750", "0.25"}, // above all bands
	}
	for _, tt := range tests {
		got := UpchargeCap(decimal.RequireFromString(tt.subtotal), bands)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("UpchargeCap(%s) = %s, want %s", tt.subtotal, got, tt.want)
		}
	}
	if got := UpchargeCap(decimal.NewFromInt(10), nil); !got.Equal(DefaultUpchargeCap) {
		t.Errorf("no bands: cap = %s, want fallback", got)
	}
}
