package pricing

import (
	"github.com/shopspring/decimal"

	"towquote/internal/modules/catalog"
	"towquote/internal/types"
)

// DefaultUpchargeCap applies when a subtotal falls outside every band.
var DefaultUpchargeCap = decimal.RequireFromString("0.25")

// SurchargeContext is the request-side data surcharges depend on.
// Now is the local wall-clock time used for time_of_day slots.
type SurchargeContext struct {
	Make     string
	Model    string
	Location *UnsafeLocation
	Weather  string
	Now      catalog.Clock
}

var surchargeOrder = []string{
	catalog.ModMakeModel,
	catalog.ModVehicleLocation,
	catalog.ModWeather,
	catalog.ModTimeOfDay,
	catalog.ModTruckUtilization,
}

// ResolveSurcharges returns one entry per category enabled on svc, in a fixed
// category order. Unmatched lookups yield 0.
func ResolveSurcharges(svc *catalog.Service, c *catalog.Catalog, sc SurchargeContext) []Upcharge {
	var out []Upcharge
	for _, category := range surchargeOrder {
		if !svc.Enabled(category) {
			continue
		}
		out = append(out, Upcharge{Category: category, Fraction: lookup(category, c, sc)})
	}
	return out
}

func lookup(category string, c *catalog.Catalog, sc SurchargeContext) decimal.Decimal {
	m := c.Modifiers
	switch category {
	case catalog.ModMakeModel:
		if mk, ok := c.Vehicles.Get(sc.Make); ok {
			if md, ok := mk.Models.Get(sc.Model); ok {
				return md.Upcharge
			}
		}
	case catalog.ModVehicleLocation:
		if sc.Location == nil {
			break
		}
		if road, ok := m.VehicleLocation.Get(sc.Location.RoadType); ok {
			if lane, ok := road.Lanes.Get(sc.Location.Lane); ok {
				return lane.Upcharge
			}
		}
	case catalog.ModWeather:
		if w, ok := m.Weather.Get(sc.Weather); ok {
			return w.Upcharge
		}
	case catalog.ModTimeOfDay:
		for _, slot := range m.TimeOfDay {
			if slot.Contains(sc.Now) {
				return slot.Upcharge
			}
		}
	case catalog.ModTruckUtilization:
		return m.TruckUtilization
	}
	return decimal.Zero
}

// Combined sums the fractions before capping.
func Combined(ups []Upcharge) decimal.Decimal {
	total := decimal.Zero
	for _, u := range ups {
		total = total.Add(u.Fraction)
	}
	return total
}

// UpchargeCap returns max_upcharge of the first band with min <= subtotal <= max.
func UpchargeCap(subtotal types.Money, bands []catalog.Band) decimal.Decimal {
	for _, b := range bands {
		if b.Min.LessThanOrEqual(subtotal) && subtotal.LessThanOrEqual(b.Max) {
			return b.MaxUpcharge
		}
	}
	return DefaultUpchargeCap
}
