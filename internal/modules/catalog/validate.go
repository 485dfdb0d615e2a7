package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "towquote/internal/errors"
)

var validate = validator.New()

var one = decimal.NewFromInt(1)

// Validate checks the snapshot once after decoding.
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	fraction := func(where string, f decimal.Decimal) {
		if f.IsNegative() || f.GreaterThan(one) {
			add("%s: fraction %s outside [0, 1]", where, f)
		}
	}
	nonNegative := func(where string, d decimal.Decimal) {
		if d.IsNegative() {
			add("%s: negative amount %s", where, d)
		}
	}

	if c.Pricing.Len() == 0 {
		add("pricing: no tow types")
	}
	for tow, services := range c.Pricing.All() {
		for code, svc := range services.All() {
			where := tow + "." + code
			if svc == nil {
				add("%s: empty service definition", where)
				continue
			}
			if err := validate.Struct(svc); err != nil {
				add("%s: %v", where, err)
			}
			nonNegative(where+".base_rate", svc.BaseRate)
			for i, r := range svc.Rules {
				if err := r.Condition.Validate(); err != nil {
					add("%s.rules[%d]: %v", where, i, err)
				}
				nonNegative(fmt.Sprintf("%s.rules[%d].addon_rate", where, i), r.AddonRate)
			}
			if a := svc.Accident; a != nil {
				if a.Hook != nil {
					nonNegative(where+".accident.hook", *a.Hook)
				}
				if a.Mileage != nil {
					nonNegative(where+".accident.mileage", *a.Mileage)
				}
			}
			switch s := svc.Scheme.(type) {
			case FlatScheme:
				nonNegative(where+".mileage", s.PerMile)
			case PerUnitScheme:
				for _, u := range s.Units {
					nonNegative(where+".units."+u.Code, u.Price)
				}
			case TimeBasedScheme:
				nonNegative(where+".rate_per_increment", s.RatePerIncrement)
			}
		}
	}

	m := c.Modifiers
	if err := validate.Struct(m.BucketMileage); err != nil {
		add("bucket_mileage_pricing: %v", err)
	}
	for road, rt := range m.VehicleLocation.All() {
		for lane, ch := range rt.Lanes.All() {
			fraction("vehicle_location."+road+"."+lane, ch.Upcharge)
		}
	}
	for name, ch := range m.Weather.All() {
		fraction("weather."+name, ch.Upcharge)
	}
	for _, slot := range m.TimeOfDay {
		fraction("time_of_day."+slot.Name, slot.Upcharge)
	}
	fraction("truck_utilization", m.TruckUtilization)
	for _, b := range m.SubtotalBands {
		fraction("subtotal_upcharge_bands."+b.Label, b.MaxUpcharge)
		if b.Min.GreaterThan(b.Max) {
			add("subtotal_upcharge_bands.%s: min %s above max %s", b.Label, b.Min, b.Max)
		}
	}

	for mk, vm := range c.Vehicles.All() {
		for model, md := range vm.Models.All() {
			fraction("make_model."+mk+"."+model, md.Upcharge)
		}
	}

	if len(problems) > 0 {
		return apperrors.Configuration("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
