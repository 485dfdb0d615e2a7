package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"towquote/internal/modules/mileage"
	"towquote/internal/types"
)

func (s *Service) UnmarshalJSON(data []byte) error {
	type plain Service
	var raw struct {
		plain
		Mileage          decimal.Decimal        `json:"mileage"`
		Includes         float64                `json:"includes"`
		Units            types.OrderedMap[Unit] `json:"units"`
		IncludesTime     float64                `json:"includes_time"`
		IncrementMinutes float64                `json:"increment_minutes"`
		RatePerIncrement decimal.Decimal        `json:"rate_per_increment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Service(raw.plain)

	switch s.PricingType {
	case TypeFlat:
		s.Scheme = FlatScheme{PerMile: raw.Mileage, IncludedMiles: raw.Includes}
	case TypePerUnit:
		var units []Unit
		for code, u := range raw.Units.All() {
			u.Code = code
			if u.Label == "" {
				u.Label = code
			}
			units = append(units, u)
		}
		s.Scheme = PerUnitScheme{Units: units}
	case TypeTimeBased:
		inc := raw.IncrementMinutes
		if inc <= 0 {
			inc = DefaultIncrementMinutes
		}
		s.Scheme = TimeBasedScheme{
			IncludedMinutes:  raw.IncludesTime,
			IncrementMinutes: inc,
			RatePerIncrement: raw.RatePerIncrement,
		}
	default:
		s.Scheme = BaseOnlyScheme{Declared: s.PricingType}
	}
	return nil
}

// UnmarshalJSON accepts a bare price or {label, price}.
func (u *Unit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		return json.Unmarshal(data, &u.Price)
	}
	var raw struct {
		Label string          `json:"label"`
		Price decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Label, u.Price = raw.Label, raw.Price
	return nil
}

func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string          `json:"label"`
		Price decimal.Decimal `json:"price"`
	}{u.Label, u.Price})
}

type modifiersJSON struct {
	BucketMileage    mileage.Config             `json:"bucket_mileage_pricing"`
	VehicleLocation  types.OrderedMap[RoadType] `json:"vehicle_location"`
	Weather          types.OrderedMap[Choice]   `json:"weather"`
	TimeOfDay        types.OrderedMap[slotJSON] `json:"time_of_day"`
	TruckUtilization json.RawMessage            `json:"truck_utilization"`
	SubtotalBands    json.RawMessage            `json:"subtotal_upcharge_bands"`
}

type slotJSON struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Upcharge decimal.Decimal `json:"upcharge"`
}

func (m *Modifiers) UnmarshalJSON(data []byte) error {
	var raw modifiersJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Modifiers{
		BucketMileage:   raw.BucketMileage,
		VehicleLocation: raw.VehicleLocation,
		Weather:         raw.Weather,
	}
	for name, s := range raw.TimeOfDay.All() {
		start, err := ParseClock(s.Start)
		if err != nil {
			return fmt.Errorf("time_of_day %s: start: %w", name, err)
		}
		end, err := ParseClock(s.End)
		if err != nil {
			return fmt.Errorf("time_of_day %s: end: %w", name, err)
		}
		out.TimeOfDay = append(out.TimeOfDay, TimeSlot{Name: name, Start: start, End: end, Upcharge: s.Upcharge})
	}

	tu, err := decodeFraction(raw.TruckUtilization)
	if err != nil {
		return fmt.Errorf("truck_utilization: %w", err)
	}
	out.TruckUtilization = tu

	bands, err := decodeBands(raw.SubtotalBands)
	if err != nil {
		return fmt.Errorf("subtotal_upcharge_bands: %w", err)
	}
	out.SubtotalBands = bands

	*m = out
	return nil
}

// decodeFraction reads either a number or an {"upcharge": n} object.
func decodeFraction(data json.RawMessage) (decimal.Decimal, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return decimal.Zero, nil
	}
	if data[0] == '{' {
		var c Choice
		err := json.Unmarshal(data, &c)
		return c.Upcharge, err
	}
	var d decimal.Decimal
	err := json.Unmarshal(data, &d)
	return d, err
}

// decodeBands reads bands from a list or from an object keyed by range.
func decodeBands(data json.RawMessage) ([]Band, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var bands []Band
		err := json.Unmarshal(data, &bands)
		return bands, err
	}
	var keyed types.OrderedMap[Band]
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, err
	}
	var bands []Band
	for key, b := range keyed.All() {
		if b.Label == "" {
			b.Label = key
		}
		bands = append(bands, b)
	}
	return bands, nil
}
