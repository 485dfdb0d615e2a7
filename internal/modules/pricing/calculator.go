package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"towquote/internal/modules/catalog"
	"towquote/internal/types"
)

// Inputs are the per-request values a calculator reads.
type Inputs struct {
	Miles           float64
	Units           map[string]int
	DurationMinutes float64
}

// Calculate prices one service. base is the rate after addon and accident overrides.
func Calculate(scheme catalog.Scheme, base types.Money, in Inputs) Calculation {
	switch s := scheme.(type) {
	case catalog.FlatScheme:
		charged := math.Max(0, in.Miles-s.IncludedMiles)
		cost := s.PerMile.Mul(decimal.NewFromFloat(charged))
		return Calculation{
			Subtotal: base.Add(cost),
			Flat: &FlatDetail{
				Hook:          base,
				MileageCost:   cost,
				MilesCharged:  charged,
				PerMile:       s.PerMile,
				IncludedMiles: s.IncludedMiles,
			},
		}
	case catalog.PerUnitScheme:
		total := decimal.Zero
		items := []UnitLine{}
		for _, u := range s.Units {
			count := in.Units[u.Code]
			if count <= 0 {
				continue
			}
			cost := u.Price.Mul(decimal.NewFromInt(int64(count)))
			total = total.Add(cost)
			items = append(items, UnitLine{Code: u.Code, Label: u.Label, Count: count, UnitPrice: u.Price, Cost: cost})
		}
		return Calculation{Subtotal: total, PerUnit: &PerUnitDetail{Items: items}}
	case catalog.TimeBasedScheme:
		step := s.IncrementMinutes
		if step <= 0 {
			step = catalog.DefaultIncrementMinutes
		}
		extra := math.Max(0, in.DurationMinutes-s.IncludedMinutes)
		increments := int64(math.Ceil(extra / step))
		cost := s.RatePerIncrement.Mul(decimal.NewFromInt(increments))
		return Calculation{
			Subtotal: base.Add(cost),
			Time: &TimeDetail{
				Hook:             base,
				ExtraMinutes:     extra,
				Increments:       increments,
				RatePerIncrement: s.RatePerIncrement,
				ExtraCost:        cost,
			},
		}
	default:
		// catalog.BaseOnlyScheme: no mileage, unit or time adjustment.
		return Calculation{Subtotal: base}
	}
}
