// README: Quote request/result shapes and per-service calculation detail.
package pricing

import (
	"github.com/shopspring/decimal"

	"towquote/internal/types"
)

type UnsafeLocation struct {
	RoadType string `json:"road_type"`
	Lane     string `json:"lane"`
}

// ServiceInput carries the auxiliary inputs for one requested service.
type ServiceInput struct {
	Units           map[string]int `json:"units,omitempty"`
	DurationMinutes float64        `json:"duration_minutes,omitempty"`
}

type QuoteRequest struct {
	TowType        string                  `json:"tow_type"`
	Services       []string                `json:"services"`
	Accident       bool                    `json:"is_accident"`
	Source         string                  `json:"source"`
	Destination    string                  `json:"destination"`
	DistanceMiles  *float64                `json:"distance_miles,omitempty"`
	Make           string                  `json:"make"`
	Model          string                  `json:"model"`
	UnsafeLocation *UnsafeLocation         `json:"unsafe_location,omitempty"`
	Weather        string                  `json:"weather"`
	LocalTime      string                  `json:"local_time"`
	TimezoneOffset *int                    `json:"timezone_offset,omitempty"`
	ServiceInputs  map[string]ServiceInput `json:"service_inputs,omitempty"`
}

type Distance struct {
	ActualMiles  float64 `json:"actual_miles"`
	RoundedMiles float64 `json:"rounded_miles"`
	BucketMiles  float64 `json:"bucket_miles"`
}

// Calculation is a calculator's output. Exactly one detail is set for the
// dedicated pricing types; none for a base-rate-only service.
type Calculation struct {
	Subtotal types.Money    `json:"subtotal"`
	Flat     *FlatDetail    `json:"flat,omitempty"`
	PerUnit  *PerUnitDetail `json:"per_unit,omitempty"`
	Time     *TimeDetail    `json:"time_based,omitempty"`
}

type FlatDetail struct {
	Hook          types.Money `json:"hook_cost"`
	MileageCost   types.Money `json:"mileage_cost"`
	MilesCharged  float64     `json:"miles_charged"`
	PerMile       types.Money `json:"per_mile"`
	IncludedMiles float64     `json:"includes"`
}

type UnitLine struct {
	Code      string      `json:"unit_type"`
	Label     string      `json:"label"`
	Count     int         `json:"count"`
	UnitPrice types.Money `json:"unit_price"`
	Cost      types.Money `json:"cost"`
}

type PerUnitDetail struct {
	Items []UnitLine `json:"items"`
}

type TimeDetail struct {
	Hook             types.Money `json:"hook"`
	ExtraMinutes     float64     `json:"extra_minutes"`
	Increments       int64       `json:"increments"`
	RatePerIncrement types.Money `json:"rate_per_increment"`
	ExtraCost        types.Money `json:"extra_cost"`
}

// Upcharge is one surcharge category's fraction for a service.
type Upcharge struct {
	Category string          `json:"category"`
	Fraction decimal.Decimal `json:"fraction"`
}

type ServiceBreakdown struct {
	Code             string          `json:"code"`
	Label            string          `json:"service"`
	PricingType      string          `json:"pricing_type"`
	BaseRate         types.Money     `json:"base_rate"`
	AddonApplied     bool            `json:"addon_applied"`
	AccidentApplied  bool            `json:"accident_applied"`
	Detail           Calculation     `json:"calc_details"`
	StandardSubtotal types.Money     `json:"standard_subtotal"`
	BucketedSubtotal types.Money     `json:"bucketed_subtotal"`
	MileageUpcharge  types.Money     `json:"mileage_upcharge"`
	Upcharges        []Upcharge      `json:"upcharges"`
	CombinedUpcharge decimal.Decimal `json:"combined_upcharge"`
	UpchargeCap      decimal.Decimal `json:"upcharge_cap"`
	AppliedUpcharge  decimal.Decimal `json:"applied_upcharge"`
	UpchargeAmount   types.Money     `json:"upcharge_amount"`
	FinalTotal       types.Money     `json:"final_total"`
}

type QuoteResult struct {
	QuoteID             string             `json:"quote_id"`
	TowType             string             `json:"tow_type"`
	Source              string             `json:"source"`
	Destination         string             `json:"destination"`
	SourceResolved      string             `json:"source_resolved"`
	DestinationResolved string             `json:"destination_resolved"`
	Distance            Distance           `json:"distance"`
	CalculationTime     string             `json:"calculation_time"`
	Services            []ServiceBreakdown `json:"services"`
	StandardTotal       types.Money        `json:"standard_total"`
	FinalTotal          types.Money        `json:"final_total"`
	OverallPctChange    decimal.Decimal    `json:"overall_pct_change"`
	Receipt             string             `json:"breakdown"`
}
