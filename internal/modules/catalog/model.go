// README: Typed configuration records for pricing, dynamic modifiers and make/model modifiers.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"towquote/internal/modules/mileage"
	"towquote/internal/modules/rules"
	"towquote/internal/types"
)

// Document names in the configuration store.
const (
	DocPricing   = "pricing"
	DocModifiers = "dynamic_modifiers"
	DocVehicles  = "make_model_modifiers"
)

// Modifier categories a service can enable.
const (
	ModMakeModel        = "make_model"
	ModVehicleLocation  = "vehicle_location"
	ModLane             = "lane"
	ModWeather          = "weather"
	ModTimeOfDay        = "time_of_day"
	ModTruckUtilization = "truck_utilization"
)

// Pricing types with a dedicated calculator.
const (
	TypeFlat      = "flat"
	TypePerUnit   = "per_unit"
	TypeTimeBased = "time_based"
)

const DefaultIncrementMinutes = 30

// Catalog is one consistent snapshot of all configuration documents.
type Catalog struct {
	Pricing   Pricing
	Modifiers Modifiers
	Vehicles  Vehicles
}

// Pricing maps tow type to its services, both in configuration order.
type Pricing = types.OrderedMap[TowType]

type TowType = types.OrderedMap[*Service]

// Service is one ServiceDefinition.
type Service struct {
	Code           string            `json:"-"`
	Label          string            `json:"label" validate:"required"`
	DropdownRank   int               `json:"dropdown_rank"`
	PricingType    string            `json:"pricing_type" validate:"required"`
	BaseRate       decimal.Decimal   `json:"base_rate"`
	Modifiers      map[string]bool   `json:"modifiers"`
	Accident       *AccidentOverride `json:"accident,omitempty"`
	Rules          []AddonRule       `json:"rules"`
	RequiresInputs []string          `json:"requires_inputs,omitempty"`
	Scheme         Scheme            `json:"-"`
}

// Enabled reports whether modifier category name is switched on. "lane" is accepted for vehicle_location.
func (s *Service) Enabled(name string) bool {
	if s.Modifiers[name] {
		return true
	}
	return name == ModVehicleLocation && s.Modifiers[ModLane]
}

// AccidentOverride replaces only the fields it sets.
type AccidentOverride struct {
	Hook     *decimal.Decimal `json:"hook,omitempty"`
	Mileage  *decimal.Decimal `json:"mileage,omitempty"`
	Includes *float64         `json:"includes,omitempty"`
}

type AddonRule struct {
	Condition rules.Condition `json:"condition"`
	AddonRate decimal.Decimal `json:"addon_rate"`
}

// Scheme is the pricing-type specific part of a service. The set of implementations is closed.
type Scheme interface {
	PricingType() string
	scheme()
}

type FlatScheme struct {
	PerMile       decimal.Decimal
	IncludedMiles float64
}

type PerUnitScheme struct {
	Units []Unit
}

type Unit struct {
	Code  string
	Label string
	Price decimal.Decimal
}

type TimeBasedScheme struct {
	IncludedMinutes  float64
	IncrementMinutes float64
	RatePerIncrement decimal.Decimal
}

// BaseOnlyScheme prices an unrecognized pricing_type at its base rate.
type BaseOnlyScheme struct {
	Declared string
}

func (FlatScheme) PricingType() string { return TypeFlat }
func (PerUnitScheme) PricingType() string { return TypePerUnit }
func (TimeBasedScheme) PricingType() string { return TypeTimeBased }
func (s BaseOnlyScheme) PricingType() string { return s.Declared }

func (FlatScheme) scheme() {}
func (PerUnitScheme) scheme() {}
func (TimeBasedScheme) scheme() {}
func (BaseOnlyScheme) scheme() {}

// Modifiers is the dynamic_modifiers document.
type Modifiers struct {
	BucketMileage    mileage.Config
	VehicleLocation  types.OrderedMap[RoadType]
	Weather          types.OrderedMap[Choice]
	TimeOfDay        []TimeSlot
	TruckUtilization decimal.Decimal
	SubtotalBands    []Band
}

type RoadType struct {
	Label string                   `json:"label"`
	Lanes types.OrderedMap[Choice] `json:"lanes"`
}

// Choice is a labelled surcharge fraction.
type Choice struct {
	Label    string          `json:"label"`
	Upcharge decimal.Decimal `json:"upcharge"`
}

type TimeSlot struct {
	Name     string
	Start    Clock
	End      Clock
	Upcharge decimal.Decimal
}

// Contains reports whether c falls in [Start, End].
func (s TimeSlot) Contains(c Clock) bool {
	return s.Start <= c && c <= s.End
}

// Clock is a wall-clock time as seconds since midnight.
type Clock int

func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return ClockOf(t), nil
}

func (c Clock) String() string {
	return time.Date(0, 1, 1, 0, 0, int(c), 0, time.UTC).Format("15:04:05")
}

type Band struct {
	Label       string          `json:"label"`
	Min         decimal.Decimal `json:"min"`
	Max         decimal.Decimal `json:"max"`
	MaxUpcharge decimal.Decimal `json:"max_upcharge"`
}

// Vehicles is the make_model_modifiers document.
type Vehicles = types.OrderedMap[Make]

type Make struct {
	Label  string                  `json:"label"`
	Models types.OrderedMap[Model] `json:"models"`
}

type Model struct {
	Label    string          `json:"label"`
	CarType  string          `json:"car_type"`
	Upcharge decimal.Decimal `json:"upcharge_percentage"`
}
