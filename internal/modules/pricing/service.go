// README: Pricing service computes itemized towing quotes from the current catalog.
package pricing

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "towquote/internal/errors"
	"towquote/internal/maps"
	"towquote/internal/modules/catalog"
	"towquote/internal/modules/mileage"
	"towquote/internal/modules/rules"
	"towquote/internal/types"
)

const DefaultDistanceTimeout = 10 * time.Second

// DistanceProvider resolves two free-text locations to a driving distance.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) (maps.Trip, error)
}

type Service struct {
	catalog         *catalog.Loader
	distance        DistanceProvider
	distanceTimeout time.Duration
	now             func() time.Time
}

type Option func(*Service)

// WithClock replaces the server clock used when the request carries no local time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDistanceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.distanceTimeout = d
		}
	}
}

// NewService wires the quote engine. distance may be nil, in which case only
// requests with a precomputed distance_miles can be quoted.
func NewService(cat *catalog.Loader, distance DistanceProvider, opts ...Option) *Service {
	s := &Service{
		catalog:         cat,
		distance:        distance,
		distanceTimeout: DefaultDistanceTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the loader for callers that render form data.
func (s *Service) Catalog() *catalog.Loader {
	return s.catalog
}

// Quote prices every requested service. Any failure aborts the whole request.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	services, err := lookupServices(cat, req)
	if err != nil {
		return nil, err
	}

	trip, err := s.resolveDistance(ctx, req)
	if err != nil {
		return nil, err
	}
	bucket, err := mileage.Bucket(trip.Miles, cat.Modifiers.BucketMileage)
	if err != nil {
		return nil, err
	}
	rounded := math.Ceil(trip.Miles)

	local := s.localTime(req)
	sc := SurchargeContext{
		Make:     req.Make,
		Model:    req.Model,
		Location: req.UnsafeLocation,
		Weather:  req.Weather,
		Now:      catalog.ClockOf(local),
	}
	selected := rules.Select(req.Services...)

	result := &QuoteResult{
		QuoteID:             uuid.NewString(),
		TowType:             req.TowType,
		Source:              req.Source,
		Destination:         req.Destination,
		SourceResolved:      trip.ResolvedOrigin,
		DestinationResolved: trip.ResolvedDestination,
		Distance:            Distance{ActualMiles: trip.Miles, RoundedMiles: rounded, BucketMiles: bucket},
		CalculationTime:     local.Format(time.DateTime),
		StandardTotal:       decimal.Zero,
		FinalTotal:          decimal.Zero,
	}

	for _, svc := range services {
		b, err := priceService(svc, cat, req, selected, sc, trip.Miles, bucket)
		if err != nil {
			return nil, err
		}
		result.Services = append(result.Services, b)
		result.StandardTotal = result.StandardTotal.Add(b.StandardSubtotal)
		result.FinalTotal = result.FinalTotal.Add(b.FinalTotal)
	}
	result.StandardTotal = types.Cents(result.StandardTotal)
	result.FinalTotal = types.Cents(result.FinalTotal)
	result.OverallPctChange = pctChange(result.StandardTotal, result.FinalTotal)
	result.Receipt = FormatReceipt(result)

	slog.Info("quote computed",
		"quote_id", result.QuoteID,
		"tow_type", result.TowType,
		"services", len(result.Services),
		"bucket_miles", bucket,
		"standard_total", result.StandardTotal.String(),
		"final_total", result.FinalTotal.String(),
	)
	return result, nil
}

func lookupServices(cat *catalog.Catalog, req QuoteRequest) ([]*catalog.Service, error) {
	towType, ok := cat.Pricing.Get(req.TowType)
	if !ok {
		return nil, apperrors.InvalidInput("tow_type", "unknown tow type %q", req.TowType)
	}
	if len(req.Services) == 0 {
		return nil, apperrors.InvalidInput("services", "at least one service is required")
	}
	out := make([]*catalog.Service, 0, len(req.Services))
	for _, code := range req.Services {
		svc, ok := towType.Get(code)
		if !ok || svc == nil {
			return nil, apperrors.InvalidInput("services", "unknown service %q for tow type %q", code, req.TowType)
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *Service) resolveDistance(ctx context.Context, req QuoteRequest) (maps.Trip, error) {
	if req.DistanceMiles != nil {
		miles := *req.DistanceMiles
		if miles < 0 || math.IsNaN(miles) || math.IsInf(miles, 0) {
			return maps.Trip{}, apperrors.InvalidInput("distance_miles", "distance must be a non-negative number")
		}
		return maps.Trip{
			Miles:               math.Round(miles*10) / 10,
			ResolvedOrigin:      req.Source,
			ResolvedDestination: req.Destination,
		}, nil
	}
	if req.Source == "" {
		return maps.Trip{}, apperrors.InvalidInput("source", "source is required")
	}
	if req.Destination == "" {
		return maps.Trip{}, apperrors.InvalidInput("destination", "destination is required")
	}
	if s.distance == nil {
		return maps.Trip{}, apperrors.Upstream(errors.New("no distance provider configured"), "distance lookup")
	}

	ctx, cancel := context.WithTimeout(ctx, s.distanceTimeout)
	defer cancel()
	trip, err := s.distance.Distance(ctx, req.Source, req.Destination)
	if err != nil {
		return maps.Trip{}, apperrors.Upstream(err, "distance lookup")
	}
	return trip, nil
}

// localTime prefers the client's clock: local_time is read as UTC and shifted
// by the browser offset (minutes behind UTC). Otherwise the server clock in UTC.
func (s *Service) localTime(req QuoteRequest) time.Time {
	if req.LocalTime != "" && req.TimezoneOffset != nil {
		if t, ok := parseClientTime(req.LocalTime); ok {
			return t.UTC().Add(-time.Duration(*req.TimezoneOffset) * time.Minute)
		}
		slog.Warn("unparsable client local_time, using server clock",
			"local_time", req.LocalTime, "timezone_offset", *req.TimezoneOffset)
	}
	return s.now().UTC()
}

func parseClientTime(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveRates applies the first matching addon rule, then the accident block
// field by field. The returned scheme carries any accident mileage overrides.
func resolveRates(svc *catalog.Service, selected rules.Selection, accident bool) (base types.Money, scheme catalog.Scheme, addon, crash bool, err error) {
	base, scheme = svc.BaseRate, svc.Scheme
	for _, r := range svc.Rules {
		hit, evalErr := r.Condition.Evaluate(selected)
		if evalErr != nil {
			return base, scheme, false, false, evalErr
		}
		if hit {
			base, addon = r.AddonRate, true
			break
		}
	}
	if !accident || svc.Accident == nil {
		return base, scheme, addon, false, nil
	}
	a := svc.Accident
	if a.Hook != nil {
		base = *a.Hook
	}
	if flat, ok := scheme.(catalog.FlatScheme); ok {
		if a.Mileage != nil {
			flat.PerMile = *a.Mileage
		}
		if a.Includes != nil {
			flat.IncludedMiles = *a.Includes
		}
		scheme = flat
	}
	return base, scheme, addon, true, nil
}

func priceService(svc *catalog.Service, cat *catalog.Catalog, req QuoteRequest, selected rules.Selection,
	sc SurchargeContext, actualMiles, bucketMiles float64) (ServiceBreakdown, error) {
	base, scheme, addon, crash, err := resolveRates(svc, selected, req.Accident)
	if err != nil {
		return ServiceBreakdown{}, err
	}

	extra := req.ServiceInputs[svc.Code]
	in := Inputs{Miles: bucketMiles, Units: extra.Units, DurationMinutes: extra.DurationMinutes}
	bucketed := Calculate(scheme, base, in)
	standard := bucketed
	if _, ok := scheme.(catalog.FlatScheme); ok {
		in.Miles = math.Ceil(actualMiles)
		standard = Calculate(scheme, base, in)
	}

	ups := ResolveSurcharges(svc, cat, sc)
	combined := Combined(ups)
	limit := UpchargeCap(standard.Subtotal, cat.Modifiers.SubtotalBands)
	applied := decimal.Min(combined, limit)
	amount := types.Cents(standard.Subtotal.Mul(applied))
	mileageUp := bucketed.Subtotal.Sub(standard.Subtotal)

	return ServiceBreakdown{
		Code:             svc.Code,
		Label:            svc.Label,
		PricingType:      scheme.PricingType(),
		BaseRate:         base,
		AddonApplied:     addon,
		AccidentApplied:  crash,
		Detail:           standard,
		StandardSubtotal: types.Cents(standard.Subtotal),
		BucketedSubtotal: types.Cents(bucketed.Subtotal),
		MileageUpcharge:  types.Cents(mileageUp),
		Upcharges:        ups,
		CombinedUpcharge: combined,
		UpchargeCap:      limit,
		AppliedUpcharge:  applied,
		UpchargeAmount:   amount,
		FinalTotal:       types.Cents(standard.Subtotal.Add(mileageUp).Add(amount)),
	}, nil
}

// pctChange is (final - standard) / final * 100, two decimals; 0 when final is 0.
func pctChange(standard, final types.Money) decimal.Decimal {
	if final.IsZero() {
		return decimal.Zero
	}
	return final.Sub(standard).Div(final).Mul(decimal.NewFromInt(100)).Round(2)
}
