// README: Mileage bucketing: maps actual trip miles to billable miles by tiers or by a growing-step pattern.
package mileage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "towquote/internal/errors"
	"towquote/internal/types"
)

const (
	ModeTiers   = "tiers"
	ModePattern = "pattern"

	DefaultFreeMiles = 5
)

type Tier struct {
	Start         float64
	End           float64
	BillableMiles float64
}

type Pattern struct {
	FreeMiles  float64 `json:"free_miles"`
	Start      float64 `json:"start" validate:"gte=0"`
	FirstStep  float64 `json:"first_step" validate:"gte=1"`
	StepGrowth float64 `json:"step_growth" validate:"gte=0"`
	MaxMiles   float64 `json:"max_miles" validate:"gt=0"`
}

// Config is the bucket_mileage_pricing section.
type Config struct {
	Mode    string   `validate:"oneof=tiers pattern"`
	Tiers   []Tier
	Pattern *Pattern `validate:"required_if=Mode pattern"`
}

// Bucket returns the billable miles for miles under cfg.
func Bucket(miles float64, cfg Config) (float64, error) {
	switch cfg.Mode {
	case ModeTiers:
		for _, t := range cfg.Tiers {
			if t.Start <= miles && miles <= t.End {
				return t.BillableMiles, nil
			}
		}
		return miles, nil
	case ModePattern:
		if cfg.Pattern == nil {
			return 0, apperrors.Configuration("pattern mileage mode without pattern parameters")
		}
		return bucketPattern(miles, *cfg.Pattern)
	default:
		return 0, apperrors.Configuration("unknown mileage mode %q", cfg.Mode)
	}
}

func bucketPattern(miles float64, p Pattern) (float64, error) {
	if miles <= p.FreeMiles {
		return 0, nil
	}
	if p.FirstStep < 1 || p.StepGrowth < 0 {
		return 0, apperrors.Configuration("pattern steps must grow: first_step=%v step_growth=%v", p.FirstStep, p.StepGrowth)
	}
	step := p.FirstStep
	limit := p.Start + step - 1
	for limit < p.MaxMiles {
		if miles <= limit {
			return limit, nil
		}
		step += p.StepGrowth
		start := limit + 1
		limit = start + step - 1
	}
	return p.MaxMiles, nil
}

type configJSON struct {
	Mode    string                     `json:"mode"`
	Tiers   types.OrderedMap[tierJSON] `json:"tiers"`
	Pattern *patternJSON               `json:"pattern"`
}

type tierJSON struct {
	BillableMiles float64 `json:"billable_miles"`
}

type patternJSON struct {
	Pattern
	FreeMiles *float64 `json:"free_miles"`
}

// UnmarshalJSON reads tiers keyed by "start-end" in configuration order.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Config{Mode: raw.Mode}
	for key, v := range raw.Tiers.All() {
		start, end, err := parseRange(key)
		if err != nil {
			return err
		}
		out.Tiers = append(out.Tiers, Tier{Start: start, End: end, BillableMiles: v.BillableMiles})
	}
	if raw.Pattern != nil {
		p := raw.Pattern.Pattern
		p.FreeMiles = DefaultFreeMiles
		if raw.Pattern.FreeMiles != nil {
			p.FreeMiles = *raw.Pattern.FreeMiles
		}
		out.Pattern = &p
	}
	*c = out
	return nil
}

func parseRange(key string) (float64, float64, error) {
	lo, hi, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, fmt.Errorf("tier %q: want start-end", key)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("tier %q: %w", key, err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("tier %q: %w", key, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("tier %q: end before start", key)
	}
	return start, end, nil
}
