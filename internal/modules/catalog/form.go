package catalog

import (
	"cmp"
	"slices"
)

// Form is the option data a quote form needs to render its dropdowns.
type Form struct {
	TowTypes  []FormTowType `json:"tow_types"`
	Weather   []Option      `json:"weather"`
	RoadTypes []FormRoad    `json:"road_types"`
	Makes     []FormMake    `json:"makes"`
}

type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type FormTowType struct {
	Code     string        `json:"code"`
	Services []FormService `json:"services"`
}

type FormService struct {
	Code           string   `json:"code"`
	Label          string   `json:"label"`
	PricingType    string   `json:"pricing_type"`
	Units          []Option `json:"units,omitempty"`
	RequiresInputs []string `json:"requires_inputs,omitempty"`
	rank           int
}

type FormRoad struct {
	Code  string   `json:"code"`
	Label string   `json:"label"`
	Lanes []Option `json:"lanes"`
}

type FormMake struct {
	Code   string   `json:"code"`
	Label  string   `json:"label"`
	Models []Option `json:"models"`
}

// Form lists services by dropdown_rank, ties kept in configuration order.
func (c *Catalog) Form() Form {
	var f Form
	for tow, services := range c.Pricing.All() {
		tt := FormTowType{Code: tow}
		for code, svc := range services.All() {
			if svc == nil {
				continue
			}
			fs := FormService{
				Code:           code,
				Label:          svc.Label,
				PricingType:    svc.PricingType,
				RequiresInputs: svc.RequiresInputs,
				rank:           svc.DropdownRank,
			}
			if pu, ok := svc.Scheme.(PerUnitScheme); ok {
				for _, u := range pu.Units {
					fs.Units = append(fs.Units, Option{Code: u.Code, Label: u.Label})
				}
			}
			tt.Services = append(tt.Services, fs)
		}
		slices.SortStableFunc(tt.Services, func(a, b FormService) int {
			return cmp.Compare(a.rank, b.rank)
		})
		f.TowTypes = append(f.TowTypes, tt)
	}

	for code, ch := range c.Modifiers.Weather.All() {
		f.Weather = append(f.Weather, Option{Code: code, Label: labelOr(ch.Label, code)})
	}
	for code, rt := range c.Modifiers.VehicleLocation.All() {
		road := FormRoad{Code: code, Label: labelOr(rt.Label, code)}
		for lane, ch := range rt.Lanes.All() {
			road.Lanes = append(road.Lanes, Option{Code: lane, Label: labelOr(ch.Label, lane)})
		}
		f.RoadTypes = append(f.RoadTypes, road)
	}
	for code, mk := range c.Vehicles.All() {
		m := FormMake{Code: code, Label: labelOr(mk.Label, code)}
		for model, md := range mk.Models.All() {
			m.Models = append(m.Models, Option{Code: model, Label: labelOr(md.Label, model)})
		}
		f.Makes = append(f.Makes, m)
	}
	return f
}

func labelOr(label, code string) string {
	if label != "" {
		return label
	}
	return code
}
