package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"towquote/internal/types"
)

const receiptColumn = 25

var titleCase = cases.Title(language.English)

// FormatReceipt renders a quote as fixed-width plain text.
func FormatReceipt(r *QuoteResult) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-*s%s\n", receiptColumn, label, value)
	}
	rule := func() {
		b.WriteString(strings.Repeat("-", receiptColumn*2))
		b.WriteByte('\n')
	}

	line("Tow Type:", r.TowType)
	line("Original Pickup:", r.Source)
	line("Resolved Pickup:", r.SourceResolved)
	line("Original Drop:", r.Destination)
	line("Resolved Drop:", r.DestinationResolved)
	line("Actual Distance:", fmt.Sprintf("%.1f mi", r.Distance.ActualMiles))
	line("Rounded Distance:", miles(r.Distance.RoundedMiles)+" mi")
	line("Bucket Mileage:", miles(r.Distance.BucketMiles)+" mi")
	rule()

	for i, s := range r.Services {
		line(fmt.Sprintf("Service %d:", i+1), s.Label)
		d := s.Detail
		switch {
		case d.Flat != nil:
			f := d.Flat
			line("Hook Charge:", types.FormatUSD(f.Hook))
			line("Mileage Cost:", fmt.Sprintf("%s (%s @ %s/mi)", types.FormatUSD(f.MileageCost), miles(f.MilesCharged), types.FormatUSD(f.PerMile)))
		case d.PerUnit != nil:
			for _, it := range d.PerUnit.Items {
				line(it.Label+":", fmt.Sprintf("%d × %s = %s", it.Count, types.FormatUSD(it.UnitPrice), types.FormatUSD(it.Cost)))
			}
		case d.Time != nil:
			line("Hook Charge:", types.FormatUSD(d.Time.Hook))
			line("Extra Time Charge:", fmt.Sprintf("%s (%d × %s)", types.FormatUSD(d.Time.ExtraCost), d.Time.Increments, types.FormatUSD(d.Time.RatePerIncrement)))
		}
		line("Standard Quote:", types.FormatUSD(s.StandardSubtotal))
		line("Total Upcharge %:", types.Percent(s.AppliedUpcharge))
		line("Upcharge Amount:", types.FormatUSD(s.UpchargeAmount))
		if s.MileageUpcharge.IsPositive() && d.Flat != nil {
			extra := math.Max(0, r.Distance.BucketMiles-d.Flat.IncludedMiles) - d.Flat.MilesCharged
			line("Mileage Upcharge:", fmt.Sprintf("%s (%s @ %s/mi)", types.FormatUSD(s.MileageUpcharge), miles(extra), types.FormatUSD(d.Flat.PerMile)))
		}

		var applied []Upcharge
		for _, u := range s.Upcharges {
			if u.Fraction.GreaterThan(decimal.Zero) {
				applied = append(applied, u)
			}
		}
		if len(applied) > 0 {
			b.WriteString("  Applied Upcharges:\n")
			for _, u := range applied {
				label := titleCase.String(strings.ReplaceAll(u.Category, "_", " "))
				fmt.Fprintf(&b, "   - %-*s %s\n", receiptColumn-6, label, types.Percent(u.Fraction))
			}
		}
		line("Final Quote:", types.FormatUSD(s.FinalTotal))
		rule()
	}

	line("Time Used:", r.CalculationTime)
	line("Total Standard Quote:", types.FormatUSD(r.StandardTotal))
	line("Overall % Change:", r.OverallPctChange.String()+"%")
	fmt.Fprintf(&b, "%-*s%s", receiptColumn, "Total Final Quote:", types.FormatUSD(r.FinalTotal))
	return b.String()
}

// miles prints whole miles without a fraction.
func miles(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
