// README: Catalog loader reads and validates configuration documents from a Source on every call.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	apperrors "towquote/internal/errors"
)

// Source returns the raw JSON body of a named configuration document.
// A missing document is reported as a configuration error.
type Source interface {
	Document(ctx context.Context, name string) ([]byte, error)
}

// Publisher stores a configuration document body under name.
type Publisher interface {
	Put(ctx context.Context, name string, body []byte) error
}

// Loader turns the three configuration documents into a validated Catalog.
type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load reads all documents fresh. Nothing is cached between calls.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var c Catalog
	if err := l.decode(ctx, DocPricing, &c.Pricing); err != nil {
		return nil, err
	}
	if err := l.decode(ctx, DocModifiers, &c.Modifiers); err != nil {
		return nil, err
	}
	if err := l.decode(ctx, DocVehicles, &c.Vehicles); err != nil {
		return nil, err
	}

	for tow, services := range c.Pricing.All() {
		for code, svc := range services.All() {
			if svc == nil {
				continue
			}
			svc.Code = code
			if _, ok := svc.Scheme.(BaseOnlyScheme); ok {
				slog.Warn("unrecognized pricing type, priced at base rate",
					"tow_type", tow, "service", code, "pricing_type", svc.PricingType)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (l *Loader) decode(ctx context.Context, name string, v any) error {
	body, err := l.source.Document(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.WrapConfiguration(err, "decode %s document", name)
	}
	return nil
}
