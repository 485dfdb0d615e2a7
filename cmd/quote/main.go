// README: One-shot CLI; prices a quote against the configured catalog and prints the receipt, or seeds the store from local JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"towquote/internal/config"
	"towquote/internal/infra"
	"towquote/internal/maps"
	"towquote/internal/modules/catalog"
	"towquote/internal/modules/pricing"
)

type options struct {
	seed     bool
	seedDir  string
	asJSON   bool
	request  pricing.QuoteRequest
	miles    float64
	services string
	units    string
	minutes  string
	road     string
	lane     string
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore, err := infra.NewCatalogStore(ctx, cfg)
	if err != nil {
		fail(err)
	}
	defer closeStore()

	if opts.seed {
		if cfg.Catalog.Source == config.SourceFile && filepath.Clean(opts.seedDir) == filepath.Clean(cfg.Catalog.DataDir) {
			fail(fmt.Errorf("seed: source and target are both %s", opts.seedDir))
		}
		if err := seed(ctx, store, opts.seedDir); err != nil {
			fail(err)
		}
		fmt.Printf("seeded %d documents into %s\n", len(catalogDocuments), cfg.Catalog.Source)
		return
	}

	req, err := opts.buildRequest()
	if err != nil {
		fail(err)
	}

	var distance pricing.DistanceProvider
	if cfg.Maps.APIKey != "" {
		d, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			fail(err)
		}
		distance = d
	}
	svc := pricing.NewService(catalog.NewLoader(store), distance, pricing.WithDistanceTimeout(cfg.Maps.DistanceTimeout))

	result, err := svc.Quote(ctx, req)
	if err != nil {
		fail(err)
	}
	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fail(err)
		}
		return
	}
	fmt.Println(result.Receipt)
}

func parseFlags() options {
	var o options
	flag.BoolVar(&o.seed, "seed", false, "publish the JSON documents in -seed-dir into the configured store and exit")
	flag.StringVar(&o.seedDir, "seed-dir", "data", "directory holding pricing.json, dynamic_modifiers.json and make_model_modifiers.json")
	flag.BoolVar(&o.asJSON, "json", false, "print the full result as JSON instead of the receipt")
	flag.StringVar(&o.request.TowType, "tow-type", "light_duty", "tow type")
	flag.StringVar(&o.services, "services", "tow", "comma-separated service codes")
	flag.BoolVar(&o.request.Accident, "accident", false, "accident scene")
	flag.StringVar(&o.request.Source, "source", "", "pickup address")
	flag.StringVar(&o.request.Destination, "dest", "", "drop-off address")
	flag.Float64Var(&o.miles, "miles", -1, "precomputed distance in miles (skips the maps lookup)")
	flag.StringVar(&o.request.Make, "make", "", "vehicle make")
	flag.StringVar(&o.request.Model, "model", "", "vehicle model")
	flag.StringVar(&o.request.Weather, "weather", "", "weather code")
	flag.StringVar(&o.road, "road", "", "road type of an unsafe vehicle location")
	flag.StringVar(&o.lane, "lane", "", "lane of an unsafe vehicle location")
	flag.StringVar(&o.units, "units", "", "per-unit counts, e.g. glass_cover.side_window=2,glass_cover.front_or_back_window=1")
	flag.StringVar(&o.minutes, "minutes", "", "durations for time-based services, e.g. wait_time=45")
	flag.Parse()
	return o
}

func (o options) buildRequest() (pricing.QuoteRequest, error) {
	req := o.request
	for _, code := range strings.Split(o.services, ",") {
		if code = strings.TrimSpace(code); code != "" {
			req.Services = append(req.Services, code)
		}
	}
	if o.miles >= 0 {
		m := o.miles
		req.DistanceMiles = &m
	}
	if o.road != "" || o.lane != "" {
		req.UnsafeLocation = &pricing.UnsafeLocation{RoadType: o.road, Lane: o.lane}
	}

	inputs := map[string]pricing.ServiceInput{}
	for _, kv := range splitPairs(o.units) {
		svc, unit, ok := strings.Cut(kv[0], ".")
		if !ok {
			return req, fmt.Errorf("-units: %q is not service.unit", kv[0])
		}
		n, err := strconv.Atoi(kv[1])
		if err != nil {
			return req, fmt.Errorf("-units %s: %w", kv[0], err)
		}
		in := inputs[svc]
		if in.Units == nil {
			in.Units = map[string]int{}
		}
		in.Units[unit] = n
		inputs[svc] = in
	}
	for _, kv := range splitPairs(o.minutes) {
		d, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return req, fmt.Errorf("-minutes %s: %w", kv[0], err)
		}
		in := inputs[kv[0]]
		in.DurationMinutes = d
		inputs[kv[0]] = in
	}
	if len(inputs) > 0 {
		req.ServiceInputs = inputs
	}
	return req, nil
}

// splitPairs reads "a=1,b=2". Malformed entries are skipped.
func splitPairs(v string) [][2]string {
	var out [][2]string
	for _, part := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k == "" {
			continue
		}
		out = append(out, [2]string{k, val})
	}
	return out
}

var catalogDocuments = []string{catalog.DocPricing, catalog.DocModifiers, catalog.DocVehicles}

// seed validates the local documents as a catalog before publishing any of them.
func seed(ctx context.Context, store catalog.Publisher, dir string) error {
	local := catalog.NewFileSource(dir)
	if _, err := catalog.NewLoader(local).Load(ctx); err != nil {
		return fmt.Errorf("seed: local documents invalid: %w", err)
	}
	for _, name := range catalogDocuments {
		body, err := local.Document(ctx, name)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, name, body); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "quote:", err)
	os.Exit(1)
}
