// README: Bench cases: environment, migration, HTTP API, determinism under load and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"towquote/internal/modules/catalog"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 20 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// pinnedQuote fixes distance and client clock so every response is comparable.
func pinnedQuote() map[string]any {
	return map[string]any{
		"tow_type":        "light_duty",
		"services":        []string{"tow"},
		"source":          "Dallas, TX",
		"destination":     "Plano, TX",
		"distance_miles":  12,
		"weather":         "rain",
		"local_time":      "2026-02-10T18:30:00Z",
		"timezone_offset": 0,
	}
}

var documents = []string{catalog.DocPricing, catalog.DocModifiers, catalog.DocVehicles}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Store: config documents in Postgres",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				for _, name := range documents {
					var exists bool
					if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM config_documents WHERE name=$1)", name).Scan(&exists); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing document: " + name}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Store: config documents in Redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				for _, name := range documents {
					n, err := r.redis.Exists(ctx, r.cfg.RedisPrefix+name).Result()
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if n == 0 {
						return Result{Status: statusFail, Note: "missing key: " + r.cfg.RedisPrefix + name}
					}
				}
				return Result{Status: statusPass}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK, nil),
		httpCase("API: catalog form", http.MethodGet, base+"/api/catalog", nil, http.StatusOK, expectJSONKey("tow_types")),

		// Quotes
		httpCase("Quote: pinned request", http.MethodPost, base+"/api/quotes", pinnedQuote(), http.StatusOK, expectJSONKey("final_total")),
		httpCase("Quote: receipt as text", http.MethodPost, base+"/api/quotes/receipt", pinnedQuote(), http.StatusOK, expectContains("Total Final Quote:")),
		httpCase("Quote: unknown tow type -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"tow_type": "space_tug", "services": []string{"tow"}, "distance_miles": 5,
		}, http.StatusBadRequest, expectField("tow_type")),
		httpCase("Quote: unknown service -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"tow_type": "light_duty", "services": []string{"teleport"}, "distance_miles": 5,
		}, http.StatusBadRequest, expectField("services")),
		httpCase("Quote: no services -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"tow_type": "light_duty", "services": []string{}, "distance_miles": 5,
		}, http.StatusBadRequest, expectField("services")),
		httpCase("Quote: missing destination -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"tow_type": "light_duty", "services": []string{"tow"}, "source": "Dallas, TX",
		}, http.StatusBadRequest, expectField("destination")),
		httpCase("Quote: malformed json -> 400", http.MethodPost, base+"/api/quotes", "{", http.StatusBadRequest, nil),

		// Concurrency
		{
			Name: "Concurrency: identical requests agree",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentQuotes(ctx, r, base+"/api/quotes")
			},
		},

		// Performance
		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", pinnedQuote())
			},
		},
	}
}

// check inspects a response body and returns a failure note, or "" when it passes.
type check func(body []byte) string

func expectJSONKey(key string) check {
	return func(body []byte) string {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return "invalid json: " + err.Error()
		}
		if _, ok := m[key]; !ok {
			return "missing key " + key
		}
		return ""
	}
}

func expectField(field string) check {
	return func(body []byte) string {
		var resp struct {
			Field string `json:"field"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "invalid json: " + err.Error()
		}
		if resp.Field != field {
			return fmt.Sprintf("field=%q want %q", resp.Field, field)
		}
		return ""
	}
}

func expectContains(s string) check {
	return func(body []byte) string {
		if !bytes.Contains(body, []byte(s)) {
			return "body missing " + s
		}
		return ""
	}
}

func encodeBody(body any) io.Reader {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		return bytes.NewReader(raw)
	}
}

func httpCase(name, method, url string, body any, wantStatus int, verify check) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			req, _ := http.NewRequestWithContext(ctx, method, url, encodeBody(body))
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if resp.StatusCode != wantStatus {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if verify != nil {
				if note := verify(raw); note != "" {
					return Result{Status: statusFail, Latency: latency, Note: note}
				}
			}
			return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

type quoteFingerprint struct {
	FinalTotal    string `json:"final_total"`
	StandardTotal string `json:"standard_total"`
	Breakdown     string `json:"breakdown"`
}

func concurrentQuotes(ctx context.Context, r *Runner, url string) Result {
	b, _ := json.Marshal(pinnedQuote())
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	seen := map[quoteFingerprint]int{}
	var last quoteFingerprint
	failures := 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			var fp quoteFingerprint
			ok := err == nil && resp.StatusCode == http.StatusOK
			if err == nil {
				if ok {
					ok = json.NewDecoder(resp.Body).Decode(&fp) == nil
				}
				resp.Body.Close()
			}
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				failures++
				return
			}
			seen[fp]++
			last = fp
		}()
	}
	wg.Wait()

	if failures > 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("failed requests=%d", failures)}
	}
	if len(seen) != 1 {
		return Result{Status: statusFail, Note: fmt.Sprintf("distinct results=%d", len(seen))}
	}
	return Result{Status: statusPass, Note: "final_total=" + last.FinalTotal}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				if resp.StatusCode == http.StatusOK {
					count++
				} else {
					errCount++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
