// README: Bench cases: dependency checks, quote API contract checks, and quote throughput.
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
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
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
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer func() { _ = r.redis.Close() }()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
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
	return results
}

// Tuesday noon, so time-based modifiers in the bundled rules stay quiet.
const offPeak = "2026-02-10T12:00:00Z"

func tenMiles(vehicle string, passengers int) map[string]any {
	return map[string]any{
		"trip_type":       "point_to_point",
		"distance":        17600,
		"vehicle_type":    vehicle,
		"passenger_count": passengers,
		"pickup_time":     offPeak,
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "dsn not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "dsn not set"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK, nil),
		httpCase("API: metrics exposed", http.MethodGet, base+"/metrics", nil, http.StatusOK, nil),
		httpCase("API: active rules", http.MethodGet, base+"/api/pricing/rules", nil, http.StatusOK, nil),

		httpCase("Quote: ten miles sedan", http.MethodPost, base+"/api/fares/quote",
			tenMiles("sedan", 1), http.StatusOK, expectTotal(29)),
		httpCase("Quote: suv five passengers", http.MethodPost, base+"/api/fares/quote",
			tenMiles("suv", 5), http.StatusOK, expectTotal(43)),
		httpCase("Quote: minimum fare", http.MethodPost, base+"/api/fares/quote", map[string]any{
			"trip_type":    "airport_transfer",
			"distance":     1000,
			"vehicle_type": "sedan",
			"pickup_time":  offPeak,
		}, http.StatusOK, expectTotal(28)),
		httpCase("Quote: missing trip type -> 400", http.MethodPost, base+"/api/fares/quote",
			map[string]any{"distance": 100}, http.StatusBadRequest, nil),
		httpCase("Quote: disabled trip type -> 422", http.MethodPost, base+"/api/fares/quote",
			map[string]any{"trip_type": "hourly", "distance": 100}, http.StatusUnprocessableEntity, nil),
		httpCase("Quote: every vehicle class", http.MethodPost, base+"/api/fares/quote/vehicles",
			tenMiles("", 1), http.StatusOK, nil),

		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/fares/quote", tenMiles("sedan", 1))
			},
		},
		{
			Name: "Perf: vehicle fan-out throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/fares/quote/vehicles", tenMiles("", 1))
			},
		},
	}
}

// check inspects a successful response body.
type check func(body []byte) error

func expectTotal(want int64) check {
	return func(body []byte) error {
		var q struct {
			Total struct {
				Amount int64 `json:"amount"`
			} `json:"total"`
		}
		if err := json.Unmarshal(body, &q); err != nil {
			return err
		}
		if q.Total.Amount != want {
			return fmt.Errorf("total=%d want %d", q.Total.Amount, want)
		}
		return nil
	}
}

func httpCase(name, method, url string, body any, wantStatus int, verify check) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = bytes.NewReader(b)
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			data, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			latency := time.Since(start)

			if resp.StatusCode != wantStatus {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if verify != nil {
				if err := verify(data); err != nil {
					return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
				}
			}
			return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64

	var g errgroup.Group
	for i := 0; i < r.cfg.Concurrency; i++ {
		g.Go(func() error {
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if count.Load() == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

var createTable = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTable.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}
