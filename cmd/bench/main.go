// README: Smoke and load runner against a running fare-api; prints PASS/FAIL per case.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL       string
	DSN           string
	RedisAddr     string
	MigrationPath string
	Timeout       time.Duration
	Concurrency   int
	Duration      time.Duration
}

// Flags win over CABFARE_BENCH_* env vars, which win over defaults.
func loadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("CABFARE_BENCH")
	v.AutomaticEnv()
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("dsn", "")
	v.SetDefault("redis", "")
	v.SetDefault("migration", "migrations/0001_pricing_rules.sql")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("concurrency", 20)
	v.SetDefault("duration", 10*time.Second)

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", v.GetString("base_url"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", v.GetString("dsn"), "Postgres DSN; empty skips database checks")
	flag.StringVar(&cfg.RedisAddr, "redis", v.GetString("redis"), "Redis address; empty skips cache checks")
	flag.StringVar(&cfg.MigrationPath, "migration", v.GetString("migration"), "Migration SQL path")
	flag.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("timeout"), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("concurrency"), "Concurrency for load cases")
	flag.DurationVar(&cfg.Duration, "duration", v.GetDuration("duration"), "Duration of each load case")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}
