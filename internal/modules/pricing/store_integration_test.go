package pricing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("CABFARE_DB_DSN")
	if dsn == "" {
		t.Skip("CABFARE_DB_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/0001_pricing_rules.sql")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return pool
}

func TestStore_SaveActivate(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewStore(pool)

	prev, prevErr := store.GetActive(ctx)
	t.Cleanup(func() {
		if prevErr == nil {
			_ = store.Activate(context.Background(), prev.Version)
		}
	})

	suffix := time.Now().UnixNano()
	first, second := mockRules(), mockRules()
	first.Version = fmt.Sprintf("it-%d-a", suffix)
	second.Version = fmt.Sprintf("it-%d-b", suffix)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM pricing_rules WHERE version = ANY($1)`,
			[]string{first.Version, second.Version})
	})

	for _, r := range []*PricingRules{first, second} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s): %v", r.Version, err)
		}
	}

	got, err := store.GetVersion(ctx, first.Version)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if got.TripTypes["point_to_point"].BaseFee.String() != "3.5" {
		t.Errorf("round trip lost base fee: %s", got.TripTypes["point_to_point"].BaseFee)
	}

	for _, v := range []string{first.Version, second.Version} {
		if err := store.Activate(ctx, v); err != nil {
			t.Fatalf("Activate(%s): %v", v, err)
		}
		active, err := store.Rules(ctx)
		if err != nil || active.Version != v {
			t.Fatalf("active = %v, %v; want %s", active, err, v)
		}
	}

	versions, err := store.ListVersions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	activeCount := 0
	for _, v := range versions {
		if v.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("active versions = %d, want 1", activeCount)
	}

	if err := store.Activate(ctx, "missing-version"); !errors.Is(err, ErrRulesNotFound) {
		t.Errorf("Activate(missing) = %v, want ErrRulesNotFound", err)
	}
	bad := mockRules()
	bad.Version = ""
	if err := store.Save(ctx, bad); err == nil {
		t.Errorf("Save without version should fail")
	}
}

type countingSource struct {
	calls int
	r     *PricingRules
}

func (c *countingSource) Rules(context.Context) (*PricingRules, error) {
	c.calls++
	return c.r, nil
}

func TestCachedSource(t *testing.T) {
	addr := os.Getenv("CABFARE_REDIS_ADDR")
	if addr == "" {
		t.Skip("CABFARE_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	next := &countingSource{r: mockRules()}
	cache := NewCachedSource(next, client, time.Minute, nil)
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	t.Cleanup(func() { _ = cache.Invalidate(context.Background()) })

	for i := 0; i < 3; i++ {
		r, err := cache.Rules(ctx)
		if err != nil {
			t.Fatalf("Rules: %v", err)
		}
		if r.Version != "test" || !r.TripTypes["point_to_point"].MinimumFare.Equal(d("20")) {
			t.Fatalf("cached document differs: %+v", r)
		}
	}
	if next.calls != 1 {
		t.Errorf("backing source calls = %d, want 1", next.calls)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Rules(ctx); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("backing source calls after invalidate = %d, want 2", next.calls)
	}
}
