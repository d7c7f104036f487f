package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"cabfare/internal/metrics"
)

func TestCachedSource_RedisDownFallsBack(t *testing.T) {
	// port 1 on loopback refuses connections
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	next := &countingSource{r: mockRules()}
	cache := NewCachedSource(next, client, time.Minute, nil)
	misses := testutil.ToFloat64(metrics.RulesCacheMisses)

	for i := 0; i < 2; i++ {
		r, err := cache.Rules(context.Background())
		if err != nil {
			t.Fatalf("Rules() error = %v", err)
		}
		if r.Version != "test" {
			t.Errorf("Rules() version = %q, want test", r.Version)
		}
	}

	if next.calls != 2 {
		t.Errorf("backing source calls = %d, want 2", next.calls)
	}
	if got := testutil.ToFloat64(metrics.RulesCacheMisses) - misses; got != 2 {
		t.Errorf("cache misses grew by %v, want 2", got)
	}
}
