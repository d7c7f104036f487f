package pricing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
)

// Runs against the Firestore emulator only.
func TestFirestoreSource_PublishAndRead(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "cabfare-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })

	src := NewFirestoreSource(client, fmt.Sprintf("pricing_rules_%d", time.Now().UnixNano()))
	if _, err := src.Rules(ctx); !errors.Is(err, ErrRulesNotFound) {
		t.Fatalf("empty collection: %v, want ErrRulesNotFound", err)
	}

	for _, v := range []string{"v1", "v2"} {
		r := mockRules()
		r.Version = v
		if err := src.Publish(ctx, r); err != nil {
			t.Fatalf("Publish(%s): %v", v, err)
		}
		got, err := src.Rules(ctx)
		if err != nil || got.Version != v {
			t.Fatalf("Rules() = %v, %v; want %s", got, err, v)
		}
	}

	if err := src.Publish(ctx, &PricingRules{Version: "broken"}); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("Publish(invalid) = %v, want ErrInvalidRules", err)
	}
}
