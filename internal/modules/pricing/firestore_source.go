// README: Rules source reading the active document from a Firestore collection.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// firestoreRules is the stored shape. The rules JSON is kept as a string so
// amounts are not converted to floats.
type firestoreRules struct {
	Version  string `firestore:"version"`
	Active   bool   `firestore:"active"`
	Document string `firestore:"document"`
}

type FirestoreSource struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreSource(client *firestore.Client, collection string) *FirestoreSource {
	return &FirestoreSource{client: client, collection: collection}
}

func (s *FirestoreSource) Rules(ctx context.Context) (*PricingRules, error) {
	iter := s.client.Collection(s.collection).Where("active", "==", true).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrRulesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore rules query: %w", err)
	}
	var doc firestoreRules
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore rules decode: %w", err)
	}
	return ParseRules([]byte(doc.Document))
}

// Publish stores r under its version and makes it the only active document.
func (s *FirestoreSource) Publish(ctx context.Context, r *PricingRules) error {
	if r.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidRules)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode pricing rules: %w", err)
	}

	col := s.client.Collection(s.collection)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		active, err := tx.Documents(col.Where("active", "==", true)).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range active {
			if snap.Ref.ID == r.Version {
				continue
			}
			if err := tx.Update(snap.Ref, []firestore.Update{{Path: "active", Value: false}}); err != nil {
				return err
			}
		}
		return tx.Set(col.Doc(r.Version), firestoreRules{
			Version:  r.Version,
			Active:   true,
			Document: string(data),
		})
	})
}
