// README: Versioned pricing rules documents stored in PostgreSQL.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Version is one stored document's metadata.
type Version struct {
	Version   string
	Active    bool
	CreatedAt time.Time
}

// Rules returns the active document, so a Store is a RulesSource.
func (s *Store) Rules(ctx context.Context) (*PricingRules, error) {
	return s.GetActive(ctx)
}

func (s *Store) GetActive(ctx context.Context) (*PricingRules, error) {
	row := s.db.QueryRow(ctx, `
		SELECT document
		FROM pricing_rules
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1`)
	return scanRules(row)
}

func (s *Store) GetVersion(ctx context.Context, version string) (*PricingRules, error) {
	row := s.db.QueryRow(ctx, `
		SELECT document
		FROM pricing_rules
		WHERE version = $1`, version)
	return scanRules(row)
}

// Save validates and upserts a document without changing which one is active.
func (s *Store) Save(ctx context.Context, r *PricingRules) error {
	if r.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidRules)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode pricing rules: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO pricing_rules (version, document, active, created_at)
		VALUES ($1, $2::jsonb, false, NOW())
		ON CONFLICT (version) DO UPDATE SET document = EXCLUDED.document`,
		r.Version, string(doc),
	)
	return err
}

// Activate makes version the only active document.
func (s *Store) Activate(ctx context.Context, version string) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE pricing_rules SET active = false WHERE active AND version <> $1`, version); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE pricing_rules SET active = true WHERE version = $1`, version)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrRulesNotFound
		}
		return nil
	})
}

func (s *Store) ListVersions(ctx context.Context) ([]Version, error) {
	rows, err := s.db.Query(ctx, `
		SELECT version, active, created_at
		FROM pricing_rules
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.Version, &v.Active, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanRules(row pgx.Row) (*PricingRules, error) {
	var doc []byte
	err := row.Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRulesNotFound
	}
	if err != nil {
		return nil, err
	}
	return ParseRules(doc)
}
