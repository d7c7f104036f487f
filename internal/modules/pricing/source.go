// README: Rules providers; the file source serves a JSON document or the bundled defaults.
package pricing

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
)

var ErrRulesNotFound = errors.New("pricing rules not found")

// RulesSource supplies the active rules document. Implementations return a
// validated document that callers must treat as read-only.
type RulesSource interface {
	Rules(ctx context.Context) (*PricingRules, error)
}

//go:embed defaults.json
var defaultRules []byte

// DefaultRules returns a fresh copy of the bundled rules document.
func DefaultRules() (*PricingRules, error) {
	return ParseRules(defaultRules)
}

type FileSource struct {
	rules *PricingRules
}

// NewFileSource parses path once; an empty path selects the bundled defaults.
func NewFileSource(path string) (*FileSource, error) {
	data := defaultRules
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
		data = b
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, err
	}
	return &FileSource{rules: r}, nil
}

func (s *FileSource) Rules(ctx context.Context) (*PricingRules, error) {
	return s.rules, nil
}

// StaticSource serves an already-built document.
type StaticSource struct {
	R *PricingRules
}

func (s StaticSource) Rules(ctx context.Context) (*PricingRules, error) {
	if s.R == nil {
		return nil, ErrRulesNotFound
	}
	return s.R, nil
}
