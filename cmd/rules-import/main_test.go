package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cabfare/internal/config"
	"cabfare/internal/modules/pricing"
)

func TestRun_ReturnsErrors(t *testing.T) {
	dir := t.TempDir()

	r, err := pricing.DefaultRules()
	if err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	valid := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(valid, body, 0o600); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"tripTypes":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		file   string
		target string
		want   string
		is     error
	}{
		{name: "missing file", file: filepath.Join(dir, "nope.json"), target: config.SourcePostgres, want: "read rules file"},
		{name: "invalid document", file: invalid, target: config.SourcePostgres, is: pricing.ErrInvalidRules},
		{name: "unknown target", file: valid, target: "s3", want: `unknown target "s3"`},
		{name: "postgres without dsn", file: valid, target: config.SourcePostgres, want: "CABFARE_DB_DSN is required"},
		{name: "firestore without project", file: valid, target: config.SourceFirestore, want: "CABFARE_FIREBASE_PROJECT_ID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(config.Config{}, zap.NewNop(), tt.file, tt.target, true)
			if err == nil {
				t.Fatal("run() error = nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("run() error = %v, want %v", err, tt.is)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want %q", err, tt.want)
			}
		})
	}
}
