package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level      string
		production bool
		wantErr    bool
		enabled    zapcore.Level
		disabled   zapcore.Level
	}{
		{level: "debug", enabled: zapcore.DebugLevel, disabled: zapcore.DebugLevel - 1},
		{level: "warn", production: true, enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, tt.production)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			core := l.Core()
			if !core.Enabled(tt.enabled) || core.Enabled(tt.disabled) {
				t.Errorf("level %q: enabled(%v)=%v enabled(%v)=%v", tt.level, tt.enabled, core.Enabled(tt.enabled), tt.disabled, core.Enabled(tt.disabled))
			}
		})
	}
}
