package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  zapcore.Level
	}{
		{env: "development", want: zapcore.DebugLevel},
		{env: "production", want: zapcore.InfoLevel},
		{env: "production", level: "warn", want: zapcore.WarnLevel},
		{env: "local", level: " ERROR ", want: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		log, err := New(tt.env, tt.level)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tt.env, tt.level, err)
		}
		if !log.Core().Enabled(tt.want) {
			t.Fatalf("expected %s enabled for %q/%q", tt.want, tt.env, tt.level)
		}
		if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
			t.Fatalf("expected %s disabled for %q/%q", tt.want-1, tt.env, tt.level)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("production", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
