package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.env)
		t.Setenv("LOG_ENCODING", "console")

		logger, err := NewLogger("submeter-service")
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", tt.env, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("LOG_LEVEL=%q: level %s not enabled", tt.env, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("LOG_LEVEL=%q: level %s unexpectedly enabled", tt.env, tt.want-1)
		}
	}
}
