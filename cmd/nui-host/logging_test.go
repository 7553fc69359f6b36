package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativeui-go/nativeui/pkg/log"
)

func TestSetupLoggingProtocolTargets(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantProto bool
		wantZap   bool
	}{
		{"info text", Config{LogLevel: "info", LogFormat: "text"}, false, false},
		{"debug text", Config{LogLevel: "debug", LogFormat: "text"}, true, false},
		{"zap", Config{LogLevel: "info", LogFormat: "zap"}, true, true},
		{"file", Config{LogLevel: "warn", LogFormat: "json", ProtocolLog: "trace.nlog"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.ProtocolLog != "" {
				tt.cfg.ProtocolLog = filepath.Join(t.TempDir(), tt.cfg.ProtocolLog)
			}
			var buf bytes.Buffer
			l, err := setupLogging(tt.cfg, &buf)
			require.NoError(t, err)
			defer l.Close()

			assert.Equal(t, tt.wantProto, l.protocol != nil)
			assert.Equal(t, tt.wantZap, l.zap != nil)
			assert.NotNil(t, l.slog)
		})
	}
}

func TestZapProtocolOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := setupLogging(Config{LogLevel: "debug", LogFormat: "zap"}, &buf)
	require.NoError(t, err)

	l.protocol.Log(log.Event{SessionID: "s1", EntityID: "btn1"})
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), "protocol")
	assert.Contains(t, buf.String(), "btn1")
}

func TestJSONDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	l, err := setupLogging(Config{LogLevel: "info", LogFormat: "json"}, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.slog.Info("connected", "native", "sim")
	l.slog.Debug("hidden")
	assert.Contains(t, buf.String(), `"msg":"connected"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}
