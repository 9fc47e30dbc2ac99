package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms-console/internal/config"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, WARN, "text")

	Info("hidden")
	Warnf("shown %d", 1)
	Errorf("also %s", "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN: shown 1")
	assert.Contains(t, out, "ERROR: also shown")
}

func TestJSONFormatEscapes(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, DEBUG, "json")

	Debug(`quote " and newline` + "\n")

	var entry map[string]string
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "quote \" and newline\n", entry["msg"])
}

func TestSetupRejectsBadConfig(t *testing.T) {
	assert.Error(t, Setup(config.LogConfig{Level: "loud", Format: "text", Output: "console"}))
	assert.Error(t, Setup(config.LogConfig{Level: "info", Format: "xml", Output: "console"}))
	assert.Error(t, Setup(config.LogConfig{Level: "info", Format: "text", Output: "syslog"}))
}

func TestSetupFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	require.NoError(t, Setup(config.LogConfig{Level: "info", Format: "text", Output: "file", FilePath: path}))
	t.Cleanup(Close)

	Info("persisted")
	assert.FileExists(t, path)
}
