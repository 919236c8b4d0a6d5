package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ErrorsGoToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	var out bytes.Buffer
	log, closer := New(&out, EnvLocal, path)

	log.Debug("debug line")
	log.Info("info line")
	log.Error("error line", "op", "test")
	require.NoError(t, closer.Close())

	assert.Contains(t, out.String(), "debug line")
	assert.Contains(t, out.String(), "error line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "error line")
	assert.Contains(t, string(data), "op=test")
	assert.NotContains(t, string(data), "info line")
}

func TestNew_ProdSkipsDebug(t *testing.T) {
	var out bytes.Buffer
	log, closer := New(&out, EnvProd, "")
	defer closer.Close()

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestNew_DevIsJSON(t *testing.T) {
	var out bytes.Buffer
	log, closer := New(&out, EnvDev, "")
	defer closer.Close()

	log.With("request_id", "r1").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "r1", entry["request_id"])
}

func TestNew_UnwritableErrorLog(t *testing.T) {
	var out bytes.Buffer
	log, closer := New(&out, EnvLocal, filepath.Join(t.TempDir(), "missing", "errors.log"))
	defer closer.Close()

	log.Error("still logged")

	assert.Contains(t, out.String(), "cannot open error log file")
	assert.Contains(t, out.String(), "still logged")
}
