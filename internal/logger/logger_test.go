package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerForEnv(t *testing.T) {
	var buf bytes.Buffer
	slog.New(handlerFor("prod", &buf)).Info("booking created", "id", 7)
	assert.Contains(t, buf.String(), `"msg":"booking created"`)

	buf.Reset()
	l := slog.New(handlerFor("dev", &buf))
	l.Debug("claim released", "table", 4)
	assert.Contains(t, buf.String(), "msg=\"claim released\"")
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	l, err := New("prod", path)
	require.NoError(t, err)
	l.Info("started")
	assert.FileExists(t, path)
}
