// internal/utils/logger/logger_test.go
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	l, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("hello")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNewFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(&Config{File: path, Quiet: true})
	require.NoError(t, err)

	l.Info("written to file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewQuietWithoutFile(t *testing.T) {
	l, err := New(&Config{Quiet: true})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("dropped")
}
