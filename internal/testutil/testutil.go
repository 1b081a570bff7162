// Package testutil provides helpers shared by the tests of the module.
package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// SQLiteFile returns the path of a uniquely named database file in a
// temporary directory removed when the test ends.
func SQLiteFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".db")
}
