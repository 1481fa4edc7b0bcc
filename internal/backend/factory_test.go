package backend

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"caixamei/internal/config"
	"caixamei/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestCreateGateway(t *testing.T) {
	f := NewFactory(testLogger())

	mem, err := f.CreateGateway(&config.Config{DataBackend: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if mem.Gateway == nil || mem.Cleanup != nil {
		t.Fatalf("unexpected memory result: %+v", mem)
	}

	lite, err := f.CreateGateway(&config.Config{
		DataBackend:  SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if lite.Cleanup == nil {
		t.Fatalf("sqlite backend must expose a cleanup")
	}
	if err := lite.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := f.CreateGateway(&config.Config{DataBackend: "cloud"}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
