package manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inferd/internal/llama/llamatest"
)

var errTest = errors.New("test failure")

// writeWeights creates a small file with a valid GGUF header under dir.
func writeWeights(t *testing.T, dir, name string) string {
	t.Helper()
	buf := make([]byte, 2048)
	copy(buf, "GGUF")
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf, 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return p
}

// newTestManager builds a Manager over a fresh fake backend with test-scale
// timeouts. Cleanup closes it.
func newTestManager(t *testing.T, cfg ManagerConfig) (*Manager, *llamatest.Backend) {
	t.Helper()
	be := llamatest.New()
	cfg.Backend = be
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 500 * time.Millisecond
	}
	m := NewWithConfig(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m, be
}

// loadTestModel writes weights into a temp dir and loads them under name.
func loadTestModel(t *testing.T, m *Manager, name string) string {
	t.Helper()
	path := writeWeights(t, t.TempDir(), name+".gguf")
	if err := m.LoadModel(name, ModelConfig{Path: path}); err != nil {
		t.Fatalf("LoadModel(%s): %v", name, err)
	}
	return path
}
