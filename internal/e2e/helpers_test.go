package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inferd/internal/httpapi"
	"inferd/internal/llama/llamatest"
	"inferd/internal/manager"
	"inferd/pkg/types"
)

// writeWeights creates a small file with a valid GGUF header under dir and
// returns its path.
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

// newServer starts the full HTTP stack over a fake backend: a manager with
// test-scale timeouts, the router, and an httptest server. Cleanup shuts both
// down. The backend is returned so tests can reach its fault knobs.
func newServer(t *testing.T, cfg manager.ManagerConfig) (*httptest.Server, *llamatest.Backend) {
	t.Helper()
	be := llamatest.New()
	cfg.Backend = be
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 500 * time.Millisecond
	}
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close()
	})
	return srv, be
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpDelete(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// loadModel loads the weights at path over HTTP, failing the test on any
// non-200 answer, and returns the name the model was registered under.
func loadModel(t *testing.T, srv *httptest.Server, path string) string {
	t.Helper()
	resp, body := httpPostJSON(t, srv.URL+"/v1/models/load", mustJSON(t, types.LoadModelRequest{Path: path}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load %s: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	var lr types.LoadModelResponse
	decodeInto(t, body, &lr)
	return lr.ModelName
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decodeInto(t *testing.T, body []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(body, dst); err != nil {
		t.Fatalf("json: %v body=%s", err, string(body))
	}
}

// waitForInUse polls the pool report until model shows n checked-out contexts.
func waitForInUse(t *testing.T, srv *httptest.Server, model string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, body := httpGet(t, srv.URL+"/v1/pools")
		var pools types.PoolStatusResponse
		decodeInto(t, body, &pools)
		for _, p := range pools.Pools {
			if p.Model == model && p.InUse == n {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("pool for %s never reached in_use=%d: %+v", model, n, pools)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
