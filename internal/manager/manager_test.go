package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inferd/internal/llama/llamatest"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Backend: llamatest.New()})
	defer m.Close()
	if m.maxPoolSize != defaultMaxPoolSize {
		t.Fatalf("expected default maxPoolSize=%d got %d", defaultMaxPoolSize, m.maxPoolSize)
	}
	if m.contextTTL != defaultContextTTL {
		t.Fatalf("expected default contextTTL=%v got %v", defaultContextTTL, m.contextTTL)
	}
	if m.drainTimeout != defaultDrainTimeout {
		t.Fatalf("expected default drainTimeout=%v got %v", defaultDrainTimeout, m.drainTimeout)
	}
	if m.batchWorkers != defaultBatchWorkers {
		t.Fatalf("expected default batchWorkers=%d got %d", defaultBatchWorkers, m.batchWorkers)
	}
	if m.streamRetention != defaultStreamRetention {
		t.Fatalf("expected default streamRetention=%v got %v", defaultStreamRetention, m.streamRetention)
	}
	if m.publisher == nil {
		t.Fatalf("publisher not defaulted")
	}
}

func TestLoadModelAndIntrospection(t *testing.T) {
	pub := NewMemoryPublisher()
	m, be := newTestManager(t, ManagerConfig{Publisher: pub})
	loadTestModel(t, m, "beta")
	loadTestModel(t, m, "alpha")

	if !m.Ready() {
		t.Fatalf("backend should be initialized after first load")
	}
	if !m.IsModelLoaded("alpha") || m.IsModelLoaded("gamma") {
		t.Fatalf("IsModelLoaded wrong")
	}
	if got := m.LoadedModelCount(); got != 2 {
		t.Fatalf("expected 2 loaded, got %d", got)
	}
	names := m.LoadedModelNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("expected sorted names [alpha beta], got %v", names)
	}
	if len(pub.Named(EventModelLoaded)) != 2 {
		t.Fatalf("expected 2 load events")
	}
	if got := len(be.Models()); got != 2 {
		t.Fatalf("expected 2 native loads, got %d", got)
	}
}

func TestLoadModelValidation(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	if err := m.LoadModel("", ModelConfig{Path: "x.gguf"}); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid-argument for empty name, got %v", err)
	}
	if err := m.LoadModel("m", ModelConfig{}); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid-argument for empty path, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.gguf")
	if err := m.LoadModel("m", ModelConfig{Path: missing}); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid-argument for missing file, got %v", err)
	}
}

func TestLoadModelDuplicateIsNoop(t *testing.T) {
	m, be := newTestManager(t, ManagerConfig{})
	path := loadTestModel(t, m, "m")
	if err := m.LoadModel("m", ModelConfig{Path: path}); err != nil {
		t.Fatalf("duplicate load: %v", err)
	}
	if got := m.LoadedModelCount(); got != 1 {
		t.Fatalf("expected 1 loaded, got %d", got)
	}
	if got := len(be.Models()); got != 1 {
		t.Fatalf("duplicate load must not hit the backend again, got %d loads", got)
	}
}

func TestLoadModelBackendInitRetry(t *testing.T) {
	m, be := newTestManager(t, ManagerConfig{})
	be.InitErr = errTest
	path := writeWeights(t, t.TempDir(), "m.gguf")
	if err := m.LoadModel("m", ModelConfig{Path: path}); !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency-unavailable, got %v", err)
	}
	if m.Ready() {
		t.Fatalf("failed init must leave the manager uninitialized")
	}
	be.InitErr = nil
	if err := m.LoadModel("m", ModelConfig{Path: path}); err != nil {
		t.Fatalf("load after init recovery: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready after successful load")
	}
}

func TestLoadModelBadHeaderWarnsButLoads(t *testing.T) {
	pub := NewMemoryPublisher()
	m, _ := newTestManager(t, ManagerConfig{Publisher: pub})
	p := filepath.Join(t.TempDir(), "odd.gguf")
	if err := os.WriteFile(p, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.LoadModel("odd", ModelConfig{Path: p}); err != nil {
		t.Fatalf("load should proceed past a header warning: %v", err)
	}
	if len(pub.Named(EventModelFileWarning)) != 1 {
		t.Fatalf("expected a file warning event")
	}
}

func TestMemoryLimitGatesLoads(t *testing.T) {
	// Each fake model estimates 2 MiB (1 Mi params at two bytes each), so a
	// 2 MB limit admits exactly one.
	m, _ := newTestManager(t, ManagerConfig{MemoryLimitMB: 2})
	loadTestModel(t, m, "a")
	if m.CheckMemoryLimit() {
		t.Fatalf("expected limit reached after first load")
	}
	pathB := writeWeights(t, t.TempDir(), "b.gguf")
	if err := m.LoadModel("b", ModelConfig{Path: pathB}); !IsMemoryLimit(err) {
		t.Fatalf("expected memory-limit error, got %v", err)
	}
	if err := m.UnloadModel("a"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if err := m.LoadModel("b", ModelConfig{Path: pathB}); err != nil {
		t.Fatalf("load after unload: %v", err)
	}
}

func TestUnloadUnknownModel(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	if err := m.UnloadModel("ghost"); !IsModelNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUnloadFreesResources(t *testing.T) {
	pub := NewMemoryPublisher()
	m, be := newTestManager(t, ManagerConfig{Publisher: pub})
	path := loadTestModel(t, m, "m")
	if _, err := m.Generate(context.Background(), "m", "warm up", GenerationParams{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := m.UnloadModel("m"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if m.IsModelLoaded("m") {
		t.Fatalf("model still loaded")
	}
	if be.LiveContexts() != 0 {
		t.Fatalf("context leak: %d", be.LiveContexts())
	}
	if !be.ModelFor(path).Freed() {
		t.Fatalf("weights not freed")
	}
	if got := m.metrics.MemoryUsage(); got != 0 {
		t.Fatalf("memory gauge not released: %d", got)
	}
	if snap := m.metrics.Snapshot(); snap.PoolSize != 0 {
		t.Fatalf("pool gauge not released: %d", snap.PoolSize)
	}
	if len(pub.Named(EventUnloadDone)) != 1 {
		t.Fatalf("expected one unload_done event")
	}
}

func TestUnloadWaitsForInFlightWork(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{DrainTimeout: 2 * time.Second})
	loadTestModel(t, m, "m")
	lm, entry, err := m.acquireContext("m")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	unloadDone := make(chan error, 1)
	go func() { unloadDone <- m.UnloadModel("m") }()

	select {
	case err := <-unloadDone:
		t.Fatalf("unload returned while a context was checked out: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	m.releaseContext(lm, entry)
	select {
	case err := <-unloadDone:
		if err != nil {
			t.Fatalf("unload after release: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("unload did not finish after release")
	}
	if m.IsModelLoaded("m") {
		t.Fatalf("model still loaded")
	}
}

func TestUnloadRejectsNewWorkWhileDraining(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{DrainTimeout: 2 * time.Second})
	loadTestModel(t, m, "m")
	lm, entry, err := m.acquireContext("m")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	unloadDone := make(chan error, 1)
	go func() { unloadDone <- m.UnloadModel("m") }()

	// Wait until the drain flag is visible; acquires that sneak in ahead of
	// it have to be handed back.
	deadline := time.Now().Add(time.Second)
	for {
		extraLM, extraEntry, err := m.acquireContext("m")
		if IsModelDraining(err) {
			break
		}
		if err == nil {
			m.releaseContext(extraLM, extraEntry)
		}
		if time.Now().After(deadline) {
			t.Fatalf("drain flag never observed, last err=%v", err)
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := m.GetModel("m"); !IsModelDraining(err) {
		t.Fatalf("expected draining from GetModel, got %v", err)
	}
	if err := m.UnloadModel("m"); !IsModelDraining(err) {
		t.Fatalf("expected draining from concurrent unload, got %v", err)
	}

	m.releaseContext(lm, entry)
	if err := <-unloadDone; err != nil {
		t.Fatalf("unload: %v", err)
	}
}

func TestUnloadTimesOutAndRestoresModel(t *testing.T) {
	pub := NewMemoryPublisher()
	m, _ := newTestManager(t, ManagerConfig{DrainTimeout: 50 * time.Millisecond, Publisher: pub})
	loadTestModel(t, m, "m")
	lm, entry, err := m.acquireContext("m")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := m.UnloadModel("m"); !IsDrainTimeout(err) {
		t.Fatalf("expected drain timeout, got %v", err)
	}
	if !m.IsModelLoaded("m") {
		t.Fatalf("model must stay loaded after a failed drain")
	}
	if len(pub.Named(EventUnloadTimeout)) != 1 {
		t.Fatalf("expected an unload_timeout event")
	}

	// The drain flag is rolled back, so the model serves again.
	m.releaseContext(lm, entry)
	if _, err := m.Generate(context.Background(), "m", "still here", GenerationParams{}); err != nil {
		t.Fatalf("generate after failed unload: %v", err)
	}
	if err := m.UnloadModel("m"); err != nil {
		t.Fatalf("unload once idle: %v", err)
	}
}

func TestModelHandleBlocksUnload(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{DrainTimeout: 50 * time.Millisecond})
	loadTestModel(t, m, "m")
	h, err := m.GetModel("m")
	if err != nil {
		t.Fatalf("GetModel: %v", err)
	}
	if h.Name() != "m" || h.Config().CtxSize != defaultCtxSize {
		t.Fatalf("unexpected handle: name=%s ctx=%d", h.Name(), h.Config().CtxSize)
	}
	if h.EstimatedBytes() != 2<<20 {
		t.Fatalf("expected 2 MiB estimate, got %d", h.EstimatedBytes())
	}
	if err := m.UnloadModel("m"); !IsDrainTimeout(err) {
		t.Fatalf("expected drain timeout under an open handle, got %v", err)
	}

	h.Close()
	h.Close() // idempotent
	info, err := m.ModelInfo("m")
	if err != nil {
		t.Fatalf("ModelInfo: %v", err)
	}
	if info.RefCount != 0 {
		t.Fatalf("expected refcount 0, got %d", info.RefCount)
	}
	if err := m.UnloadModel("m"); err != nil {
		t.Fatalf("unload after handle close: %v", err)
	}
	if _, err := m.GetModel("m"); !IsModelNotFound(err) {
		t.Fatalf("expected not-found after unload, got %v", err)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	m, be := newTestManager(t, ManagerConfig{})
	loadTestModel(t, m, "a")
	loadTestModel(t, m, "b")
	if _, err := m.Generate(context.Background(), "a", "warm", GenerationParams{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := m.LoadedModelCount(); got != 0 {
		t.Fatalf("expected no models after close, got %d", got)
	}
	if be.LiveContexts() != 0 {
		t.Fatalf("context leak: %d", be.LiveContexts())
	}
	if be.Initialized() {
		t.Fatalf("backend should be freed")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
