//go:build !llama

package llama

// This file provides a no-CGO stub compiled when the 'llama' build tag is NOT
// set, keeping default builds and CI CGO-free. The real binding lives in
// backend_cgo.go (tagged 'llama'). The stub refuses to initialize rather than
// mock inference in production binaries.

import "errors"

// ErrNotBuilt is returned by Init when the binary was built without the
// 'llama' tag.
var ErrNotBuilt = errors.New("llama runtime not built (missing 'llama' build tag)")

type stubBackend struct{}

// NewBackend returns the runtime for this build. Without the 'llama' tag it
// fails fast on Init so callers can surface a clear unavailability error.
func NewBackend() Backend { return stubBackend{} }

func (stubBackend) Init() error { return ErrNotBuilt }

func (stubBackend) Free() {}

func (stubBackend) LoadModel(path string, p ModelParams) (Model, error) {
	return nil, ErrNotBuilt
}

func (stubBackend) Devices() []DeviceInfo {
	return []DeviceInfo{{Name: "cpu", Description: "stub", GPU: false}}
}
