package manager

// SanityReport describes a probe of the native inference runtime.
type SanityReport struct {
	BackendAvailable bool   `json:"backend_available"`
	Devices          int    `json:"devices,omitempty"`
	Error            string `json:"error,omitempty"`
}

// SanityCheck probes the native runtime. A successful probe leaves the
// backend initialized; a failed one reports why inference is unavailable,
// typically a binary built without the 'llama' tag. Safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	var r SanityReport
	if err := m.ensureBackend(); err != nil {
		r.Error = err.Error()
		return r
	}
	r.BackendAvailable = true
	r.Devices = len(m.backend.Devices())
	return r
}
