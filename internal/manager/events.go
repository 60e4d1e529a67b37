package manager

// Event names published over a Manager's lifetime.
const (
	EventModelLoaded      = "model_loaded"
	EventModelFileWarning = "model_file_warning"
	EventUnloadStart      = "unload_start"
	EventUnloadTimeout    = "unload_timeout"
	EventUnloadDone       = "unload_done"
	EventContextExpired   = "context_expired"
	EventStreamStarted    = "stream_started"
	EventStreamStopped    = "stream_stopped"
	EventStreamFinished   = "stream_finished"
	EventBatchSubmitted   = "batch_submitted"
	EventBatchCompleted   = "batch_completed"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + model name and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
