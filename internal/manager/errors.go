package manager

// modelNotFoundError signals a model name with no loaded entry (return 404).
type modelNotFoundError struct{ name string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.name }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// IsModelNotFound reports whether the error indicates a missing model name.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// noCapacityError signals an exhausted context pool (return 429).
type noCapacityError struct{ name string }

func (e noCapacityError) Error() string { return "no idle context available: " + e.name }

// ErrNoCapacity constructs a noCapacityError.
func ErrNoCapacity(name string) error { return noCapacityError{name: name} }

// IsNoCapacity reports whether err indicates pool exhaustion (return 429).
func IsNoCapacity(err error) bool {
	_, ok := err.(noCapacityError)
	return ok
}

// modelDrainingError signals work rejected because an unload is in progress.
type modelDrainingError struct{ name string }

func (e modelDrainingError) Error() string { return "model draining: " + e.name }

// ErrModelDraining constructs a modelDrainingError.
func ErrModelDraining(name string) error { return modelDrainingError{name: name} }

// IsModelDraining reports whether err indicates an unload in progress (return 409).
func IsModelDraining(err error) bool {
	_, ok := err.(modelDrainingError)
	return ok
}

// drainTimeoutError signals an unload that could not drain in time. The model
// stays loaded.
type drainTimeoutError struct{ name string }

func (e drainTimeoutError) Error() string { return "unload timed out waiting for drain: " + e.name }

// ErrDrainTimeout constructs a drainTimeoutError.
func ErrDrainTimeout(name string) error { return drainTimeoutError{name: name} }

// IsDrainTimeout reports whether err indicates a failed drain wait.
func IsDrainTimeout(err error) bool {
	_, ok := err.(drainTimeoutError)
	return ok
}

// memoryLimitError signals a load rejected by the memory gate.
type memoryLimitError struct{ name string }

func (e memoryLimitError) Error() string { return "memory limit reached, cannot load: " + e.name }

// ErrMemoryLimit constructs a memoryLimitError.
func ErrMemoryLimit(name string) error { return memoryLimitError{name: name} }

// IsMemoryLimit reports whether err indicates the memory gate rejected a load.
func IsMemoryLimit(err error) bool {
	_, ok := err.(memoryLimitError)
	return ok
}

// sessionNotFoundError signals an unknown streaming session id (return 404).
type sessionNotFoundError struct{ id string }

func (e sessionNotFoundError) Error() string { return "streaming session not found: " + e.id }

// ErrSessionNotFound constructs a sessionNotFoundError.
func ErrSessionNotFound(id string) error { return sessionNotFoundError{id: id} }

// IsSessionNotFound reports whether err indicates an unknown session id.
func IsSessionNotFound(err error) bool {
	_, ok := err.(sessionNotFoundError)
	return ok
}

// invalidArgumentError signals unusable caller input (return 400).
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return e.msg }

// ErrInvalidArgument constructs an invalidArgumentError.
func ErrInvalidArgument(msg string) error { return invalidArgumentError{msg: msg} }

// IsInvalidArgument reports whether err indicates bad caller input.
func IsInvalidArgument(err error) bool {
	_, ok := err.(invalidArgumentError)
	return ok
}

// dependencyUnavailableError signals a missing native runtime (e.g., a binary
// built without the llama tag) so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
