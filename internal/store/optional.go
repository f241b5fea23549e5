package store

// Optional holds a collaborator that may not be configured in a deployment.
// Callers check presence once per call and fall back to an empty default.
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a configured collaborator
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

// None marks the collaborator as absent
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the collaborator and whether it is configured
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}
