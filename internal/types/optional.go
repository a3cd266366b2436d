package types

// Optional is a tagged two-state value distinguishing "set to v" from
// "not provided". It exists so partial updates can say nothing about a field
// without overloading the zero value or a nil pointer.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Present reports whether a value was provided.
func (o Optional[T]) Present() bool {
	return o.set
}

// Value returns the held value and whether it was provided.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.set
}

// Or returns the held value when present, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}
