package vdom

// Option is an optional property value. The zero Option is absent. Options of
// comparable types compare with == so props can be diffed field by field.
type Option[T comparable] struct {
	value T
	ok    bool
}

func Some[T comparable](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrZero returns the value, or T's zero value when absent.
func (o Option[T]) OrZero() T {
	return o.value
}
