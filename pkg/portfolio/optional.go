package portfolio

import (
	"bytes"
	"encoding/json"
)

// Optional is a field of a partial update. The zero value is unset.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns an Optional that explicitly clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// FromPtr returns Null for a nil pointer and Some(*p) otherwise.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// IsSet reports whether the field was present in the input, null or not.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was present with an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and true when the field holds a non-null value.
func (o Optional[T]) Get() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Ptr returns a pointer to a copy of the value, or nil for unset and null.
func (o Optional[T]) Ptr() *T {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return &v
}

// apply writes the field into dst when it is set. Null stores nil.
func (o Optional[T]) apply(dst **T) {
	if !o.set {
		return
	}
	*dst = o.Ptr()
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
