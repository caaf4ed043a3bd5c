package model

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T comparable] struct {
	value T
	ok    bool
}

func Some[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

func None[T comparable]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsSome() bool {
	return o.ok
}

// Or returns the value, or fallback when absent.
func (o Optional[T]) Or(fallback T) T {
	if !o.ok {
		return fallback
	}
	return o.value
}

func (o Optional[T]) Equal(other Optional[T]) bool {
	if o.ok != other.ok {
		return false
	}
	return !o.ok || o.value == other.value
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
