package warehouse

import (
	"fmt"
	"reflect"
)

// RegistryFullError is returned when a dynamic registry has already
// assigned ordinals to Capacity distinct component types and a new
// type is registered.
type RegistryFullError struct {
	Capacity int
}

func (e RegistryFullError) Error() string {
	return fmt.Sprintf("warehouse: registry full (capacity %d)", e.Capacity)
}

// MissingComponentError is returned when a handle is resolved against
// a typed view whose component set the entity's archetype does not
// satisfy.
type MissingComponentError struct {
	Type reflect.Type
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("warehouse: component %v not present", e.Type)
}

// InvalidHandleError is returned when a Handle no longer identifies a
// live row: its generation doesn't match the slot's current
// generation, or its archetype ordinal/row index is out of range.
type InvalidHandleError struct {
	Handle Handle
}

func (e InvalidHandleError) Error() string {
	return fmt.Sprintf("warehouse: invalid handle %#x", uint64(e.Handle))
}

// DoubleFreeError is returned when Remove is called on a handle whose
// slot is already free.
type DoubleFreeError struct {
	Handle Handle
}

func (e DoubleFreeError) Error() string {
	return fmt.Sprintf("warehouse: double free of handle %#x", uint64(e.Handle))
}
