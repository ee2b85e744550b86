package warehouse

import "reflect"

// WorldEvents holds optional hooks an embedding application can install
// to observe World activity. Any hook left nil is simply not called.
type WorldEvents struct {
	OnArchetypeCreated func(mask Mask)
	OnInsert           func(h Handle)
	OnRemove           func(h Handle)
}

// World owns every Archetype and the Registry resolving component
// types to ordinals. It is the entry point for Insert*/Entity*/Remove
// and for constructing queries and cursors. World is not safe for
// concurrent use; mutating it while a Cursor iterates is undefined
// behavior.
type World struct {
	registry   Registry
	archetypes []*Archetype
	byMask     map[Mask]archetypeID
	events     WorldEvents
}

// NewWorld creates a World backed by the given Registry.
func NewWorld(reg Registry) *World {
	return &World{
		registry: reg,
		byMask:   make(map[Mask]archetypeID),
	}
}

// SetEvents installs the WorldEvents hooks used by this World.
func (w *World) SetEvents(events WorldEvents) {
	w.events = events
}

// Registry returns the World's component registry.
func (w *World) Registry() Registry {
	return w.registry
}

// archetypeFor returns the archetype for mask, creating it if absent.
func (w *World) archetypeFor(mask Mask) *Archetype {
	if id, ok := w.byMask[mask]; ok {
		return w.archetypes[id]
	}
	id := archetypeID(len(w.archetypes))
	arche := newArchetype(id, w.registry, mask)
	w.archetypes = append(w.archetypes, arche)
	w.byMask[mask] = id
	if w.events.OnArchetypeCreated != nil {
		w.events.OnArchetypeCreated(mask)
	}
	return arche
}

// Archetypes returns every archetype that currently exists in w.
func (w *World) Archetypes() []*Archetype {
	return w.archetypes
}

func ordinalFor[T any](w *World) (Ordinal, error) {
	var zero T
	return w.registry.OrdinalOf(reflect.TypeOf(zero))
}

func writeColumn[T any](a *Archetype, row []byte, ord Ordinal, v T) {
	dst := columnPointer(row, a.offsetFor(ord))
	*(*T)(dst) = v
}

func readColumn[T any](a *Archetype, row []byte, ord Ordinal) *T {
	return (*T)(columnPointer(row, a.offsetFor(ord)))
}

// resolve validates h against w's archetype table, returning the
// archetype and row index if the handle's generation still matches the
// slot's current generation. ok is false for a stale or out-of-range
// handle; callers decide whether that means InvalidHandleError or
// DoubleFreeError.
func (w *World) resolve(h Handle) (*Archetype, HiveIndex, bool) {
	id := h.archetype()
	if int(id) >= len(w.archetypes) {
		return nil, 0, false
	}
	arche := w.archetypes[id]
	idx := h.row()
	if _, ok := arche.hive.TryGet(idx); !ok {
		return nil, 0, false
	}
	if arche.hive.GenerationAt(idx) != h.generation() {
		return nil, 0, false
	}
	return arche, idx, true
}

// Remove frees the row h identifies. The Hive bumps the slot's
// generation as part of freeing it, so any other Handle referencing
// the same slot becomes stale once it is reallocated. This is a
// secondary, non-primary path: the query engine's contract does not
// depend on Remove ever being called.
func (w *World) Remove(h Handle) error {
	arche, idx, ok := w.resolve(h)
	if !ok {
		id := h.archetype()
		if int(id) >= len(w.archetypes) {
			return InvalidHandleError{Handle: h}
		}
		hv := w.archetypes[id].hive
		row := h.row()
		if int(row.chunk()) >= len(hv.chunks) || int(row.slot()) >= hv.chunks[row.chunk()].nextUse {
			return InvalidHandleError{Handle: h}
		}
		return DoubleFreeError{Handle: h}
	}
	arche.removeRow(idx)
	if w.events.OnRemove != nil {
		w.events.OnRemove(h)
	}
	return nil
}

// Insert1 inserts a new entity with a single component.
func Insert1[T1 any](w *World, v1 T1) (Handle, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return 0, err
	}
	var mask Mask
	mask.Mark(o1)
	arche := w.archetypeFor(mask)
	idx, row := arche.insertRow()
	writeColumn(arche, row, o1, v1)
	h := newHandle(arche.id, idx, arche.hive.GenerationAt(idx))
	if w.events.OnInsert != nil {
		w.events.OnInsert(h)
	}
	return h, nil
}

// Insert2 inserts a new entity with two components.
func Insert2[T1, T2 any](w *World, v1 T1, v2 T2) (Handle, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return 0, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return 0, err
	}
	var mask Mask
	mask.Mark(o1)
	mask.Mark(o2)
	arche := w.archetypeFor(mask)
	idx, row := arche.insertRow()
	writeColumn(arche, row, o1, v1)
	writeColumn(arche, row, o2, v2)
	h := newHandle(arche.id, idx, arche.hive.GenerationAt(idx))
	if w.events.OnInsert != nil {
		w.events.OnInsert(h)
	}
	return h, nil
}

// Insert3 inserts a new entity with three components.
func Insert3[T1, T2, T3 any](w *World, v1 T1, v2 T2, v3 T3) (Handle, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return 0, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return 0, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return 0, err
	}
	var mask Mask
	mask.Mark(o1)
	mask.Mark(o2)
	mask.Mark(o3)
	arche := w.archetypeFor(mask)
	idx, row := arche.insertRow()
	writeColumn(arche, row, o1, v1)
	writeColumn(arche, row, o2, v2)
	writeColumn(arche, row, o3, v3)
	h := newHandle(arche.id, idx, arche.hive.GenerationAt(idx))
	if w.events.OnInsert != nil {
		w.events.OnInsert(h)
	}
	return h, nil
}

// Insert4 inserts a new entity with four components.
func Insert4[T1, T2, T3, T4 any](w *World, v1 T1, v2 T2, v3 T3, v4 T4) (Handle, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return 0, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return 0, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return 0, err
	}
	o4, err := ordinalFor[T4](w)
	if err != nil {
		return 0, err
	}
	var mask Mask
	mask.Mark(o1)
	mask.Mark(o2)
	mask.Mark(o3)
	mask.Mark(o4)
	arche := w.archetypeFor(mask)
	idx, row := arche.insertRow()
	writeColumn(arche, row, o1, v1)
	writeColumn(arche, row, o2, v2)
	writeColumn(arche, row, o3, v3)
	writeColumn(arche, row, o4, v4)
	h := newHandle(arche.id, idx, arche.hive.GenerationAt(idx))
	if w.events.OnInsert != nil {
		w.events.OnInsert(h)
	}
	return h, nil
}

// Entity1 resolves h to its single component, failing if h is stale or
// its archetype lacks T1.
func Entity1[T1 any](w *World, h Handle) (*T1, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, err
	}
	arche, idx, ok := w.resolve(h)
	if !ok {
		return nil, InvalidHandleError{Handle: h}
	}
	if !arche.mask.Contains(o1) {
		return nil, MissingComponentError{}
	}
	row := arche.row(idx)
	return readColumn[T1](arche, row, o1), nil
}

// Entity2 resolves h to its two components.
func Entity2[T1, T2 any](w *World, h Handle) (*T1, *T2, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, nil, err
	}
	arche, idx, ok := w.resolve(h)
	if !ok {
		return nil, nil, InvalidHandleError{Handle: h}
	}
	if !arche.mask.Contains(o1) || !arche.mask.Contains(o2) {
		return nil, nil, MissingComponentError{}
	}
	row := arche.row(idx)
	return readColumn[T1](arche, row, o1), readColumn[T2](arche, row, o2), nil
}

// Entity3 resolves h to its three components.
func Entity3[T1, T2, T3 any](w *World, h Handle) (*T1, *T2, *T3, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, nil, nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, nil, nil, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return nil, nil, nil, err
	}
	arche, idx, ok := w.resolve(h)
	if !ok {
		return nil, nil, nil, InvalidHandleError{Handle: h}
	}
	if !arche.mask.Contains(o1) || !arche.mask.Contains(o2) || !arche.mask.Contains(o3) {
		return nil, nil, nil, MissingComponentError{}
	}
	row := arche.row(idx)
	return readColumn[T1](arche, row, o1), readColumn[T2](arche, row, o2), readColumn[T3](arche, row, o3), nil
}

// Entity4 resolves h to its four components.
func Entity4[T1, T2, T3, T4 any](w *World, h Handle) (*T1, *T2, *T3, *T4, error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	o4, err := ordinalFor[T4](w)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	arche, idx, ok := w.resolve(h)
	if !ok {
		return nil, nil, nil, nil, InvalidHandleError{Handle: h}
	}
	if !arche.mask.Contains(o1) || !arche.mask.Contains(o2) || !arche.mask.Contains(o3) || !arche.mask.Contains(o4) {
		return nil, nil, nil, nil, MissingComponentError{}
	}
	row := arche.row(idx)
	return readColumn[T1](arche, row, o1), readColumn[T2](arche, row, o2), readColumn[T3](arche, row, o3), readColumn[T4](arche, row, o4), nil
}
