package warehouse

import (
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// archetypeID identifies an Archetype within a World. It also serves as
// the archetype-ordinal field packed into a Handle.
type archetypeID uint16

// columnOffset records where one component's bytes begin within a row,
// computed once when the archetype is created.
type columnOffset struct {
	ordinal Ordinal
	offset  uintptr
	size    uintptr
}

// Archetype is the structure-of-arrays partition holding every entity
// that has exactly the component set named by Mask. Rows are packed,
// byte-aligned structs stored in a Hive keyed by row index; column
// offsets within a row are computed once, at archetype creation, not
// per access.
type Archetype struct {
	id      archetypeID
	mask    Mask
	stride  uintptr
	offsets []columnOffset
	hive    *Hive
}

// newArchetype lays out columns back-to-back in ascending ordinal
// order, with no alignment padding between them: offset_in(T,M) is the
// sum of size_of(i) for every i<ordinal_of(T) in M, and the row stride
// is the sum over every i in M. This is spec.md §3(ii)-(iii)'s
// canonical layout exactly, not a natural-alignment one; reg.AlignOf is
// deliberately unused here (it still backs the registry's generic
// contract, used by callers with other alignment needs).
func newArchetype(id archetypeID, reg Registry, mask Mask) *Archetype {
	var offsets []columnOffset
	var cursor uintptr
	for ord := Ordinal(0); ord < Ordinal(MaxOrdinals); ord++ {
		if !mask.Contains(ord) {
			continue
		}
		size := reg.SizeOf(ord)
		offsets = append(offsets, columnOffset{ordinal: ord, offset: cursor, size: size})
		cursor += size
	}
	return &Archetype{
		id:      id,
		mask:    mask,
		stride:  cursor,
		offsets: offsets,
		hive:    NewHive(cursor),
	}
}

// Mask returns the archetype's component set.
func (a *Archetype) Mask() Mask { return a.mask }

// Len returns the number of live rows.
func (a *Archetype) Len() int { return a.hive.Len() }

// insertRow allocates a new zeroed row and returns its HiveIndex and
// backing bytes.
func (a *Archetype) insertRow() (HiveIndex, []byte) {
	return a.hive.Allocate()
}

// removeRow frees a previously allocated row.
func (a *Archetype) removeRow(idx HiveIndex) {
	a.hive.Free(idx)
}

// row returns the byte payload at idx.
func (a *Archetype) row(idx HiveIndex) []byte {
	return a.hive.Get(idx)
}

// offsetFor returns the byte offset of ordinal's column within a row.
// Panics if the archetype does not carry ordinal — an internal
// invariant break, since callers are expected to have checked Mask
// first.
func (a *Archetype) offsetFor(ordinal Ordinal) uintptr {
	for _, c := range a.offsets {
		if c.ordinal == ordinal {
			return c.offset
		}
	}
	panic(bark.AddTrace(MissingComponentError{}))
}

// columnPointer returns a pointer to the start of ordinal's column
// value within row's payload.
func columnPointer(row []byte, offset uintptr) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&row[0]), offset)
}

// iterate visits every live row in the archetype, in Hive order.
func (a *Archetype) iterate(fn func(idx HiveIndex, row []byte)) {
	a.hive.Iterate(fn)
}
