package warehouse

import (
	"reflect"
	"testing"
)

// smallTag is a 1-byte component, deliberately undersized relative to
// its neighbors so a back-to-back layout and a naturally-aligned one
// disagree on where the next column starts.
type smallTag struct {
	Flag bool
}

// bigPayload has 8-byte alignment; placed right after smallTag it would
// pick up 7 bytes of padding under natural alignment, which spec.md's
// canonical row layout (sum-of-sizes, no padding) forbids.
type bigPayload struct {
	Value float64
}

func TestArchetypeOffsetsAreBackToBackWithNoPadding(t *testing.T) {
	reg, err := NewStaticRegistry(
		reflect.TypeOf(smallTag{}),
		reflect.TypeOf(bigPayload{}),
	)
	if err != nil {
		t.Fatalf("NewStaticRegistry() error = %v", err)
	}

	var mask Mask
	mask.Mark(0)
	mask.Mark(1)
	arche := newArchetype(0, reg, mask)

	smallSize := reflect.TypeOf(smallTag{}).Size()
	wantBigOffset := smallSize
	if got := arche.offsetFor(0); got != 0 {
		t.Errorf("offsetFor(smallTag) = %d, want 0", got)
	}
	if got := arche.offsetFor(1); got != wantBigOffset {
		t.Errorf("offsetFor(bigPayload) = %d, want %d (sum of preceding sizes, no alignment padding)", got, wantBigOffset)
	}

	wantStride := smallSize + reflect.TypeOf(bigPayload{}).Size()
	if arche.stride != wantStride {
		t.Errorf("stride = %d, want %d", arche.stride, wantStride)
	}
}

func TestArchetypeOffsetForUnknownOrdinalPanics(t *testing.T) {
	reg, err := NewStaticRegistry(reflect.TypeOf(Position{}))
	if err != nil {
		t.Fatalf("NewStaticRegistry() error = %v", err)
	}
	var mask Mask
	mask.Mark(0)
	arche := newArchetype(0, reg, mask)

	defer func() {
		if recover() == nil {
			t.Errorf("offsetFor(missing ordinal) did not panic")
		}
	}()
	arche.offsetFor(5)
}
