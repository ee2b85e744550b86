package warehouse

import (
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// hiveChunkCapacity is the number of fixed-stride slots held by one
// chunk of a Hive. A chunk is allocated as a single byte slice; indices
// into it never move once handed out.
const hiveChunkCapacity = 1024

// HiveIndex is a stable, packed 32-bit index into a Hive: the low 16
// bits are the chunk number, the high 16 bits are the slot within that
// chunk. A HiveIndex remains valid for the lifetime of the slot it
// names (until Free), regardless of growth elsewhere in the hive.
type HiveIndex uint32

func newHiveIndex(chunk, slot uint16) HiveIndex {
	return HiveIndex(chunk) | HiveIndex(slot)<<16
}

func (h HiveIndex) chunk() uint16 { return uint16(h) }
func (h HiveIndex) slot() uint16  { return uint16(h >> 16) }

type hiveChunk struct {
	data    []byte
	live    [hiveChunkCapacity / 64]uint64
	gen     [hiveChunkCapacity]uint16 // bumped on every Free; survives the zeroing Allocate does on recycle
	nextUse int                      // first never-yet-used slot; grows monotonically within the chunk
}

func (c *hiveChunk) isLive(slot uint16) bool {
	return c.live[slot/64]&(1<<uint(slot%64)) != 0
}

func (c *hiveChunk) setLive(slot uint16) {
	c.live[slot/64] |= 1 << uint(slot%64)
}

func (c *hiveChunk) clearLive(slot uint16) {
	c.live[slot/64] &^= 1 << uint(slot%64)
}

// Hive is a chunked, free-list-based pool allocator handing out
// fixed-stride byte slots at stable 32-bit indices. Slots are never
// moved: Allocate may return a recycled slot or grow a new chunk, but
// an index handed out remains valid (until Free) no matter what else
// the hive does afterward.
//
// Hive is not safe for concurrent use.
type Hive struct {
	stride   uintptr
	chunks   []*hiveChunk
	freeHead HiveIndex
	count    int
}

// hiveFreeNone terminates the free list. Its slot half is 0xFFFF, which
// lies past hiveChunkCapacity, so it never equals the index of a real
// slot.
const hiveFreeNone = HiveIndex(0xFFFFFFFF)

// NewHive creates a Hive whose slots are at least width bytes, rounded
// up so a freed slot can always carry the 4-byte free-list link.
func NewHive(width uintptr) *Hive {
	stride := width
	if stride < 4 {
		stride = 4
	}
	return &Hive{stride: stride, freeHead: hiveFreeNone}
}

// Stride returns the per-slot byte width.
func (h *Hive) Stride() uintptr { return h.stride }

// Len returns the number of currently live (allocated, unfreed) slots.
func (h *Hive) Len() int { return h.count }

func (h *Hive) growChunk() *hiveChunk {
	c := &hiveChunk{data: make([]byte, hiveChunkCapacity*h.stride)}
	h.chunks = append(h.chunks, c)
	return c
}

// Allocate reserves a slot and returns its index and a pointer to its
// zeroed byte payload of Stride() bytes. It first recycles from the
// free list; when that is empty and the last chunk is full it appends
// a new chunk rather than failing, so a hive never has a hard capacity
// ceiling.
func (h *Hive) Allocate() (HiveIndex, []byte) {
	if h.freeHead != hiveFreeNone {
		idx := h.freeHead
		c := h.chunks[idx.chunk()]
		slot := idx.slot()
		payload := c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
		h.freeHead = *(*HiveIndex)(unsafe.Pointer(&payload[0]))
		for i := range payload {
			payload[i] = 0
		}
		c.setLive(slot)
		h.count++
		return idx, payload
	}

	var c *hiveChunk
	var chunkNum int
	if len(h.chunks) == 0 {
		c = h.growChunk()
		chunkNum = 0
	} else {
		chunkNum = len(h.chunks) - 1
		c = h.chunks[chunkNum]
		if c.nextUse >= hiveChunkCapacity {
			c = h.growChunk()
			chunkNum++
		}
	}
	slot := c.nextUse
	c.nextUse++
	idx := newHiveIndex(uint16(chunkNum), uint16(slot))
	c.setLive(uint16(slot))
	h.count++
	payload := c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
	return idx, payload
}

// Get returns the byte payload for idx. Panics if idx does not name a
// currently live slot — a precondition violation on this hot path is a
// programmer error, not a recoverable condition.
func (h *Hive) Get(idx HiveIndex) []byte {
	c, slot := h.resolve(idx)
	return c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
}

// Free releases idx back to the free list and bumps its generation.
// Panics on double-free.
func (h *Hive) Free(idx HiveIndex) {
	c, slot := h.resolve(idx)
	c.clearLive(slot)
	c.gen[slot]++
	payload := c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
	*(*HiveIndex)(unsafe.Pointer(&payload[0])) = h.freeHead
	h.freeHead = idx
	h.count--
}

// GenerationAt returns the current generation counter for idx's slot.
// It starts at 0 and is incremented each time the slot is freed, so a
// handle embedding a stale generation can be told apart from a live
// entity that has since reused the same slot.
func (h *Hive) GenerationAt(idx HiveIndex) uint16 {
	c, slot := h.resolve(idx)
	return c.gen[slot]
}

func (h *Hive) resolve(idx HiveIndex) (*hiveChunk, uint16) {
	c, slot, ok := h.tryResolve(idx)
	if !ok {
		panic(bark.AddTrace(InvalidHiveIndexError{Index: idx}))
	}
	return c, slot
}

func (h *Hive) tryResolve(idx HiveIndex) (*hiveChunk, uint16, bool) {
	chunkNum := int(idx.chunk())
	if chunkNum >= len(h.chunks) {
		return nil, 0, false
	}
	c := h.chunks[chunkNum]
	slot := idx.slot()
	if int(slot) >= c.nextUse || !c.isLive(slot) {
		return nil, 0, false
	}
	return c, slot, true
}

// TryGet is the non-panicking counterpart to Get, used where an
// out-of-range or freed index is an expected possibility (e.g.
// validating a caller-supplied Handle) rather than a programmer error.
func (h *Hive) TryGet(idx HiveIndex) ([]byte, bool) {
	c, slot, ok := h.tryResolve(idx)
	if !ok {
		return nil, false
	}
	return c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride], true
}

// Iterate calls fn once for every currently live slot, in chunk/slot
// order, skipping slots freed since allocation. Mutating the hive
// (Allocate/Free) from within fn is undefined behavior.
func (h *Hive) Iterate(fn func(idx HiveIndex, payload []byte)) {
	for chunkNum, c := range h.chunks {
		for slot := 0; slot < c.nextUse; slot++ {
			if !c.isLive(uint16(slot)) {
				continue
			}
			idx := newHiveIndex(uint16(chunkNum), uint16(slot))
			payload := c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
			fn(idx, payload)
		}
	}
}

// HiveCursor steps through a Hive's live slots one at a time, in
// chunk/slot order, the pull-style counterpart to Iterate.
type HiveCursor struct {
	h        *Hive
	chunkIdx int
	slot     int
}

// NewCursor returns a HiveCursor positioned before the first slot.
func (h *Hive) NewCursor() *HiveCursor {
	return &HiveCursor{h: h}
}

// Next advances to the next live slot, returning its index and payload.
// ok is false once every chunk has been exhausted.
func (hc *HiveCursor) Next() (idx HiveIndex, payload []byte, ok bool) {
	h := hc.h
	for hc.chunkIdx < len(h.chunks) {
		c := h.chunks[hc.chunkIdx]
		for hc.slot < c.nextUse {
			slot := hc.slot
			hc.slot++
			if !c.isLive(uint16(slot)) {
				continue
			}
			idx = newHiveIndex(uint16(hc.chunkIdx), uint16(slot))
			payload = c.data[uintptr(slot)*h.stride : (uintptr(slot)+1)*h.stride]
			return idx, payload, true
		}
		hc.chunkIdx++
		hc.slot = 0
	}
	return 0, nil, false
}

// InvalidHiveIndexError is the fatal-assertion error wrapped and
// panicked on an out-of-range or freed HiveIndex.
type InvalidHiveIndexError struct {
	Index HiveIndex
}

func (e InvalidHiveIndexError) Error() string {
	return "warehouse: invalid hive index"
}
