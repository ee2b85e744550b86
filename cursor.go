package warehouse

// cursorState names the iterator state machine's three states: find
// the next matching archetype, walk its rows, or stop.
type cursorState int

const (
	cursorPositioningArchetype cursorState = iota
	cursorInRow
	cursorDone
)

// cursorBase holds the state shared by every CursorN arity: the
// matched-archetype list (computed once at construction), which one is
// current, the row walker within it, and the live state machine state.
type cursorBase struct {
	w        *World
	matched  []*Archetype
	archIdx  int
	state    cursorState
	curArche *Archetype
	hiveCur  *HiveCursor
	curIdx   HiveIndex
	curRow   []byte
}

func matchArchetypes(w *World, required Mask, extra QueryNode) []*Archetype {
	var out []*Archetype
	for _, a := range w.archetypes {
		if !a.Mask().ContainsAll(required) {
			continue
		}
		if extra != nil && !extra.Evaluate(a.Mask()) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func newCursorBase(w *World, required Mask, extra QueryNode) cursorBase {
	return cursorBase{
		w:       w,
		matched: matchArchetypes(w, required, extra),
		state:   cursorPositioningArchetype,
	}
}

// advance runs the PositioningArchetype -> InRow -> Done state machine,
// returning true once curArche/curIdx/curRow name a live row.
func (c *cursorBase) advance() bool {
	for {
		switch c.state {
		case cursorDone:
			return false
		case cursorInRow:
			idx, row, ok := c.hiveCur.Next()
			if ok {
				c.curIdx = idx
				c.curRow = row
				return true
			}
			c.state = cursorPositioningArchetype
		case cursorPositioningArchetype:
			if c.archIdx >= len(c.matched) {
				c.state = cursorDone
				return false
			}
			c.curArche = c.matched[c.archIdx]
			c.archIdx++
			c.hiveCur = c.curArche.hive.NewCursor()
			c.state = cursorInRow
		}
	}
}

// Handle returns the Handle for the cursor's current row.
func (c *cursorBase) Handle() Handle {
	return newHandle(c.curArche.id, c.curIdx, c.curArche.hive.GenerationAt(c.curIdx))
}

// TotalMatched returns the number of rows across every archetype this
// cursor's query matched, without consuming the cursor's own position.
func (c *cursorBase) TotalMatched() int {
	total := 0
	for _, a := range c.matched {
		total += a.Len()
	}
	return total
}

// Cursor1 iterates entities carrying a single required component.
type Cursor1[T1 any] struct {
	cursorBase
	o1 Ordinal
}

// NewCursor1 builds a Cursor1 over w, optionally narrowed by extra.
func NewCursor1[T1 any](w *World, extra QueryNode) (*Cursor1[T1], error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, err
	}
	var required Mask
	required.Mark(o1)
	return &Cursor1[T1]{cursorBase: newCursorBase(w, required, extra), o1: o1}, nil
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor1[T1]) Next() bool { return c.advance() }

// Value returns a pointer into the row's T1 column, valid until the
// next call to Next.
func (c *Cursor1[T1]) Value() *T1 { return readColumn[T1](c.curArche, c.curRow, c.o1) }

// Cursor2 iterates entities carrying two required components.
type Cursor2[T1, T2 any] struct {
	cursorBase
	o1, o2 Ordinal
}

// NewCursor2 builds a Cursor2 over w, optionally narrowed by extra.
func NewCursor2[T1, T2 any](w *World, extra QueryNode) (*Cursor2[T1, T2], error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, err
	}
	var required Mask
	required.Mark(o1)
	required.Mark(o2)
	return &Cursor2[T1, T2]{cursorBase: newCursorBase(w, required, extra), o1: o1, o2: o2}, nil
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor2[T1, T2]) Next() bool { return c.advance() }

// Value returns pointers into the row's T1 and T2 columns.
func (c *Cursor2[T1, T2]) Value() (*T1, *T2) {
	return readColumn[T1](c.curArche, c.curRow, c.o1), readColumn[T2](c.curArche, c.curRow, c.o2)
}

// Cursor3 iterates entities carrying three required components.
type Cursor3[T1, T2, T3 any] struct {
	cursorBase
	o1, o2, o3 Ordinal
}

// NewCursor3 builds a Cursor3 over w, optionally narrowed by extra.
func NewCursor3[T1, T2, T3 any](w *World, extra QueryNode) (*Cursor3[T1, T2, T3], error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return nil, err
	}
	var required Mask
	required.Mark(o1)
	required.Mark(o2)
	required.Mark(o3)
	return &Cursor3[T1, T2, T3]{cursorBase: newCursorBase(w, required, extra), o1: o1, o2: o2, o3: o3}, nil
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor3[T1, T2, T3]) Next() bool { return c.advance() }

// Value returns pointers into the row's T1, T2, and T3 columns.
func (c *Cursor3[T1, T2, T3]) Value() (*T1, *T2, *T3) {
	return readColumn[T1](c.curArche, c.curRow, c.o1),
		readColumn[T2](c.curArche, c.curRow, c.o2),
		readColumn[T3](c.curArche, c.curRow, c.o3)
}

// Cursor4 iterates entities carrying four required components.
type Cursor4[T1, T2, T3, T4 any] struct {
	cursorBase
	o1, o2, o3, o4 Ordinal
}

// NewCursor4 builds a Cursor4 over w, optionally narrowed by extra.
func NewCursor4[T1, T2, T3, T4 any](w *World, extra QueryNode) (*Cursor4[T1, T2, T3, T4], error) {
	o1, err := ordinalFor[T1](w)
	if err != nil {
		return nil, err
	}
	o2, err := ordinalFor[T2](w)
	if err != nil {
		return nil, err
	}
	o3, err := ordinalFor[T3](w)
	if err != nil {
		return nil, err
	}
	o4, err := ordinalFor[T4](w)
	if err != nil {
		return nil, err
	}
	var required Mask
	required.Mark(o1)
	required.Mark(o2)
	required.Mark(o3)
	required.Mark(o4)
	return &Cursor4[T1, T2, T3, T4]{cursorBase: newCursorBase(w, required, extra), o1: o1, o2: o2, o3: o3, o4: o4}, nil
}

// Next advances the cursor, returning false once exhausted.
func (c *Cursor4[T1, T2, T3, T4]) Next() bool { return c.advance() }

// Value returns pointers into the row's T1, T2, T3, and T4 columns.
func (c *Cursor4[T1, T2, T3, T4]) Value() (*T1, *T2, *T3, *T4) {
	return readColumn[T1](c.curArche, c.curRow, c.o1),
		readColumn[T2](c.curArche, c.curRow, c.o2),
		readColumn[T3](c.curArche, c.curRow, c.o3),
		readColumn[T4](c.curArche, c.curRow, c.o4)
}

// Query1 builds a Cursor1 over w, optionally narrowed by extra.
func Query1[T1 any](w *World, extra QueryNode) (*Cursor1[T1], error) {
	return NewCursor1[T1](w, extra)
}

// Query2 builds a Cursor2 over w, optionally narrowed by extra.
func Query2[T1, T2 any](w *World, extra QueryNode) (*Cursor2[T1, T2], error) {
	return NewCursor2[T1, T2](w, extra)
}

// Query3 builds a Cursor3 over w, optionally narrowed by extra.
func Query3[T1, T2, T3 any](w *World, extra QueryNode) (*Cursor3[T1, T2, T3], error) {
	return NewCursor3[T1, T2, T3](w, extra)
}

// Query4 builds a Cursor4 over w, optionally narrowed by extra.
func Query4[T1, T2, T3, T4 any](w *World, extra QueryNode) (*Cursor4[T1, T2, T3, T4], error) {
	return NewCursor4[T1, T2, T3, T4](w, extra)
}
