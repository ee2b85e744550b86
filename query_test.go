package warehouse

import "testing"

// TestQueryFiltering tests And/Or/Not composition against several
// entity populations spread across distinct archetypes.
func TestQueryFiltering(t *testing.T) {
	setup := func(w *World) {
		mustInsert := func(err error) {
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		for i := 0; i < 5; i++ {
			_, err := Insert2(w, Position{}, Velocity{})
			mustInsert(err)
		}
		for i := 0; i < 10; i++ {
			_, err := Insert1(w, Position{})
			mustInsert(err)
		}
		for i := 0; i < 15; i++ {
			_, err := Insert1(w, Velocity{})
			mustInsert(err)
		}
		for i := 0; i < 20; i++ {
			_, err := Insert1(w, Health{})
			mustInsert(err)
		}
	}

	tests := []struct {
		name  string
		build func(q Query, pos, vel, health Component) QueryNode
		want  int
	}{
		{
			name:  "And matches exact overlap",
			build: func(q Query, pos, vel, health Component) QueryNode { return q.And(pos, vel) },
			want:  5,
		},
		{
			name:  "Or matches either",
			build: func(q Query, pos, vel, health Component) QueryNode { return q.Or(pos, vel) },
			want:  30, // 5 + 10 + 15
		},
		{
			name:  "Not excludes",
			build: func(q Query, pos, vel, health Component) QueryNode { return q.Not(vel) },
			want:  30, // 10 + 20
		},
		{
			name: "Complex: (P AND V) OR (P AND H)",
			build: func(q Query, pos, vel, health Component) QueryNode {
				return q.Or(q.And(pos, vel), q.And(pos, health))
			},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(NewDynamicRegistry(16))
			setup(w)

			pos, err := ComponentOf[Position](w)
			if err != nil {
				t.Fatalf("ComponentOf(Position): %v", err)
			}
			vel, err := ComponentOf[Velocity](w)
			if err != nil {
				t.Fatalf("ComponentOf(Velocity): %v", err)
			}
			health, err := ComponentOf[Health](w)
			if err != nil {
				t.Fatalf("ComponentOf(Health): %v", err)
			}

			q := NewQuery()
			node := tt.build(q, pos, vel, health)

			count := 0
			for _, arche := range w.Archetypes() {
				if node.Evaluate(arche.Mask()) {
					count += arche.Len()
				}
			}
			if count != tt.want {
				t.Errorf("matched %d entities, want %d", count, tt.want)
			}
		})
	}
}

// TestQueryWithCursor exercises the same And semantics through the
// typed Cursor2, rather than evaluating the QueryNode directly.
func TestQueryWithCursor(t *testing.T) {
	w := NewWorld(NewDynamicRegistry(16))
	for i := 0; i < 10; i++ {
		if _, err := Insert1(w, Position{}); err != nil {
			t.Fatalf("Insert1: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		if _, err := Insert2(w, Position{}, Velocity{}); err != nil {
			t.Fatalf("Insert2: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		if _, err := Insert1(w, Velocity{}); err != nil {
			t.Fatalf("Insert1: %v", err)
		}
	}

	cursor, err := Query2[Position, Velocity](w, nil)
	if err != nil {
		t.Fatalf("Query2: %v", err)
	}
	count := cursor.TotalMatched()
	if count != 10 {
		t.Errorf("TotalMatched() = %d, want 10", count)
	}

	cursor2, err := Query2[Position, Velocity](w, nil)
	if err != nil {
		t.Fatalf("Query2: %v", err)
	}
	seen := 0
	for cursor2.Next() {
		seen++
	}
	if seen != 10 {
		t.Errorf("iterated %d rows, want 10", seen)
	}
}

// TestQueryComponentAccessUpdatesInPlace verifies that mutating a
// value through a cursor persists for later cursors over the same row.
func TestQueryComponentAccessUpdatesInPlace(t *testing.T) {
	w := NewWorld(NewDynamicRegistry(16))
	for i := 0; i < 10; i++ {
		pos := Position{X: float64(i), Y: float64(i * 2)}
		vel := Velocity{X: float64(i) * 0.1, Y: float64(i) * 0.2}
		if _, err := Insert2(w, pos, vel); err != nil {
			t.Fatalf("Insert2: %v", err)
		}
	}

	cursor, err := Query2[Position, Velocity](w, nil)
	if err != nil {
		t.Fatalf("Query2: %v", err)
	}
	for cursor.Next() {
		pos, vel := cursor.Value()
		pos.X += vel.X
		pos.Y += vel.Y
	}

	cursor2, err := Query2[Position, Velocity](w, nil)
	if err != nil {
		t.Fatalf("Query2: %v", err)
	}
	for cursor2.Next() {
		pos, vel := cursor2.Value()
		if !almostEqual(pos.X-vel.X, vel.X*10, 0.0001) {
			t.Errorf("Position.X = %v, Velocity.X = %v: update didn't persist", pos.X, vel.X)
		}
	}
}

func almostEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
