/*
Package warehouse provides an archetype-based Entity-Component-System
(ECS) store for games and simulations.

Warehouse groups entities that share the same component set into a
single Archetype, storing each entity as a packed byte row inside a
chunked, free-list-based pool (a Hive). Handles into the store are
opaque 64-bit values that stay valid across insertions elsewhere and go
stale, rather than dangle, once their row is freed.

Core Concepts:

  - Handle: an opaque reference to one entity's row.
  - Registry: resolves a Go type to a stable Ordinal, either from a
    fixed compile-time list (StaticRegistry) or assigned on first use
    up to a capacity (DynamicRegistry).
  - Archetype: the storage partition for one component set.
  - Cursor: a typed iterator over every entity matching a component set.

Basic Usage:

	reg, _ := warehouse.Factory.NewStaticRegistry(
		reflect.TypeOf(Position{}), reflect.TypeOf(Velocity{}),
	)
	world := warehouse.Factory.NewWorld(reg)

	h, _ := warehouse.Insert2(world, Position{}, Velocity{X: 1})

	cursor, _ := warehouse.Query2[Position, Velocity](world, nil)
	for cursor.Next() {
		pos, vel := cursor.Value()
		pos.X += vel.X
		pos.Y += vel.Y
	}

Warehouse is strictly single-threaded: it takes no locks, and mutating
a World while a Cursor iterates it is undefined behavior.
*/
package warehouse
