// Package warehouse provides query mechanisms for component-based entity systems
package warehouse

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// Query represents a composable query interface for filtering
// archetypes by their component set.
type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

// QueryNode represents a node in the query tree that can be evaluated
// against an archetype's Mask.
type QueryNode interface {
	Evaluate(mask Mask) bool
}

// QueryOperation defines the logical operations for query nodes
type QueryOperation int

const (
	OpAnd QueryOperation = iota // Logical AND operation
	OpOr                        // Logical OR operation
	OpNot                       // Logical NOT operation
)

// compositeNode implements a compound query with child nodes. Its
// components are folded into a single Mask once, at construction, so
// Evaluate never re-derives it per call — the same discipline archetype
// column offsets follow.
type compositeNode struct {
	op       QueryOperation
	children []QueryNode
	nodeMask Mask
}

// query implements the Query interface
type query struct {
	root QueryNode
}

// NewQuery creates a new empty query.
func NewQuery() Query {
	return &query{}
}

func newCompositeNode(op QueryOperation, components []Component) *compositeNode {
	return &compositeNode{
		op:       op,
		children: make([]QueryNode, 0),
		nodeMask: componentMask(components),
	}
}

func componentMask(components []Component) Mask {
	var m Mask
	for _, c := range components {
		m.Mark(c.ordinal)
	}
	return m
}

// Evaluate implements QueryNode for composite nodes.
func (n *compositeNode) Evaluate(archeMask Mask) bool {
	switch n.op {
	case OpAnd:
		if !archeMask.ContainsAll(n.nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archeMask) {
				return false
			}
		}
		return true
	case OpOr:
		if archeMask.ContainsAny(n.nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archeMask) {
				return true
			}
		}
		return false
	case OpNot:
		// Equivalent to the empty-children case directly returning
		// ContainsNone(nodeMask): with no children the loop below is a
		// no-op, so the component check alone decides the result.
		if !n.nodeMask.IsEmpty() && !archeMask.ContainsNone(n.nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(archeMask) {
				return false
			}
		}
		return true
	}
	return false
}

// And creates a new AND operation node with the provided items.
func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Or creates a new OR operation node with the provided items.
func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Not creates a new NOT operation node with the provided items.
func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) validateQueryItems(items ...interface{}) error {
	for _, item := range items {
		switch item.(type) {
		case Component, []Component, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("invalid query item type: %T. Only Component, []Component, or QueryNode are allowed", item)
		}
	}
	return nil
}

func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	if err := q.validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	components := make([]Component, 0)
	children := make([]QueryNode, 0)
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return components, children
}

// Evaluate implements QueryNode for the query type itself.
func (q *query) Evaluate(archeMask Mask) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(archeMask)
}
