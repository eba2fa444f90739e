// Package chain provides the value-chain graph model: typed nodes placed on
// a plane and floating edges between them.
//
// # Overview
//
// A [Graph] is an immutable value. Every mutating operation returns a new
// *Graph and leaves its receiver untouched, so callers can keep old values
// around for undo/redo, compare before and after, or discard a result
// without cleanup:
//
//	g := chain.New()
//	g, id, _ := g.AddNode(chain.Primary, chain.Position{X: 100, Y: 100}, nil)
//	g2, _ := g.MoveNode(id, chain.Position{X: 300, Y: 120})
//	// g still has the node at (100, 100)
//
// A rejected operation returns the receiver itself together with a coded
// error from pkg/errors, so `g2 == g` after a failure.
//
// # Node Types
//
// Four node types exist. The type is fixed at creation and governs the
// default color and which connector directions the UI exposes:
//
//	primary   left, right
//	support   top, bottom
//	external  left, right
//	custom    left, right, top, bottom
//
// # Invariants
//
//   - Node ids are unique, non-empty and never reassigned.
//   - Edge ids are derived from their endpoints with [EdgeID]; inserting
//     an edge whose id already exists is a no-op, never a parallel edge.
//   - Every edge's source and target exist. [Graph.RemoveNode] cascades to
//     all incident edges and [Graph.AddEdge] rejects unknown endpoints.
//
// Nodes and edges iterate in insertion order. The connector relies on this
// order to break distance ties.
//
// # Building Graphs
//
// For bulk construction (import, merges) use [Builder], which mutates in
// place and hands out an immutable [Graph] at the end.
//
// # Concurrency
//
// Graph values are safe for concurrent reads. Builder is not safe for
// concurrent use.
package chain
