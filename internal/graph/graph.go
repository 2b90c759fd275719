// Package graph builds an append-only dependency DAG and enumerates every
// distinct linear extension (topological ordering) of it.
//
// Nodes can only depend on ids already allocated, so a Graph can never
// contain a cycle by construction — there is no separate cycle check.
package graph

import "iter"

// Id is a node's 1-based identifier, equal to its insertion order.
type Id int

type node[T any] struct {
	id    Id
	deps  []Id
	value T
}

// Graph is a generic append-only DAG of values of type T.
type Graph[T any] struct {
	nodes []node[T]
}

// New returns an empty Graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{}
}

// Add allocates a new node depending on deps (which must all already be in
// the graph) and returns its Id.
func (g *Graph[T]) Add(deps []Id, value T) Id {
	id := Id(len(g.nodes) + 1)
	depsCopy := append([]Id(nil), deps...)
	g.nodes = append(g.nodes, node[T]{id: id, deps: depsCopy, value: value})
	return id
}

// Len returns the number of nodes in the graph.
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// NodeInfo describes one node's value and the values of the nodes it
// directly depends on, for tests that want to assert on graph shape
// without reaching into the unexported node representation.
type NodeInfo[T any] struct {
	Value T
	Deps  []T
}

// Describe returns a NodeInfo for every node, in insertion order.
func (g *Graph[T]) Describe() []NodeInfo[T] {
	out := make([]NodeInfo[T], len(g.nodes))
	for i, n := range g.nodes {
		deps := make([]T, len(n.deps))
		for j, d := range n.deps {
			deps[j] = g.nodes[d-1].value
		}
		out[i] = NodeInfo[T]{Value: n.value, Deps: deps}
	}
	return out
}

// Orderings returns a lazy sequence of every distinct topological ordering
// of the graph's nodes. At each step the orderings are generated by picking,
// in turn, every node whose remaining dependencies are empty — in the
// order those nodes were originally inserted — then recursing on what's
// left with that node's id struck from every other node's dependency list.
// This both yields every linear extension and guarantees none repeats.
func (g *Graph[T]) Orderings() iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		type frame struct {
			id   Id
			deps []Id
		}
		remaining := make([]frame, len(g.nodes))
		for i, n := range g.nodes {
			remaining[i] = frame{id: n.id, deps: append([]Id(nil), n.deps...)}
		}
		valueOf := func(id Id) T { return g.nodes[id-1].value }

		var walk func(remaining []frame, prefix []T) bool
		walk = func(remaining []frame, prefix []T) bool {
			if len(remaining) == 0 {
				out := make([]T, len(prefix))
				copy(out, prefix)
				return yield(out)
			}

			for _, f := range remaining {
				if len(f.deps) != 0 {
					continue
				}
				action := f.id

				next := make([]frame, 0, len(remaining)-1)
				for _, other := range remaining {
					if other.id == action {
						continue
					}
					deps := make([]Id, 0, len(other.deps))
					for _, d := range other.deps {
						if d != action {
							deps = append(deps, d)
						}
					}
					next = append(next, frame{id: other.id, deps: deps})
				}

				nextPrefix := make([]T, len(prefix)+1)
				copy(nextPrefix, prefix)
				nextPrefix[len(prefix)] = valueOf(action)

				if !walk(next, nextPrefix) {
					return false
				}
			}
			return true
		}

		walk(remaining, nil)
	}
}
