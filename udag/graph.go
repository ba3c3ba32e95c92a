package udag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	ErrNodeAlreadyExists = errors.New("node already exists")
	ErrNodeNotFound      = errors.New("node not found")
	ErrCycleDetected     = errors.New("cycle detected in dependency graph")
	ErrInvalidKey        = errors.New("invalid node key")
)

// Graph is the build-time representation of a dependency graph. It
// retains declaration order so that ties among independent nodes
// resolve deterministically.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	key string

	// Declared dependencies, in declaration order.
	deps []string

	// Reverse edges: nodes that must be constructed after this one.
	dependents []string

	// Position in declaration order, used as the sort tie-breaker.
	rank int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// validateKey checks that a node key is usable.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, " \t\n\r") {
		return fmt.Errorf("%w: key %q cannot contain whitespace", ErrInvalidKey, key)
	}
	return nil
}

// AddNode registers a node under the given key.
func (g *Graph) AddNode(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, exists := g.nodes[key]; exists {
		return fmt.Errorf("%w: %q", ErrNodeAlreadyExists, key)
	}
	g.nodes[key] = &node{key: key, rank: len(g.order)}
	g.order = append(g.order, key)
	return nil
}

// MustAddNode is like AddNode but panics on error.
func (g *Graph) MustAddNode(key string) {
	must(g.AddNode(key))
}

// AddDependency records that dependency must be constructed before
// dependent. Both nodes must already be registered.
func (g *Graph) AddDependency(dependent, dependency string) error {
	from, ok := g.nodes[dependent]
	if !ok {
		return fmt.Errorf("%w: dependent %q", ErrNodeNotFound, dependent)
	}
	to, ok := g.nodes[dependency]
	if !ok {
		return fmt.Errorf("%w: dependency %q of %q", ErrNodeNotFound, dependency, dependent)
	}

	from.deps = append(from.deps, dependency)
	to.dependents = append(to.dependents, dependent)
	return nil
}

// MustAddDependency is like AddDependency but panics on error.
func (g *Graph) MustAddDependency(dependent, dependency string) {
	must(g.AddDependency(dependent, dependency))
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Keys returns all node keys in declaration order.
func (g *Graph) Keys() []string {
	return slices.Clone(g.order)
}

// Dependencies returns the declared dependencies of a node, in
// declaration order.
func (g *Graph) Dependencies(key string) []string {
	n, ok := g.nodes[key]
	if !ok {
		return nil
	}
	return slices.Clone(n.deps)
}

// insertByRank inserts a key into a slice kept sorted by declaration
// rank. Cheaper than re-sorting the whole queue on every insert.
func (g *Graph) insertByRank(queue []string, key string) []string {
	rank := g.nodes[key].rank
	idx, _ := slices.BinarySearchFunc(queue, rank, func(k string, target int) int {
		return g.nodes[k].rank - target
	})
	return slices.Insert(queue, idx, key)
}

// TopologicalSort returns node keys ordered so that every dependency
// precedes its dependents, using Kahn's algorithm. Ties are broken by
// declaration order. If no valid order exists the sort fails with
// ErrCycleDetected instead of returning a partial order.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for key, n := range g.nodes {
		inDegree[key] = len(n.deps)
	}

	// Seed with nodes that depend on nothing, in declaration order.
	queue := make([]string, 0, len(g.nodes))
	for _, key := range g.order {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		result = append(result, key)

		n := g.nodes[key]
		dependents := slices.Clone(n.dependents)
		slices.SortFunc(dependents, func(a, b string) int {
			return g.nodes[a].rank - g.nodes[b].rank
		})

		for _, dep := range dependents {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = g.insertByRank(queue, dep)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("%w: topological sort failed", ErrCycleDetected)
	}

	return result, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
