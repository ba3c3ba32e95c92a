package udag

import (
	"fmt"
	"strings"
)

// Validation limits to prevent pathological cases
const (
	MaxNodes = 10000
	MaxDepth = 500
)

// Validate checks that the declared dependencies admit a construction
// order. It must be called before any node is instantiated; a failed
// validation means construction cannot proceed at all.
func (g *Graph) Validate() error {
	if len(g.nodes) > MaxNodes {
		return fmt.Errorf("%w: node count %d exceeds maximum %d",
			ErrInvalidKey, len(g.nodes), MaxNodes)
	}

	if err := g.detectCycles(); err != nil {
		return fmt.Errorf("dependency graph validation failed: %w", err)
	}
	return nil
}

// detectCycles uses DFS over the dependency edges to find cycles.
// Returns ErrCycleDetected with the offending path if any is found.
// Time complexity: O(V + E).
func (g *Graph) detectCycles() error {
	visited := make(map[string]bool, len(g.nodes))
	recStack := make(map[string]bool, len(g.nodes))

	var dfs func(string, []string, int) error
	dfs = func(key string, path []string, depth int) error {
		if depth > MaxDepth {
			return fmt.Errorf("%w: maximum depth %d exceeded", ErrCycleDetected, MaxDepth)
		}

		visited[key] = true
		recStack[key] = true
		path = append(path, key)

		for _, dep := range g.nodes[key].deps {
			if !visited[dep] {
				if err := dfs(dep, path, depth+1); err != nil {
					return err
				}
			} else if recStack[dep] {
				cyclePath := append(path, dep)
				return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(cyclePath, " -> "))
			}
		}

		recStack[key] = false
		return nil
	}

	// Walk in declaration order so error messages are deterministic.
	for _, key := range g.order {
		if !visited[key] {
			if err := dfs(key, nil, 0); err != nil {
				return err
			}
		}
	}

	return nil
}
