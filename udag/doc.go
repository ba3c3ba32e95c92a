// Package udag resolves the construction order of inter-store
// dependencies.
//
// Nodes are store keys; an edge records that one store must be fully
// constructed before another. The graph is built once, validated for
// cycles, and then sorted topologically. Sorting is deterministic:
// ties among independent nodes are broken by declaration order, so
// identical input always yields an identical order.
//
// # Basic Usage
//
//	g := udag.New()
//	g.MustAddNode("foo")
//	g.MustAddNode("bar")
//	g.MustAddDependency("bar", "foo") // foo is constructed before bar
//
//	order, err := g.TopologicalSort()
//	if errors.Is(err, udag.ErrCycleDetected) {
//	    // the declared dependencies cannot be satisfied
//	}
//
// All failure cases use sentinel errors (ErrCycleDetected,
// ErrNodeNotFound, ...) that can be checked with errors.Is().
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use. All registration methods must
// be called from a single goroutine. The computed order is a plain
// slice and safe to share once returned.
package udag
