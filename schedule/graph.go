package schedule

import (
	"fmt"
	"sort"
)

// graph is the dependency graph derived from a set of registry entries.
// Nodes are extractor names; a directed edge A→B labeled with feature f
// means B consumes f, which A produces. The graph is rebuilt from registry
// state on every planning request and never cached.
type graph struct {
	nodes map[string]*gnode
	order []string // insertion order, kept for deterministic traversal
}

type gnode struct {
	id string
	// deps maps a predecessor node id to the feature by which this node
	// depends on it.
	deps map[string]string
	// dependents maps a successor node id to the feature it consumes.
	dependents map[string]string
}

func newGraph() *graph {
	return &graph{nodes: make(map[string]*gnode)}
}

func (g *graph) addNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &gnode{
		id:         id,
		deps:       make(map[string]string),
		dependents: make(map[string]string),
	}
	g.order = append(g.order, id)
}

// addEdge records that toID depends on feature produced by fromID.
func (g *graph) addEdge(fromID, toID, feature string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	to.deps[fromID] = feature
	from.dependents[toID] = feature
	return nil
}

// findCycle runs a depth-first search keeping the explicit visit stack.
// When it re-enters a node already on the stack it has closed a cycle and
// returns a CycleError carrying the cycle path and the feature on the edge
// that closed it. Returns nil for a DAG.
func (g *graph) findCycle() *CycleError {
	done := make(map[string]bool)
	onStack := make(map[string]int) // node id -> position in stack
	var stack []string

	var visit func(id string) *CycleError
	visit = func(id string) *CycleError {
		if done[id] {
			return nil
		}
		if pos, ok := onStack[id]; ok {
			path := append(append([]string(nil), stack[pos:]...), id)
			closing := stack[len(stack)-1]
			return &CycleError{
				Feature:    g.nodes[closing].dependents[id],
				Extractors: path,
			}
		}
		onStack[id] = len(stack)
		stack = append(stack, id)
		for _, depID := range sortedNodeIDs(g.nodes[id].dependents) {
			if err := visit(depID); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, id)
		done[id] = true
		return nil
	}

	for _, id := range g.order {
		if !done[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortedNodeIDs keeps cycle reporting deterministic across runs.
func sortedNodeIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
