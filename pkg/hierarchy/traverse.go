package hierarchy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// frame is one entry of the explicit DFS stack: a class and the index of the
// next base to visit.
type frame struct {
	id   ClassID
	next int
}

// findCycle runs an iterative depth-first search over base edges with
// white/gray/black coloring. The path stack doubles as the recursion-stack
// marker: a base that is gray is on the stack, so the stack suffix starting at
// that base is a cycle. Classes and bases are visited in declared order, so
// the reported cycle is deterministic.
func (g *Graph) findCycle() []ClassID {
	const (
		white = iota
		gray
		black
	)

	color := make(map[ClassID]int, len(g.order))
	for _, start := range g.order {
		if color[start] != white {
			continue
		}

		stack := []frame{{id: start}}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			bases := g.bases[top.id]
			if top.next == len(bases) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			b := bases[top.next]
			top.next++

			switch color[b] {
			case white:
				color[b] = gray
				stack = append(stack, frame{id: b})
			case gray:
				i := slices.IndexFunc(stack, func(f frame) bool { return f.id == b })
				cycle := make([]ClassID, 0, len(stack)-i)
				for _, f := range stack[i:] {
					cycle = append(cycle, f.id)
				}
				return cycle
			}
		}
	}
	return nil
}

// TopoOrder returns every class after all of its bases (roots first). Ties are
// broken by declaration order.
func (g *Graph) TopoOrder() []ClassID {
	batches := g.Batches()
	out := make([]ClassID, 0, len(g.order))
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

// Depth returns the length of the longest base chain from id to a root.
// Roots have depth 0. Unknown ids report -1.
func (g *Graph) Depth(id ClassID) int {
	d, ok := g.depth[id]
	if !ok {
		return -1
	}
	return d
}

// Batches groups classes by [Graph.Depth], shallowest first. Every base of a
// class lives in an earlier batch, so the classes of one batch can be
// linearized independently once the previous batches are done. Within a batch
// classes keep declaration order.
func (g *Graph) Batches() [][]ClassID {
	if len(g.order) == 0 {
		return nil
	}
	maxDepth := 0
	for _, d := range g.depth {
		maxDepth = max(maxDepth, d)
	}
	batches := make([][]ClassID, maxDepth+1)
	for _, id := range g.order {
		d := g.depth[id]
		batches[d] = append(batches[d], id)
	}
	return batches
}

// Ancestors returns every class reachable from id through base edges,
// excluding id itself, in breadth-first declared order.
func (g *Graph) Ancestors(id ClassID) ([]ClassID, error) {
	if !g.Has(id) {
		return nil, unknownClass(id)
	}
	seen := map[ClassID]bool{id: true}
	var out []ClassID
	queue := []ClassID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, b := range g.bases[cur] {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
				queue = append(queue, b)
			}
		}
	}
	return out, nil
}

// computeDepths assigns depths in a single pass over a Kahn-style ordering.
// Only called on acyclic graphs.
func (g *Graph) computeDepths() map[ClassID]int {
	depth := make(map[ClassID]int, len(g.order))
	pending := make(map[ClassID]int, len(g.order))
	var ready []ClassID
	for _, id := range g.order {
		depth[id] = 0
		pending[id] = len(g.bases[id])
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		for _, sub := range g.subclasses[id] {
			depth[sub] = max(depth[sub], depth[id]+1)
			pending[sub]--
			if pending[sub] == 0 {
				ready = append(ready, sub)
			}
		}
	}
	return depth
}

func (g *Graph) computeHash() string {
	data, _ := json.Marshal(g.Decls())
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
