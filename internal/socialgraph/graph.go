// Package socialgraph builds a directed weighted graph over user connections
// and answers distance and centrality queries on it.
package socialgraph

import (
	"math"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

type edge struct {
	to     string
	weight float64
}

// Graph is a directed weighted graph of users. An edge a->b exists when a lists
// b among its connections. Edges to users outside the graph are dropped.
type Graph struct {
	nodes map[string]bool
	adj   map[string][]edge
}

// Build constructs the graph from the given users. Self edges are ignored and a
// connection without an explicit strength gets weight 1.0.
func Build(users []*models.User) *Graph {
	g := &Graph{
		nodes: make(map[string]bool, len(users)),
		adj:   make(map[string][]edge, len(users)),
	}
	for _, u := range users {
		g.nodes[u.ID] = true
	}
	for _, u := range users {
		for _, conn := range u.Connections {
			if conn.PeerID == u.ID {
				continue
			}
			if !g.nodes[conn.PeerID] {
				continue
			}
			weight := conn.Strength
			if weight == 0 {
				weight = 1.0
			}
			g.adj[u.ID] = append(g.adj[u.ID], edge{to: conn.PeerID, weight: weight})
		}
	}
	return g
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	return g.nodes[id]
}

// Neighbors returns the IDs a points to, in insertion order.
func (g *Graph) Neighbors(id string) []string {
	edges := g.adj[id]
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.to
	}
	return out
}

// Distance returns the number of directed hops from a to b. Unreachable pairs,
// including unknown nodes, return the node count as an unreachable sentinel.
// Distance from a node to itself is 0.
func (g *Graph) Distance(a, b string) int {
	unreachable := len(g.nodes)
	if !g.nodes[a] || !g.nodes[b] {
		return unreachable
	}
	if a == b {
		return 0
	}
	visited := map[string]bool{a: true}
	frontier := []string{a}
	depth := 0
	for len(frontier) > 0 {
		depth++
		var next []string
		for _, id := range frontier {
			for _, e := range g.adj[id] {
				if e.to == b {
					return depth
				}
				if !visited[e.to] {
					visited[e.to] = true
					next = append(next, e.to)
				}
			}
		}
		frontier = next
	}
	return unreachable
}

const (
	centralityIterations = 100
	centralityTolerance  = 1e-6
)

// Centrality computes eigenvector centrality by power iteration over incoming
// edge weights. The iteration uses I+A so that cyclic graphs converge instead
// of oscillating. Returns ok=false when the graph has no edges.
func (g *Graph) Centrality() (map[string]float64, bool) {
	n := len(g.nodes)
	if n == 0 || len(g.adj) == 0 {
		return nil, false
	}

	scores := make(map[string]float64, n)
	for id := range g.nodes {
		scores[id] = 1.0 / float64(n)
	}

	for iter := 0; iter < centralityIterations; iter++ {
		next := make(map[string]float64, n)
		for id, v := range scores {
			next[id] = v
		}
		for from, edges := range g.adj {
			for _, e := range edges {
				next[e.to] += scores[from] * e.weight
			}
		}

		var norm float64
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, false
		}

		var delta float64
		for id := range g.nodes {
			v := next[id] / norm
			delta += math.Abs(v - scores[id])
			scores[id] = v
		}
		if delta < centralityTolerance {
			return scores, true
		}
	}
	return scores, true
}
