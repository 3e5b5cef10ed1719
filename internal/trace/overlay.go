package trace

import "fmt"

// Node is a labeled vertex of the graph overlay.
type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Edge is a directed edge of the graph overlay.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// graphOverlay is the node/edge set shared by every step of a document.
// It only grows: there is no removal, a node keeps its first label, and a
// repeated (from, to) pair is ignored.
type graphOverlay struct {
	nodes []Node
	edges []Edge
	ids   map[int]struct{}
	pairs map[Edge]struct{}
}

func (g *graphOverlay) reset() {
	g.nodes = nil
	g.edges = nil
	g.ids = make(map[int]struct{})
	g.pairs = make(map[Edge]struct{})
}

func (g *graphOverlay) addNode(id int, label string, limit int) *CapacityError {
	if _, ok := g.ids[id]; ok {
		return nil
	}
	if len(g.nodes) >= limit {
		return &CapacityError{Kind: KindNodes, Name: fmt.Sprintf("node %d", id), Limit: limit}
	}
	g.ids[id] = struct{}{}
	g.nodes = append(g.nodes, Node{ID: id, Label: label})
	return nil
}

func (g *graphOverlay) addEdge(from, to int, limit int) *CapacityError {
	e := Edge{From: from, To: to}
	if _, ok := g.pairs[e]; ok {
		return nil
	}
	if len(g.edges) >= limit {
		return &CapacityError{Kind: KindEdges, Name: fmt.Sprintf("edge %d->%d", from, to), Limit: limit}
	}
	g.pairs[e] = struct{}{}
	g.edges = append(g.edges, e)
	return nil
}

// snapshot returns copies so later growth cannot leak into emitted records.
func (g *graphOverlay) snapshot() ([]Node, []Edge) {
	nodes := make([]Node, len(g.nodes))
	copy(nodes, g.nodes)
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return nodes, edges
}
