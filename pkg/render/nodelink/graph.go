package nodelink

import (
	"cmp"
	"slices"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/motifscope/pkg/errors"
)

// Node is one network node.
type Node struct {
	ID        int    `json:"id"`
	Name      string `json:"name,omitempty"`
	Center    bool   `json:"center,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Link is an undirected edge.
type Link struct {
	Source    int  `json:"source"`
	Target    int  `json:"target"`
	Highlight bool `json:"highlight,omitempty"`
}

// Graph is a node-link document.
type Graph struct {
	Time  string `json:"time,omitempty"`
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	// Page is the community page shown, or -1 when the graph is not paged.
	Page int `json:"page"`
	// Pages is the number of community pages, 0 when not paged.
	Pages int `json:"pages,omitempty"`
}

// wire is the networkx node_link_data shape. Highlight and center arrive as
// integer flags.
type wire struct {
	Graph struct {
		Time any `json:"time"`
	} `json:"graph"`
	Nodes []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Center    int    `json:"center"`
		Highlight int    `json:"highlight"`
	} `json:"nodes"`
	Links []struct {
		Source    int `json:"source"`
		Target    int `json:"target"`
		Highlight int `json:"highlight"`
	} `json:"links"`
	Page  *int `json:"page"`
	Pages int  `json:"pages"`
}

// Decode parses a node_link_data document. An empty object is an empty
// graph.
func Decode(data []byte) (*Graph, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode graph")
	}
	g := &Graph{Page: -1, Pages: w.Pages}
	if w.Page != nil {
		g.Page = *w.Page
	}
	switch t := w.Graph.Time.(type) {
	case string:
		g.Time = t
	case []any:
		if len(t) > 0 {
			g.Time, _ = t[0].(string)
		}
	}
	for _, n := range w.Nodes {
		g.Nodes = append(g.Nodes, Node{ID: n.ID, Name: n.Name, Center: n.Center != 0, Highlight: n.Highlight != 0})
	}
	for _, l := range w.Links {
		g.Links = append(g.Links, Link{Source: l.Source, Target: l.Target, Highlight: l.Highlight != 0})
	}
	return g, nil
}

// Encode writes g in the same shape [Decode] reads.
func Encode(g *Graph) ([]byte, error) {
	type node struct {
		ID        int    `json:"id"`
		Name      string `json:"name,omitempty"`
		Center    int    `json:"center,omitempty"`
		Highlight int    `json:"highlight,omitempty"`
	}
	type link struct {
		Source    int `json:"source"`
		Target    int `json:"target"`
		Highlight int `json:"highlight,omitempty"`
	}
	out := struct {
		Directed   bool              `json:"directed"`
		Multigraph bool              `json:"multigraph"`
		Graph      map[string]string `json:"graph"`
		Nodes      []node            `json:"nodes"`
		Links      []link            `json:"links"`
		Page       int               `json:"page"`
		Pages      int               `json:"pages,omitempty"`
	}{
		Graph: map[string]string{"time": g.Time},
		Nodes: make([]node, 0, len(g.Nodes)),
		Links: make([]link, 0, len(g.Links)),
		Page:  g.Page,
		Pages: g.Pages,
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, node{ID: n.ID, Name: n.Name, Center: flag(n.Center), Highlight: flag(n.Highlight)})
	}
	for _, l := range g.Links {
		out.Links = append(out.Links, link{Source: l.Source, Target: l.Target, Highlight: flag(l.Highlight)})
	}
	return json.Marshal(out)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Highlighted returns the number of highlighted nodes.
func (g *Graph) Highlighted() int {
	n := 0
	for _, nd := range g.Nodes {
		if nd.Highlight {
			n++
		}
	}
	return n
}

// toSimple builds the gonum graph. Self loops and links to unknown nodes
// are dropped.
func (g *Graph) toSimple() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes {
		if ug.Node(int64(n.ID)) == nil {
			ug.AddNode(simple.Node(n.ID))
		}
	}
	for _, l := range g.Links {
		if l.Source == l.Target {
			continue
		}
		u, v := ug.Node(int64(l.Source)), ug.Node(int64(l.Target))
		if u == nil || v == nil {
			continue
		}
		ug.SetEdge(ug.NewEdge(u, v))
	}
	return ug
}

// subgraph keeps the nodes in keep and the links between them.
func (g *Graph) subgraph(keep map[int]bool) *Graph {
	out := &Graph{Time: g.Time, Page: g.Page, Pages: g.Pages}
	for _, n := range g.Nodes {
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, l := range g.Links {
		if keep[l.Source] && keep[l.Target] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

func (g *Graph) clone() *Graph {
	out := *g
	out.Nodes = slices.Clone(g.Nodes)
	out.Links = slices.Clone(g.Links)
	return &out
}

func sortedIDs(ids []int) []int {
	slices.SortFunc(ids, cmp.Compare[int])
	return ids
}
