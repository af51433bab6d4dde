package nodelink

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/path"
)

const (
	// HopCutoff is the neighbourhood radius highlighted around a focus node.
	HopCutoff = 5
	// PageThreshold is the node count above which a network is paged by
	// community.
	PageThreshold = 100
)

// Query selects what the detail view shows. Negative values mean unset.
type Query struct {
	NodeID int
	Page   int
}

// Select returns a copy of g narrowed to q. g is not modified.
func Select(g *Graph, q Query) *Graph {
	out := g.clone()
	out.Page, out.Pages = -1, 0
	if q.NodeID >= 0 {
		if _, ok := out.Node(q.NodeID); ok {
			highlight(out, q.NodeID)
		}
	}
	if q.Page < 0 || len(out.Nodes) <= PageThreshold {
		return out
	}

	pages := Communities(out)
	page := min(q.Page, len(pages)-1)
	if q.NodeID >= 0 {
		for i, members := range pages {
			if slices.Contains(members, q.NodeID) {
				page = i
				break
			}
		}
	}
	keep := make(map[int]bool, len(pages[page]))
	for _, id := range pages[page] {
		keep[id] = true
	}
	sub := out.subgraph(keep)
	sub.Page, sub.Pages = page, len(pages)
	return sub
}

// Neighbourhood returns the ids within cutoff hops of id, including id.
func Neighbourhood(g *Graph, id, cutoff int) []int {
	ug := g.toSimple()
	src := ug.Node(int64(id))
	if src == nil {
		return nil
	}
	shortest := path.DijkstraFrom(src, ug)
	var ids []int
	for _, n := range g.Nodes {
		if w := shortest.WeightTo(int64(n.ID)); !math.IsInf(w, 1) && w <= float64(cutoff) {
			ids = append(ids, n.ID)
		}
	}
	return sortedIDs(ids)
}

func highlight(g *Graph, id int) {
	hops := make(map[int]bool)
	for _, h := range Neighbourhood(g, id, HopCutoff) {
		hops[h] = true
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Highlight = hops[n.ID]
		n.Center = n.ID == id
	}
	for i := range g.Links {
		l := &g.Links[i]
		l.Highlight = hops[l.Source] && hops[l.Target]
	}
}

const communitySeed = 1

// Communities partitions g by modularity. Communities are sorted by size,
// largest first, ties broken by smallest member id; members are sorted.
func Communities(g *Graph) [][]int {
	ug := g.toSimple()
	if ug.Nodes().Len() == 0 {
		return nil
	}
	// Seeded: pages must not change between requests.
	reduced := community.Modularize(ug, 1, rand.NewPCG(communitySeed, communitySeed))
	var out [][]int
	for _, c := range reduced.Communities() {
		ids := make([]int, 0, len(c))
		for _, n := range c {
			ids = append(ids, int(n.ID()))
		}
		if len(ids) > 0 {
			out = append(out, sortedIDs(ids))
		}
	}
	slices.SortFunc(out, func(a, b []int) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return a[0] - b[0]
	})
	return out
}
