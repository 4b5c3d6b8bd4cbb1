package guide

import (
	"sort"

	"github.com/dominikbraun/graph"
)

// Direction is the main flow axis of a layout.
type Direction string

const (
	LeftRight Direction = "LR"
	TopBottom Direction = "TB"
)

// Layout geometry, in canvas units.
const (
	NodeWidth      = 160
	NodeHeight     = 40
	LayoutMargin   = 50
	DefaultNodeSep = 30
	DefaultRankSep = 80
)

// Anchor sides understood by the canvas.
const (
	SideLeft   = "left"
	SideRight  = "right"
	SideTop    = "top"
	SideBottom = "bottom"
)

// LayoutOptions controls Layout. NodeSep separates nodes within a rank,
// RankSep separates ranks. Negative values are treated as 0.
type LayoutOptions struct {
	Direction Direction
	NodeSep   float64
	RankSep   float64
}

// DefaultLayoutOptions returns a left-to-right layout with the default spacing.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{Direction: LeftRight, NodeSep: DefaultNodeSep, RankSep: DefaultRankSep}
}

func (o LayoutOptions) normalized() LayoutOptions {
	if o.Direction != TopBottom {
		o.Direction = LeftRight
	}
	if o.NodeSep < 0 {
		o.NodeSep = 0
	}
	if o.RankSep < 0 {
		o.RankSep = 0
	}
	return o
}

// Layout assigns layered positions and returns a copy of doc with the new
// node positions and anchor sides; edges are unchanged.
//
// Edges that would close a cycle are ignored for ranking, so a loop back to
// an earlier step does not push the earlier step further right. A node's
// rank is the longest path reaching it; nodes within a rank are ordered by
// the mean order of their predecessors, then by document order.
func Layout(doc *Document, opts LayoutOptions) *Document {
	opts = opts.normalized()
	out := doc.Clone()
	if len(out.Nodes) == 0 {
		return out
	}

	order := make(map[string]int, len(out.Nodes))
	for i, n := range out.Nodes {
		if _, dup := order[n.ID]; !dup {
			order[n.ID] = i
		}
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, n := range out.Nodes {
		_ = g.AddVertex(n.ID)
	}
	for _, e := range out.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := order[e.Source]; !ok {
			continue
		}
		if _, ok := order[e.Target]; !ok {
			continue
		}
		// Back edges and duplicates only fail here; the rest of the graph is unaffected.
		_ = g.AddEdge(e.Source, e.Target)
	}

	sorted, err := graph.StableTopologicalSort(g, func(a, b string) bool { return order[a] < order[b] })
	if err != nil {
		sorted = make([]string, 0, len(order))
		for _, n := range out.Nodes {
			sorted = append(sorted, n.ID)
		}
	}
	preds, err := g.PredecessorMap()
	if err != nil {
		preds = map[string]map[string]graph.Edge[string]{}
	}

	rank := make(map[string]int, len(sorted))
	for _, id := range sorted {
		r := 0
		for p := range preds[id] {
			if rank[p]+1 > r {
				r = rank[p] + 1
			}
		}
		rank[id] = r
	}

	maxRank := 0
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]string, maxRank+1)
	for _, id := range sorted {
		layers[rank[id]] = append(layers[rank[id]], id)
	}

	slot := make(map[string]int, len(sorted))
	for r, layer := range layers {
		if r > 0 {
			bary := make(map[string]float64, len(layer))
			for _, id := range layer {
				sum, count := 0.0, 0
				for p := range preds[id] {
					sum += float64(slot[p])
					count++
				}
				if count > 0 {
					bary[id] = sum / float64(count)
				}
			}
			sort.SliceStable(layer, func(i, j int) bool {
				if bary[layer[i]] != bary[layer[j]] {
					return bary[layer[i]] < bary[layer[j]]
				}
				return order[layer[i]] < order[layer[j]]
			})
		}
		for i, id := range layer {
			slot[id] = i
		}
	}

	widest := 0
	for _, layer := range layers {
		if len(layer) > widest {
			widest = len(layer)
		}
	}

	positions := make(map[string]Position, len(sorted))
	for r, layer := range layers {
		for i, id := range layer {
			positions[id] = place(opts, r, i, len(layer), widest)
		}
	}

	source, target := SideRight, SideLeft
	if opts.Direction == TopBottom {
		source, target = SideBottom, SideTop
	}
	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
		out.Nodes[i].SourcePosition = source
		out.Nodes[i].TargetPosition = target
	}
	return out
}

// place computes the top-left corner of the i-th node of a rank holding
// count nodes, centering the rank against the widest one.
func place(opts LayoutOptions, rank, i, count, widest int) Position {
	if opts.Direction == TopBottom {
		step := NodeWidth + opts.NodeSep
		offset := float64(widest-count) * step / 2
		return Position{
			X: LayoutMargin + offset + float64(i)*step,
			Y: LayoutMargin + float64(rank)*(NodeHeight+opts.RankSep),
		}
	}
	step := NodeHeight + opts.NodeSep
	offset := float64(widest-count) * step / 2
	return Position{
		X: LayoutMargin + float64(rank)*(NodeWidth+opts.RankSep),
		Y: LayoutMargin + offset + float64(i)*step,
	}
}

// Steps returns the nodes reachable from the resolved entry node in
// breadth-first order. Successors on one level follow the order of the
// edges that reach them. Unreachable nodes are omitted.
func Steps(doc *Document, entryPoint string) []Node {
	start := ResolveEntry(doc, entryPoint)
	if start == "" {
		return nil
	}

	next := map[string][]string{}
	for _, e := range doc.Edges {
		if doc.HasNode(e.Source) && doc.HasNode(e.Target) {
			next[e.Source] = append(next[e.Source], e.Target)
		}
	}

	// Duplicate ids resolve to their first node.
	byID := make(map[string]Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}

	seen := map[string]bool{start: true}
	queue := []string{start}
	var out []Node
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, byID[id])
		for _, to := range next[id] {
			if !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	return out
}
