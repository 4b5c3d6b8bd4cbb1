// Package guide is the in-memory model of a manual's flowchart: the node/edge
// document, structural edits, interactive playback and auto-layout.
// Nothing here touches persistence; callers encode the document and save it.
package guide

import (
	"github.com/example/guidebook/internal/apperr"
)

// Node types with playback meaning. Any other value is an ordinary step.
const (
	TypeInput  = "input"
	TypeOutput = "output"
)

// Position is a node's top-left corner on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the payload shown for a step. Keys this package does not
// know about are kept in Extra and written back unchanged.
type NodeData struct {
	Label      string
	Comment    string
	HasSubFlow bool
	ImageIDs   []string
	Extra      map[string]rawJSON
}

// Node is one step of a guide.
type Node struct {
	ID             string
	Type           string
	Data           NodeData
	Position       Position
	SourcePosition string
	TargetPosition string
	Extra          map[string]rawJSON
}

// Edge is a directed transition between two nodes.
type Edge struct {
	ID     string
	Source string
	Target string
	Label  string
	Extra  map[string]rawJSON
}

// Document is a manual's flowchart.
type Document struct {
	Nodes []Node
	Edges []Edge
	Extra map[string]rawJSON
}

// Empty returns a document with no nodes and no edges.
func Empty() *Document {
	return &Document{Nodes: []Node{}, Edges: []Edge{}}
}

// IsEmpty reports whether the document has no nodes.
func (d *Document) IsEmpty() bool {
	return len(d.Nodes) == 0
}

// NodeIndex returns the position of node id in d.Nodes, or -1.
func (d *Document) NodeIndex(id string) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (*Node, bool) {
	if i := d.NodeIndex(id); i >= 0 {
		return &d.Nodes[i], true
	}
	return nil, false
}

// HasNode reports whether a node with the given id exists.
func (d *Document) HasNode(id string) bool {
	return d.NodeIndex(id) >= 0
}

// EdgeIndex returns the position of edge id in d.Edges, or -1.
func (d *Document) EdgeIndex(id string) int {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// Outgoing returns the live edges leaving id, in document order.
// Edges whose target no longer exists are dead and skipped.
func (d *Document) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.Source == id && d.HasNode(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// DanglingEdges returns edges whose source or target is missing.
func (d *Document) DanglingEdges() []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if !d.HasNode(e.Source) || !d.HasNode(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// PruneDanglingEdges removes edges whose source or target is missing and
// returns how many were removed.
func (d *Document) PruneDanglingEdges() int {
	kept := d.Edges[:0]
	removed := 0
	for _, e := range d.Edges {
		if d.HasNode(e.Source) && d.HasNode(e.Target) {
			kept = append(kept, e)
			continue
		}
		removed++
	}
	d.Edges = kept
	return removed
}

// Validate checks identifier uniqueness. Dangling edges are tolerated.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return apperr.Invalid("node without id")
		}
		if seen[n.ID] {
			return apperr.Invalid("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	edges := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		if e.ID == "" {
			return apperr.Invalid("edge %s->%s without id", e.Source, e.Target)
		}
		if edges[e.ID] {
			return apperr.Invalid("duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
		Extra: cloneExtra(d.Extra),
	}
	for i, n := range d.Nodes {
		n.Data.ImageIDs = append([]string(nil), n.Data.ImageIDs...)
		n.Data.Extra = cloneExtra(n.Data.Extra)
		n.Extra = cloneExtra(n.Extra)
		out.Nodes[i] = n
	}
	for i, e := range d.Edges {
		e.Extra = cloneExtra(e.Extra)
		out.Edges[i] = e
	}
	return out
}

func cloneExtra(m map[string]rawJSON) map[string]rawJSON {
	if m == nil {
		return nil
	}
	out := make(map[string]rawJSON, len(m))
	for k, v := range m {
		out[k] = append(rawJSON(nil), v...)
	}
	return out
}
