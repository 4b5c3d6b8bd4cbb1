package guide

import (
	"github.com/google/uuid"

	"github.com/example/guidebook/internal/apperr"
)

// Placement says on which side of the anchor a new node is inserted.
type Placement string

const (
	After  Placement = "after"
	Before Placement = "before"
)

// insertOffset is the distance between an anchor and a node inserted next to it.
const insertOffset = 100

// DefaultLabel is the label given to nodes added without one.
const DefaultLabel = "New step"

// NodePatch holds the fields UpdateNodeData changes; nil fields are left alone.
type NodePatch struct {
	Label      *string
	Comment    *string
	HasSubFlow *bool
	ImageIDs   *[]string
	Type       *string
}

// Editor applies structural edits to a document in place.
type Editor struct {
	doc   *Document
	newID func() string
}

// NewEditor wraps doc. Generated node and edge ids are random UUIDs.
func NewEditor(doc *Document) *Editor {
	return &Editor{doc: doc, newID: uuid.NewString}
}

// WithIDs replaces the id generator, mainly for deterministic tests.
func (e *Editor) WithIDs(next func() string) *Editor {
	e.newID = next
	return e
}

// Document returns the document being edited.
func (e *Editor) Document() *Document {
	return e.doc
}

// AddNode inserts a node next to anchorID and splices it into the flow:
// inserted after the anchor it takes over the anchor's outgoing edges,
// inserted before it takes over the incoming ones. With an empty anchorID
// the node is appended unconnected.
func (e *Editor) AddNode(anchorID string, place Placement, data NodeData) (Node, error) {
	if data.Label == "" {
		data.Label = DefaultLabel
	}
	node := Node{ID: e.newID(), Data: data}

	if anchorID == "" {
		if n := len(e.doc.Nodes); n > 0 {
			last := e.doc.Nodes[n-1].Position
			node.Position = Position{X: last.X, Y: last.Y + insertOffset}
		}
		e.doc.Nodes = append(e.doc.Nodes, node)
		return node, nil
	}

	idx := e.doc.NodeIndex(anchorID)
	if idx < 0 {
		return Node{}, apperr.NotFound("node %s not found", anchorID)
	}
	anchor := e.doc.Nodes[idx]

	switch place {
	case After:
		node.Position = Position{X: anchor.Position.X, Y: anchor.Position.Y + insertOffset}
		for i := range e.doc.Edges {
			if e.doc.Edges[i].Source == anchorID {
				e.doc.Edges[i].Source = node.ID
			}
		}
		e.doc.Edges = append(e.doc.Edges, Edge{ID: e.newID(), Source: anchorID, Target: node.ID})
		e.doc.Nodes = insertNode(e.doc.Nodes, idx+1, node)
	case Before:
		node.Position = Position{X: anchor.Position.X, Y: anchor.Position.Y - insertOffset}
		for i := range e.doc.Edges {
			if e.doc.Edges[i].Target == anchorID {
				e.doc.Edges[i].Target = node.ID
			}
		}
		e.doc.Edges = append(e.doc.Edges, Edge{ID: e.newID(), Source: node.ID, Target: anchorID})
		e.doc.Nodes = insertNode(e.doc.Nodes, idx, node)
	default:
		return Node{}, apperr.Invalid("unknown placement %q", place)
	}

	return node, nil
}

func insertNode(nodes []Node, at int, n Node) []Node {
	nodes = append(nodes, Node{})
	copy(nodes[at+1:], nodes[at:])
	nodes[at] = n
	return nodes
}

// DeleteNode removes a node together with every edge touching it.
func (e *Editor) DeleteNode(id string) error {
	idx := e.doc.NodeIndex(id)
	if idx < 0 {
		return apperr.NotFound("node %s not found", id)
	}
	e.doc.Nodes = append(e.doc.Nodes[:idx], e.doc.Nodes[idx+1:]...)

	kept := e.doc.Edges[:0]
	for _, edge := range e.doc.Edges {
		if edge.Source != id && edge.Target != id {
			kept = append(kept, edge)
		}
	}
	e.doc.Edges = kept
	return nil
}

// UpdateNodeData applies patch to the node's data.
func (e *Editor) UpdateNodeData(id string, patch NodePatch) (Node, error) {
	n, ok := e.doc.Node(id)
	if !ok {
		return Node{}, apperr.NotFound("node %s not found", id)
	}
	if patch.Label != nil {
		n.Data.Label = *patch.Label
	}
	if patch.Comment != nil {
		n.Data.Comment = *patch.Comment
	}
	if patch.HasSubFlow != nil {
		n.Data.HasSubFlow = *patch.HasSubFlow
	}
	if patch.ImageIDs != nil {
		n.Data.ImageIDs = append([]string(nil), (*patch.ImageIDs)...)
	}
	if patch.Type != nil {
		n.Type = *patch.Type
	}
	return *n, nil
}

// Connect adds an edge between two existing nodes.
func (e *Editor) Connect(source, target, label string) (Edge, error) {
	if !e.doc.HasNode(source) {
		return Edge{}, apperr.NotFound("node %s not found", source)
	}
	if !e.doc.HasNode(target) {
		return Edge{}, apperr.NotFound("node %s not found", target)
	}
	for _, existing := range e.doc.Edges {
		if existing.Source == source && existing.Target == target {
			return Edge{}, apperr.Conflict("edge %s->%s already exists", source, target)
		}
	}
	edge := Edge{ID: e.newID(), Source: source, Target: target, Label: label}
	e.doc.Edges = append(e.doc.Edges, edge)
	return edge, nil
}

// Disconnect removes an edge.
func (e *Editor) Disconnect(edgeID string) error {
	idx := e.doc.EdgeIndex(edgeID)
	if idx < 0 {
		return apperr.NotFound("edge %s not found", edgeID)
	}
	e.doc.Edges = append(e.doc.Edges[:idx], e.doc.Edges[idx+1:]...)
	return nil
}

// SetLayout replaces the node set, typically with auto-layout output, and
// drops edges left without an endpoint.
func (e *Editor) SetLayout(nodes []Node) error {
	candidate := &Document{Nodes: nodes}
	if err := candidate.Validate(); err != nil {
		return err
	}
	e.doc.Nodes = append([]Node(nil), nodes...)
	e.doc.PruneDanglingEdges()
	return nil
}

// AutoLayout lays the document out and installs the new positions.
func (e *Editor) AutoLayout(opts LayoutOptions) error {
	return e.SetLayout(Layout(e.doc, opts).Nodes)
}
