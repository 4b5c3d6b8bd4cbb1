package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionsByID(doc *Document) map[string]Position {
	out := make(map[string]Position, len(doc.Nodes))
	for _, n := range doc.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestLayout_LeftRightChain(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "b"}, {ID: "start"}, {ID: "a"}},
		Edges: []Edge{{ID: "e1", Source: "start", Target: "a"}, {ID: "e2", Source: "a", Target: "b"}},
	}

	out := Layout(doc, DefaultLayoutOptions())
	pos := positionsByID(out)

	assert.Equal(t, Position{X: 50, Y: 50}, pos["start"])
	assert.Equal(t, Position{X: 290, Y: 50}, pos["a"])
	assert.Equal(t, Position{X: 530, Y: 50}, pos["b"])
	for _, n := range out.Nodes {
		assert.Equal(t, SideRight, n.SourcePosition)
		assert.Equal(t, SideLeft, n.TargetPosition)
	}

	// Input document is left untouched.
	assert.Equal(t, Position{}, doc.Nodes[0].Position)
	assert.Equal(t, []string{"b", "start", "a"}, nodeIDs(out))
}

func TestLayout_BranchCentersNarrowRanks(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "start"}, {ID: "check"}, {ID: "room"}, {ID: "wait"}},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "check"},
			{ID: "e2", Source: "check", Target: "room"},
			{ID: "e3", Source: "check", Target: "wait"},
		},
	}

	pos := positionsByID(Layout(doc, DefaultLayoutOptions()))

	assert.Equal(t, Position{X: 50, Y: 85}, pos["start"])
	assert.Equal(t, Position{X: 290, Y: 85}, pos["check"])
	assert.Equal(t, Position{X: 530, Y: 50}, pos["room"])
	assert.Equal(t, Position{X: 530, Y: 120}, pos["wait"])
}

func TestLayout_TopBottomAndClampedSpacing(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "start"}, {ID: "a"}},
		Edges: []Edge{{ID: "e1", Source: "start", Target: "a"}},
	}

	out := Layout(doc, LayoutOptions{Direction: TopBottom, NodeSep: -5, RankSep: -10})
	pos := positionsByID(out)

	assert.Equal(t, Position{X: 50, Y: 50}, pos["start"])
	assert.Equal(t, Position{X: 50, Y: 90}, pos["a"])
	assert.Equal(t, SideBottom, out.Nodes[0].SourcePosition)
	assert.Equal(t, SideTop, out.Nodes[0].TargetPosition)
}

func TestLayout_IgnoresBackEdgesAndDanglingEdges(t *testing.T) {
	doc := &Document{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "a"},
			{ID: "e3", Source: "b", Target: "ghost"},
			{ID: "e4", Source: "a", Target: "a"},
		},
	}

	out := Layout(doc, DefaultLayoutOptions())
	pos := positionsByID(out)

	assert.Equal(t, float64(50), pos["a"].X)
	assert.Equal(t, float64(290), pos["b"].X)
	assert.Len(t, out.Edges, 4)
}

func TestEditor_AutoLayout(t *testing.T) {
	doc := chainDoc()
	require.NoError(t, NewEditor(doc).AutoLayout(LayoutOptions{Direction: TopBottom, NodeSep: 30, RankSep: 80}))

	assert.Equal(t, Position{X: 50, Y: 50}, doc.Nodes[0].Position)
	assert.Equal(t, Position{X: 50, Y: 170}, doc.Nodes[1].Position)
}

func stepIDs(steps []Node) []string {
	ids := make([]string, len(steps))
	for i, n := range steps {
		ids[i] = n.ID
	}
	return ids
}

func TestSteps_ReachableInBreadthFirstOrder(t *testing.T) {
	assert.Equal(t, []string{"start", "check", "room", "wait"}, stepIDs(Steps(branchDoc(), "")))

	// Document order differs from traversal order here.
	doc := &Document{
		Nodes: []Node{
			{ID: "deep", Data: NodeData{Label: "精算"}},
			{ID: "a", Type: TypeInput, Data: NodeData{Label: "受付"}},
			{ID: "right", Data: NodeData{Label: "案内"}},
			{ID: "left", Data: NodeData{Label: "確認"}},
			{ID: "island", Data: NodeData{Label: "未接続"}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "left"},
			{ID: "e2", Source: "left", Target: "deep"},
			{ID: "e3", Source: "a", Target: "right"},
			{ID: "e4", Source: "right", Target: "deep"},
			{ID: "e5", Source: "deep", Target: "a"},
		},
	}
	assert.Equal(t, []string{"a", "left", "right", "deep"}, stepIDs(Steps(doc, "")))
	assert.Equal(t, []string{"right", "deep", "a", "left"}, stepIDs(Steps(doc, "right")))

	assert.Nil(t, Steps(Empty(), ""))
}
