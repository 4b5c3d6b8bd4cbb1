package guide

import "github.com/example/guidebook/internal/apperr"

// NextLabel is shown for a transition when neither the edge nor its target
// carries a label.
const NextLabel = "Next"

// Choice is one transition offered at the current node.
type Choice struct {
	EdgeID string
	Target string
	Label  string
}

// ResolveEntry picks the node playback starts from: entryPoint if it exists,
// else the first input node, else the first node. Empty when there are no nodes.
func ResolveEntry(doc *Document, entryPoint string) string {
	if entryPoint != "" && doc.HasNode(entryPoint) {
		return entryPoint
	}
	for _, n := range doc.Nodes {
		if n.Type == TypeInput {
			return n.ID
		}
	}
	if len(doc.Nodes) > 0 {
		return doc.Nodes[0].ID
	}
	return ""
}

// Player walks a document one choice at a time. It reads the document on
// every call, so edits made while playing are visible without a restart.
type Player struct {
	doc        *Document
	entryPoint string
	current    string
	history    []string
}

// NewPlayer starts playback at the resolved entry node.
func NewPlayer(doc *Document, entryPoint string) *Player {
	p := &Player{doc: doc, entryPoint: entryPoint}
	p.Restart()
	return p
}

// Current returns the node being shown.
func (p *Player) Current() (Node, bool) {
	n, ok := p.doc.Node(p.current)
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// CurrentID returns the id of the node being shown.
func (p *Player) CurrentID() string {
	return p.current
}

// Choices lists the transitions available from the current node, in edge order.
func (p *Player) Choices() []Choice {
	if !p.doc.HasNode(p.current) {
		return nil
	}
	edges := p.doc.Outgoing(p.current)
	choices := make([]Choice, 0, len(edges))
	for _, e := range edges {
		label := e.Label
		if label == "" {
			if target, ok := p.doc.Node(e.Target); ok {
				label = target.Data.Label
			}
		}
		if label == "" {
			label = NextLabel
		}
		choices = append(choices, Choice{EdgeID: e.ID, Target: e.Target, Label: label})
	}
	return choices
}

// Done reports whether playback has reached a terminal node.
func (p *Player) Done() bool {
	return len(p.Choices()) == 0
}

// Choose follows the edge with the given id.
func (p *Player) Choose(edgeID string) error {
	for _, c := range p.Choices() {
		if c.EdgeID == edgeID {
			p.history = append(p.history, p.current)
			p.current = c.Target
			return nil
		}
	}
	return apperr.Invalid("edge %s is not available from node %s", edgeID, p.current)
}

// ChooseIndex follows the i-th choice (0-based).
func (p *Player) ChooseIndex(i int) error {
	choices := p.Choices()
	if i < 0 || i >= len(choices) {
		return apperr.Invalid("choice %d out of range (%d available)", i+1, len(choices))
	}
	return p.Choose(choices[i].EdgeID)
}

// Back returns to the previous node. Entries for nodes deleted since they
// were visited are skipped. Reports false when there is nowhere to go back to.
func (p *Player) Back() bool {
	for len(p.history) > 0 {
		last := p.history[len(p.history)-1]
		p.history = p.history[:len(p.history)-1]
		if p.doc.HasNode(last) {
			p.current = last
			return true
		}
	}
	return false
}

// Restart clears history and returns to the entry node.
func (p *Player) Restart() {
	p.history = nil
	p.current = ResolveEntry(p.doc, p.entryPoint)
}

// History returns the visited node ids, oldest first.
func (p *Player) History() []string {
	return append([]string(nil), p.history...)
}

// Step is the 1-based step number shown to the user.
func (p *Player) Step() int {
	return len(p.history) + 1
}
