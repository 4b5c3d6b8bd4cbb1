package guide

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type rawJSON = json.RawMessage

// Decode parses the stored text form of a document. Empty text and JSON
// null both decode to an empty document.
func Decode(text string) (*Document, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "null" {
		return Empty(), nil
	}

	doc := &Document{}
	if err := json.Unmarshal([]byte(trimmed), doc); err != nil {
		return nil, fmt.Errorf("failed to decode flowchart: %w", err)
	}
	return doc, nil
}

// Encode returns the stored text form of the document.
func (d *Document) Encode() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode flowchart: %w", err)
	}
	return string(data), nil
}

// Equal reports whether two documents encode identically.
func Equal(a, b *Document) bool {
	ea, errA := a.Encode()
	eb, errB := b.Encode()
	return errA == nil && errB == nil && ea == eb
}

// splitKnown decodes an object and removes the given keys from it,
// returning them separately. What remains is the passthrough set.
func splitKnown(data []byte, known ...string) (map[string]rawJSON, map[string]rawJSON, error) {
	var all map[string]rawJSON
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, nil, err
	}
	picked := make(map[string]rawJSON, len(known))
	for _, k := range known {
		if v, ok := all[k]; ok {
			picked[k] = v
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}
	return picked, all, nil
}

func decodeField(fields map[string]rawJSON, key string, dst any) error {
	v, ok := fields[key]
	if !ok || bytes.Equal(v, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

func withExtra(extra map[string]rawJSON, size int) map[string]any {
	out := make(map[string]any, len(extra)+size)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	out := withExtra(d.Extra, 2)
	nodes := d.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	edges := d.Edges
	if edges == nil {
		edges = []Edge{}
	}
	out["nodes"] = nodes
	out["edges"] = edges
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	fields, extra, err := splitKnown(data, "nodes", "edges")
	if err != nil {
		return err
	}
	d.Nodes = []Node{}
	d.Edges = []Edge{}
	d.Extra = extra
	if err := decodeField(fields, "nodes", &d.Nodes); err != nil {
		return err
	}
	return decodeField(fields, "edges", &d.Edges)
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	out := withExtra(n.Extra, 6)
	out["id"] = n.ID
	if n.Type != "" {
		out["type"] = n.Type
	}
	out["data"] = n.Data
	out["position"] = n.Position
	if n.SourcePosition != "" {
		out["sourcePosition"] = n.SourcePosition
	}
	if n.TargetPosition != "" {
		out["targetPosition"] = n.TargetPosition
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	fields, extra, err := splitKnown(data, "id", "type", "data", "position", "sourcePosition", "targetPosition")
	if err != nil {
		return err
	}
	*n = Node{Extra: extra}
	for key, dst := range map[string]any{
		"id":             &n.ID,
		"type":           &n.Type,
		"data":           &n.Data,
		"position":       &n.Position,
		"sourcePosition": &n.SourcePosition,
		"targetPosition": &n.TargetPosition,
	} {
		if err := decodeField(fields, key, dst); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (nd NodeData) MarshalJSON() ([]byte, error) {
	out := withExtra(nd.Extra, 4)
	out["label"] = nd.Label
	if nd.Comment != "" {
		out["comment"] = nd.Comment
	}
	if nd.HasSubFlow {
		out["hasSubFlow"] = true
	}
	if len(nd.ImageIDs) > 0 {
		out["imageIds"] = nd.ImageIDs
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
// imageIds written by older releases are numbers; both forms are accepted.
func (nd *NodeData) UnmarshalJSON(data []byte) error {
	fields, extra, err := splitKnown(data, "label", "comment", "hasSubFlow", "imageIds")
	if err != nil {
		return err
	}
	*nd = NodeData{Extra: extra}
	if err := decodeField(fields, "label", &nd.Label); err != nil {
		return err
	}
	if err := decodeField(fields, "comment", &nd.Comment); err != nil {
		return err
	}
	if err := decodeField(fields, "hasSubFlow", &nd.HasSubFlow); err != nil {
		return err
	}

	var ids []rawJSON
	if err := decodeField(fields, "imageIds", &ids); err != nil {
		return err
	}
	for _, raw := range ids {
		id, err := imageIDFromJSON(raw)
		if err != nil {
			return err
		}
		nd.ImageIDs = append(nd.ImageIDs, id)
	}
	return nil
}

func imageIDFromJSON(raw rawJSON) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("field \"imageIds\": unsupported value %s", string(raw))
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// MarshalJSON implements json.Marshaler.
func (e Edge) MarshalJSON() ([]byte, error) {
	out := withExtra(e.Extra, 4)
	out["id"] = e.ID
	out["source"] = e.Source
	out["target"] = e.Target
	if e.Label != "" {
		out["label"] = e.Label
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Edge) UnmarshalJSON(data []byte) error {
	fields, extra, err := splitKnown(data, "id", "source", "target", "label")
	if err != nil {
		return err
	}
	*e = Edge{Extra: extra}
	for key, dst := range map[string]*string{
		"id":     &e.ID,
		"source": &e.Source,
		"target": &e.Target,
		"label":  &e.Label,
	} {
		if err := decodeField(fields, key, dst); err != nil {
			return err
		}
	}
	return nil
}
