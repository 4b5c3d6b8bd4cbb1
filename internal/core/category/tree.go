package category

import (
	"sort"
	"strings"
)

// PathSeparator joins category names in a materialized path.
const PathSeparator = "/"

// Item is the flat row the tree helpers work on.
type Item struct {
	ID           string
	ParentID     string
	Name         string
	Level        int
	DisplayOrder int
}

// TreeNode is a transient view of one category and its children.
type TreeNode struct {
	Item
	Children []*TreeNode
}

// JoinPath returns the materialized path of a child named name.
func JoinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + PathSeparator + name
}

// SplitPath splits a materialized path into trimmed, non-empty names.
func SplitPath(path string) []string {
	var names []string
	for _, part := range strings.Split(path, PathSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// BuildTree builds the forest from flat rows. Items whose parent is missing
// are returned as roots. Siblings are ordered by display order, input order
// breaking ties.
func BuildTree(items []Item) []*TreeNode {
	nodes := make(map[string]*TreeNode, len(items))
	for _, it := range items {
		nodes[it.ID] = &TreeNode{Item: it}
	}

	var roots []*TreeNode
	for _, it := range items {
		n := nodes[it.ID]
		if parent, ok := nodes[it.ParentID]; ok && it.ParentID != "" && it.ParentID != it.ID {
			parent.Children = append(parent.Children, n)
			continue
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].DisplayOrder < nodes[j].DisplayOrder
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// children indexes items by parent id.
func children(items []Item) map[string][]Item {
	out := make(map[string][]Item)
	for _, it := range items {
		if it.ParentID != "" {
			out[it.ParentID] = append(out[it.ParentID], it)
		}
	}
	return out
}

// Descendants returns every item below id, breadth first.
func Descendants(items []Item, id string) []Item {
	byParent := children(items)
	var out []Item
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range byParent[cur] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out
}

// IsDescendant reports whether candidate lies in the subtree below id.
func IsDescendant(items []Item, id, candidate string) bool {
	for _, d := range Descendants(items, id) {
		if d.ID == candidate {
			return true
		}
	}
	return false
}

// SubtreeHeight returns how many levels lie below id (0 for a leaf).
func SubtreeHeight(items []Item, id string) int {
	byParent := children(items)
	var height func(string, int) int
	height = func(cur string, depth int) int {
		if depth > len(items) {
			return depth
		}
		best := 0
		for _, child := range byParent[cur] {
			if h := 1 + height(child.ID, depth+1); h > best {
				best = h
			}
		}
		return best
	}
	return height(id, 0)
}
