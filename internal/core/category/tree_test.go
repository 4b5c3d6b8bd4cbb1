package category

import (
	"reflect"
	"testing"
)

func sampleItems() []Item {
	return []Item{
		{ID: "CAT-001", Name: "受付", Level: 1, DisplayOrder: 1},
		{ID: "CAT-002", ParentID: "CAT-001", Name: "受付サブ", Level: 2},
		{ID: "CAT-003", ParentID: "CAT-002", Name: "深い", Level: 3},
		{ID: "CAT-004", Name: "経理", Level: 1, DisplayOrder: 0},
		{ID: "CAT-005", ParentID: "CAT-404", Name: "孤児", Level: 2, DisplayOrder: 2},
	}
}

func TestBuildTree(t *testing.T) {
	roots := BuildTree(sampleItems())

	var names []string
	for _, r := range roots {
		names = append(names, r.Name)
	}
	if want := []string{"経理", "受付", "孤児"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("roots = %v, want %v", names, want)
	}

	reception := roots[1]
	if len(reception.Children) != 1 || reception.Children[0].ID != "CAT-002" {
		t.Fatalf("unexpected children of 受付: %+v", reception.Children)
	}
	if len(reception.Children[0].Children) != 1 {
		t.Errorf("expected grandchild under CAT-002")
	}
}

func TestDescendantsAndHeight(t *testing.T) {
	items := sampleItems()

	var ids []string
	for _, d := range Descendants(items, "CAT-001") {
		ids = append(ids, d.ID)
	}
	if want := []string{"CAT-002", "CAT-003"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Descendants = %v, want %v", ids, want)
	}

	if !IsDescendant(items, "CAT-001", "CAT-003") {
		t.Error("CAT-003 should be below CAT-001")
	}
	if IsDescendant(items, "CAT-002", "CAT-001") {
		t.Error("CAT-001 is not below CAT-002")
	}

	if h := SubtreeHeight(items, "CAT-001"); h != 2 {
		t.Errorf("SubtreeHeight(CAT-001) = %d, want 2", h)
	}
	if h := SubtreeHeight(items, "CAT-003"); h != 0 {
		t.Errorf("SubtreeHeight(CAT-003) = %d, want 0", h)
	}
}

func TestPaths(t *testing.T) {
	if got := JoinPath("", "受付"); got != "受付" {
		t.Errorf("JoinPath root = %q", got)
	}
	if got := JoinPath("受付", "受付サブ"); got != "受付/受付サブ" {
		t.Errorf("JoinPath child = %q", got)
	}
	if got := SplitPath(" 受付 / /受付サブ/"); !reflect.DeepEqual(got, []string{"受付", "受付サブ"}) {
		t.Errorf("SplitPath = %v", got)
	}
}
