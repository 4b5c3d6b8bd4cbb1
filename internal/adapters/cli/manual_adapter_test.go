package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/guide"
	"github.com/example/guidebook/internal/ports/primary"
)

// mockManualService overrides the ManualService methods the adapter tests use.
// The embedded interface is nil, so any other call panics.
type mockManualService struct {
	primary.ManualService

	manuals      []*primary.ManualSummary
	unassigned   []*primary.ManualSummary
	manual       *primary.Manual
	lastFavorite *bool
	lastLink     primary.LinkCategoryRequest
}

func (m *mockManualService) ListManuals(ctx context.Context) ([]*primary.ManualSummary, error) {
	return m.manuals, nil
}

func (m *mockManualService) GetUnassignedManuals(ctx context.Context) ([]*primary.ManualSummary, error) {
	return m.unassigned, nil
}

func (m *mockManualService) GetManual(ctx context.Context, id string) (*primary.Manual, error) {
	if m.manual == nil || m.manual.ID != id {
		return nil, apperr.NotFound("manual %s not found", id)
	}
	return m.manual, nil
}

func (m *mockManualService) GetManualCategories(ctx context.Context, id string) ([]*primary.ManualCategory, error) {
	return []*primary.ManualCategory{{Category: &primary.Category{ID: "CAT-001", Path: "受付/窓口"}}}, nil
}

func (m *mockManualService) ToggleFavorite(ctx context.Context, id string, favorite bool) error {
	m.lastFavorite = &favorite
	return nil
}

func (m *mockManualService) LinkCategory(ctx context.Context, req primary.LinkCategoryRequest) error {
	m.lastLink = req
	return nil
}

func TestManualAdapter_List(t *testing.T) {
	tests := []struct {
		name       string
		unassigned bool
		want       string
	}{
		{name: "all", unassigned: false, want: "受付手順"},
		{name: "unassigned", unassigned: true, want: "未分類メモ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockManualService{
				manuals:    []*primary.ManualSummary{{ID: "MAN-001", Title: "受付手順", Version: 1, IsFavorite: true}},
				unassigned: []*primary.ManualSummary{{ID: "MAN-002", Title: "未分類メモ", Version: 1}},
			}
			var buf bytes.Buffer
			adapter := NewManualAdapter(mock, &buf)

			manuals, err := adapter.List(context.Background(), tt.unassigned)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(manuals) != 1 {
				t.Errorf("expected 1 manual, got %d", len(manuals))
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got '%s'", tt.want, buf.String())
			}
		})
	}
}

func TestManualAdapter_ListEmpty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewManualAdapter(&mockManualService{}, &buf)

	if _, err := adapter.List(context.Background(), false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No manuals found.") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestManualAdapter_Show(t *testing.T) {
	mock := &mockManualService{manual: &primary.Manual{
		ID:       "MAN-001",
		Title:    "受付手順",
		Status:   "published",
		Version:  2,
		Revision: 5,
		ParentID: "MAN-000",
		Content:  "本文です",
		Document: &guide.Document{
			Nodes: []guide.Node{{ID: "n1"}, {ID: "n2"}},
			Edges: []guide.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		},
	}}
	var buf bytes.Buffer
	adapter := NewManualAdapter(mock, &buf)

	if _, err := adapter.Show(context.Background(), "MAN-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Version:  2 (revision 5)", "Previous: MAN-000", "2 steps, 1 transitions", "CAT-001  受付/窓口", "本文です"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

func TestManualAdapter_ShowUnreadableGuide(t *testing.T) {
	mock := &mockManualService{manual: &primary.Manual{ID: "MAN-001", DocumentError: "unexpected end of JSON input"}}
	var buf bytes.Buffer
	adapter := NewManualAdapter(mock, &buf)

	if _, err := adapter.Show(context.Background(), "MAN-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "unreadable (unexpected end of JSON input)") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestManualAdapter_ShowMissing(t *testing.T) {
	adapter := NewManualAdapter(&mockManualService{}, &bytes.Buffer{})

	_, err := adapter.Show(context.Background(), "MAN-404")

	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found to survive wrapping, got %v", err)
	}
}

func TestManualAdapter_FavoriteAndLink(t *testing.T) {
	mock := &mockManualService{}
	var buf bytes.Buffer
	adapter := NewManualAdapter(mock, &buf)

	if err := adapter.Favorite(context.Background(), "MAN-001", false); err != nil {
		t.Fatalf("favorite failed: %v", err)
	}
	if mock.lastFavorite == nil || *mock.lastFavorite {
		t.Error("expected favorite=false to be passed")
	}
	if err := adapter.Link(context.Background(), primary.LinkCategoryRequest{ManualID: "MAN-001", CategoryID: "CAT-002", EntryPoint: "n1"}); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if mock.lastLink.EntryPoint != "n1" {
		t.Errorf("expected entry point to be passed, got %+v", mock.lastLink)
	}
	if !strings.Contains(buf.String(), "removed from favorites") || !strings.Contains(buf.String(), "✓ Linked MAN-001 to CAT-002") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

// mockMediaService records uploads.
type mockMediaService struct {
	primary.MediaService
	lastUpload primary.UploadImageRequest
}

func (m *mockMediaService) UploadImage(ctx context.Context, req primary.UploadImageRequest) (*primary.Image, error) {
	m.lastUpload = req
	return &primary.Image{ID: "IMG-001", MimeType: "image/png", FileSize: int64(len(req.Data))}, nil
}

func TestMediaAdapter_Add(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step1.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	mock := &mockMediaService{}
	var buf bytes.Buffer
	adapter := NewMediaAdapter(mock, &buf)

	if _, err := adapter.Add(context.Background(), "MAN-001", path, "受付画面"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastUpload.FileName != "step1.png" || string(mock.lastUpload.Data) != "png-bytes" {
		t.Errorf("unexpected upload %+v", mock.lastUpload)
	}
	if !strings.Contains(buf.String(), "✓ Added image IMG-001 to MAN-001 (image/png, 9 bytes)") {
		t.Errorf("unexpected output '%s'", buf.String())
	}

	if _, err := adapter.Add(context.Background(), "MAN-001", filepath.Join(t.TempDir(), "missing.png"), ""); err == nil {
		t.Error("expected error for a missing file")
	}
}
