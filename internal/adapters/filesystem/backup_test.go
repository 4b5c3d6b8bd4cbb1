package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/guidebook/internal/adapters/filesystem"
)

// stepClock returns a clock that advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	cur := start.Add(-time.Minute)
	return func() time.Time {
		cur = cur.Add(time.Minute)
		return cur
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupArchive_NewDatabasePath(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	archive := filesystem.NewBackupArchive(dir, fixed)

	path, err := archive.NewDatabasePath("guidebook")
	if err != nil {
		t.Fatalf("NewDatabasePath failed: %v", err)
	}
	if filepath.Base(path) != "guidebook_20260304_050607.db" {
		t.Errorf("unexpected name %s", filepath.Base(path))
	}

	writeFile(t, path, "db")
	second, err := archive.NewDatabasePath("guidebook")
	if err != nil {
		t.Fatalf("NewDatabasePath failed: %v", err)
	}
	if filepath.Base(second) != "guidebook_20260304_050607-1.db" {
		t.Errorf("expected collision suffix, got %s", filepath.Base(second))
	}
}

func TestBackupArchive_CopyAndReplaceMedia(t *testing.T) {
	root := t.TempDir()
	media := filepath.Join(root, "media")
	writeFile(t, filepath.Join(media, "a.png"), "A")
	writeFile(t, filepath.Join(media, "nested", "b.png"), "B")

	archive := filesystem.NewBackupArchive(filepath.Join(root, "backups"), nil)
	ctx := context.Background()

	snap, err := archive.CopyMedia(ctx, media)
	if err != nil {
		t.Fatalf("CopyMedia failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(snap), "media_") {
		t.Errorf("unexpected snapshot name %s", snap)
	}
	data, err := os.ReadFile(filepath.Join(snap, "nested", "b.png"))
	if err != nil || string(data) != "B" {
		t.Fatalf("nested file not copied: %q, %v", data, err)
	}

	// Change the live media, then restore the snapshot
	writeFile(t, filepath.Join(media, "c.png"), "C")
	if err := os.Remove(filepath.Join(media, "a.png")); err != nil {
		t.Fatal(err)
	}

	if err := archive.ReplaceMedia(ctx, snap, media); err != nil {
		t.Fatalf("ReplaceMedia failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(media, "a.png")); err != nil {
		t.Errorf("expected a.png restored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(media, "c.png")); !os.IsNotExist(err) {
		t.Error("expected c.png to be gone after restore")
	}
}

func TestBackupArchive_CopyMedia_MissingDir(t *testing.T) {
	root := t.TempDir()
	archive := filesystem.NewBackupArchive(filepath.Join(root, "backups"), nil)

	snap, err := archive.CopyMedia(context.Background(), filepath.Join(root, "nope"))
	if err != nil {
		t.Fatalf("CopyMedia failed: %v", err)
	}
	entries, err := os.ReadDir(snap)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(entries))
	}
}

func TestBackupArchive_RotateKeepsTenOfEachKind(t *testing.T) {
	root := t.TempDir()
	media := filepath.Join(root, "media")
	writeFile(t, filepath.Join(media, "a.png"), "A")

	archive := filesystem.NewBackupArchive(filepath.Join(root, "backups"),
		stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	var first string
	for i := 0; i < 11; i++ {
		path, err := archive.NewDatabasePath("guidebook")
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = path
		}
		writeFile(t, path, "db")
		if _, err := archive.CopyMedia(ctx, media); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are never rotated
	writeFile(t, filepath.Join(archive.Dir(), "notes.txt"), "keep")

	removed, err := archive.Rotate(10)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	entries, err := archive.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var dbs, mediaSnaps int
	for _, e := range entries {
		if e.IsMedia {
			mediaSnaps++
		} else {
			dbs++
		}
	}
	if dbs != 10 || mediaSnaps != 10 {
		t.Errorf("expected 10 db and 10 media snapshots, got %d and %d", dbs, mediaSnaps)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("expected the oldest database snapshot to be removed")
	}
	if _, err := os.Stat(filepath.Join(archive.Dir(), "notes.txt")); err != nil {
		t.Error("unrelated file must survive rotation")
	}

	if _, err := archive.Rotate(0); err == nil {
		t.Error("expected error for retain 0")
	}
}

func TestBackupArchive_ListOrdersCollisionsNumerically(t *testing.T) {
	dir := t.TempDir()
	archive := filesystem.NewBackupArchive(dir, nil)

	stamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	names := []string{
		"guidebook_20260101_120000.db",
		"guidebook_20260101_120000-1.db",
		"guidebook_20260101_120000-9.db",
		"guidebook_20260101_120000-10.db",
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		writeFile(t, path, "db")
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := archive.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{
		"guidebook_20260101_120000-10.db",
		"guidebook_20260101_120000-9.db",
		"guidebook_20260101_120000-1.db",
		"guidebook_20260101_120000.db",
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Name, want[i])
		}
	}

	if _, err := archive.Rotate(3); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "guidebook_20260101_120000.db")); !os.IsNotExist(err) {
		t.Error("expected the unsuffixed snapshot to be rotated out first")
	}
	if _, err := os.Stat(filepath.Join(dir, "guidebook_20260101_120000-10.db")); err != nil {
		t.Error("expected -10 to be kept as the newest")
	}
}
