package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/example/guidebook/internal/ports/secondary"
)

// timestampFormat is the <YYYYMMDD>_<HHMMSS> part of snapshot names.
const timestampFormat = "20060102_150405"

const mediaPrefix = "media"

var (
	dbSnapshotPatterns = []glob.Glob{
		glob.MustCompile("*_????????_??????.db"),
		glob.MustCompile("*_????????_??????-*.db"),
	}
	mediaSnapshotPatterns = []glob.Glob{
		glob.MustCompile(mediaPrefix + "_????????_??????"),
		glob.MustCompile(mediaPrefix + "_????????_??????-*"),
	}
)

func matchesAny(patterns []glob.Glob, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// BackupArchive implements secondary.BackupArchive on a local directory.
type BackupArchive struct {
	dir string
	now func() time.Time
}

// NewBackupArchive creates an archive in dir. now defaults to time.Now.
func NewBackupArchive(dir string, now func() time.Time) *BackupArchive {
	if now == nil {
		now = time.Now
	}
	return &BackupArchive{dir: dir, now: now}
}

// Dir returns the backup directory.
func (a *BackupArchive) Dir() string {
	return a.dir
}

// reserve returns a path in the archive for prefix_<timestamp>suffix that does
// not exist yet, appending -N on collision.
func (a *BackupArchive) reserve(prefix, suffix string) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := a.now().UTC().Format(timestampFormat)
	base := fmt.Sprintf("%s_%s", prefix, stamp)
	for n := 0; ; n++ {
		name := base + suffix
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", base, n, suffix)
		}
		path := filepath.Join(a.dir, name)
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
}

// NewDatabasePath reserves <dir>/<baseName>_<YYYYMMDD>_<HHMMSS>.db.
func (a *BackupArchive) NewDatabasePath(baseName string) (string, error) {
	return a.reserve(baseName, ".db")
}

// CopyMedia copies mediaDir into <dir>/media_<YYYYMMDD>_<HHMMSS>/.
// A missing media directory produces an empty snapshot.
func (a *BackupArchive) CopyMedia(ctx context.Context, mediaDir string) (string, error) {
	dest, err := a.reserve(mediaPrefix, "")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", fmt.Errorf("failed to create media snapshot: %w", err)
	}

	if _, err := os.Stat(mediaDir); errors.Is(err, fs.ErrNotExist) {
		return dest, nil
	}
	if err := copyTree(ctx, mediaDir, dest); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

// ReplaceMedia replaces mediaDir with a copy of snapshotDir.
// The copy is staged next to mediaDir and swapped in once complete.
func (a *BackupArchive) ReplaceMedia(ctx context.Context, snapshotDir, mediaDir string) error {
	info, err := os.Stat(snapshotDir)
	if err != nil {
		return fmt.Errorf("media snapshot %s: %w", snapshotDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media snapshot %s is not a directory", snapshotDir)
	}

	staging := mediaDir + ".restoring"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := copyTree(ctx, snapshotDir, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}
	if err := os.RemoveAll(mediaDir); err != nil {
		return fmt.Errorf("failed to remove media directory: %w", err)
	}
	if err := os.Rename(staging, mediaDir); err != nil {
		return fmt.Errorf("failed to move restored media into place: %w", err)
	}
	return nil
}

// List retrieves the snapshots currently kept, newest first.
func (a *BackupArchive) List() ([]secondary.BackupEntry, error) {
	dbs, media, err := a.scan()
	if err != nil {
		return nil, err
	}
	all := append(dbs, media...)
	sortNewestFirst(all)

	out := make([]secondary.BackupEntry, 0, len(all))
	for _, e := range all {
		out = append(out, e.entry())
	}
	return out, nil
}

// Rotate keeps the newest retain database snapshots and, independently, the
// newest retain media snapshots. It returns how many were removed.
func (a *BackupArchive) Rotate(retain int) (int, error) {
	if retain < 1 {
		return 0, fmt.Errorf("retain must be at least 1, got %d", retain)
	}
	dbs, media, err := a.scan()
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, group := range [][]snapshot{dbs, media} {
		sortNewestFirst(group)
		if len(group) <= retain {
			continue
		}
		for _, s := range group[retain:] {
			if err := os.RemoveAll(s.path); err != nil {
				errs = append(errs, fmt.Errorf("failed to delete %s: %w", s.name, err))
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

type snapshot struct {
	name    string
	path    string
	isMedia bool
	modTime time.Time
	size    int64
}

func (s snapshot) entry() secondary.BackupEntry {
	return secondary.BackupEntry{
		Name:    s.name,
		Path:    s.path,
		IsMedia: s.isMedia,
		ModTime: s.modTime.UTC().Format(time.RFC3339),
		Size:    s.size,
	}
}

func (a *BackupArchive) scan() (dbs, media []snapshot, err error) {
	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		s := snapshot{
			name:    e.Name(),
			path:    filepath.Join(a.dir, e.Name()),
			isMedia: e.IsDir(),
			modTime: info.ModTime(),
			size:    info.Size(),
		}
		switch {
		case e.IsDir() && matchesAny(mediaSnapshotPatterns, e.Name()):
			media = append(media, s)
		case e.Type().IsRegular() && matchesAny(dbSnapshotPatterns, e.Name()):
			dbs = append(dbs, s)
		}
	}
	return dbs, media, nil
}

// sortNewestFirst orders by modification time, then name stem, then the
// -N collision suffix, all descending.
func sortNewestFirst(s []snapshot) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].modTime.Equal(s[j].modTime) {
			return s[i].modTime.After(s[j].modTime)
		}
		stemI, seqI := collisionSuffix(s[i].name)
		stemJ, seqJ := collisionSuffix(s[j].name)
		if stemI != stemJ {
			return stemI > stemJ
		}
		return seqI > seqJ
	})
}

// collisionSuffix splits a snapshot name into the name without extension and
// -N suffix, and N. The first snapshot of a second has N 0.
func collisionSuffix(name string) (string, int) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(stem, '-')
	if i < 0 || i < strings.LastIndexByte(stem, '_') {
		return stem, 0
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil {
		return stem, 0
	}
	return stem[:i], n
}

// copyTree copies the regular files and directories under src into dst.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// Ensure BackupArchive implements the interface.
var _ secondary.BackupArchive = (*BackupArchive)(nil)
