package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/example/guidebook/internal/ports/primary"
)

// MediaAdapter translates CLI operations to MediaService calls.
type MediaAdapter struct {
	service primary.MediaService
	out     io.Writer
}

// NewMediaAdapter creates a new MediaAdapter with the given service.
func NewMediaAdapter(service primary.MediaService, out io.Writer) *MediaAdapter {
	return &MediaAdapter{
		service: service,
		out:     out,
	}
}

// Add uploads a local image file to a manual.
func (a *MediaAdapter) Add(ctx context.Context, manualID, path, altText string) (*primary.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err := a.service.UploadImage(ctx, primary.UploadImageRequest{
		ManualID: manualID,
		FileName: filepath.Base(path),
		Data:     data,
		AltText:  altText,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Added image %s to %s (%s, %d bytes)\n", img.ID, manualID, img.MimeType, img.FileSize)
	return img, nil
}

// List prints a manual's images in display order.
func (a *MediaAdapter) List(ctx context.Context, manualID string) ([]*primary.Image, error) {
	images, err := a.service.ListImages(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	if len(images) == 0 {
		fmt.Fprintf(a.out, "No images for %s.\n", manualID)
		return images, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tPATH")
	fmt.Fprintln(w, "--\t----\t----\t----\t----")
	for _, img := range images {
		name := img.OriginalName
		if name == "" {
			name = img.FileName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", img.ID, name, img.MimeType, img.FileSize, img.FilePath)
	}
	w.Flush()
	return images, nil
}

// Export copies an image's bytes to dest.
func (a *MediaAdapter) Export(ctx context.Context, imageID, dest string) error {
	_, data, err := a.service.ReadImage(ctx, imageID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	fmt.Fprintf(a.out, "✓ Wrote %s to %s\n", imageID, dest)
	return nil
}

// Remove deletes an image file and its metadata.
func (a *MediaAdapter) Remove(ctx context.Context, imageID string) error {
	if err := a.service.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted image %s\n", imageID)
	return nil
}
