package app

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// MediaServiceImpl implements the MediaService interface.
type MediaServiceImpl struct {
	imageRepo  secondary.ImageRepository
	manualRepo secondary.ManualRepository
	media      secondary.MediaStore
	logger     *zap.Logger
	newName    func() string
}

// NewMediaService creates a new MediaService with injected dependencies.
func NewMediaService(
	imageRepo secondary.ImageRepository,
	manualRepo secondary.ManualRepository,
	media secondary.MediaStore,
	logger *zap.Logger,
) *MediaServiceImpl {
	return &MediaServiceImpl{
		imageRepo:  imageRepo,
		manualRepo: manualRepo,
		media:      media,
		logger:     logger,
		newName:    uuid.NewString,
	}
}

// UploadImage stores the bytes under a generated name and records the image.
// The file is removed again if the record cannot be written.
func (s *MediaServiceImpl) UploadImage(ctx context.Context, req primary.UploadImageRequest) (*primary.Image, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, apperr.Invalid("file name is required")
	}
	if len(req.Data) == 0 {
		return nil, apperr.Invalid("image %s is empty", req.FileName)
	}
	if _, err := s.manualRepo.GetByID(ctx, req.ManualID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	fileName := s.newName() + ext

	path, err := s.media.Save(ctx, fileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	record := &secondary.ImageRecord{
		ManualID:     req.ManualID,
		FileName:     fileName,
		OriginalName: filepath.Base(req.FileName),
		FilePath:     path,
		FileSize:     int64(len(req.Data)),
		MimeType:     detectMimeType(ext, req.Data),
		AltText:      req.AltText,
	}
	if err := s.imageRepo.Create(ctx, record); err != nil {
		s.discard(ctx, path)
		return nil, fmt.Errorf("failed to record image: %w", err)
	}

	created, err := s.imageRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created image: %w", err)
	}
	return recordToImage(created), nil
}

// GetImage retrieves image metadata.
func (s *MediaServiceImpl) GetImage(ctx context.Context, imageID string) (*primary.Image, error) {
	record, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	return recordToImage(record), nil
}

// ReadImage returns the metadata and bytes of an image.
func (s *MediaServiceImpl) ReadImage(ctx context.Context, imageID string) (*primary.Image, []byte, error) {
	record, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.media.Open(ctx, record.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return recordToImage(record), data, nil
}

// ListImages retrieves a manual's images in display order.
func (s *MediaServiceImpl) ListImages(ctx context.Context, manualID string) ([]*primary.Image, error) {
	records, err := s.imageRepo.ListByManual(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]*primary.Image, len(records))
	for i, r := range records {
		images[i] = recordToImage(r)
	}
	return images, nil
}

// DeleteImage removes the image record and its file. A file that is already gone is fine.
func (s *MediaServiceImpl) DeleteImage(ctx context.Context, imageID string) error {
	record, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}

	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if err := s.media.Remove(ctx, record.FilePath); err != nil {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

func (s *MediaServiceImpl) discard(ctx context.Context, path string) {
	if err := s.media.Remove(ctx, path); err != nil {
		s.logger.Warn("failed to remove orphaned image file", zap.String("path", path), zap.Error(err))
	}
}

// detectMimeType prefers the extension and falls back to sniffing the content.
func detectMimeType(ext string, data []byte) string {
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(data)
}

func recordToImage(r *secondary.ImageRecord) *primary.Image {
	return &primary.Image{
		ID:           r.ID,
		ManualID:     r.ManualID,
		FileName:     r.FileName,
		OriginalName: r.OriginalName,
		FilePath:     r.FilePath,
		FileSize:     r.FileSize,
		MimeType:     r.MimeType,
		AltText:      r.AltText,
		DisplayOrder: r.DisplayOrder,
		CreatedAt:    r.CreatedAt,
	}
}

// Ensure MediaServiceImpl implements the interface
var _ primary.MediaService = (*MediaServiceImpl)(nil)
