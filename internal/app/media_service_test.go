package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestMediaService() (*MediaServiceImpl, *mockImageRepository, *mockMediaStore) {
	imageRepo := newMockImageRepository()
	manualRepo := newMockManualRepository()
	manualRepo.add(&secondary.ManualRecord{ID: "MAN-001", Title: "受付手順"})
	media := newMockMediaStore()

	service := NewMediaService(imageRepo, manualRepo, media, zap.NewNop())
	service.newName = func() string { return "generated" }
	return service, imageRepo, media
}

func TestUploadImage_Success(t *testing.T) {
	service, _, media := newTestMediaService()

	img, err := service.UploadImage(context.Background(), primary.UploadImageRequest{
		ManualID: "MAN-001",
		FileName: "screens/Step1.PNG",
		Data:     pngHeader,
		AltText:  "受付画面",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if img.ID != "IMG-001" {
		t.Errorf("expected IMG-001, got %s", img.ID)
	}
	if img.FileName != "generated.png" {
		t.Errorf("expected generated file name with lowercased extension, got %q", img.FileName)
	}
	if img.OriginalName != "Step1.PNG" {
		t.Errorf("expected original base name, got %q", img.OriginalName)
	}
	if img.FilePath != "/media/generated.png" {
		t.Errorf("expected stored path, got %q", img.FilePath)
	}
	if img.MimeType != "image/png" {
		t.Errorf("expected image/png, got %q", img.MimeType)
	}
	if img.FileSize != int64(len(pngHeader)) {
		t.Errorf("expected size %d, got %d", len(pngHeader), img.FileSize)
	}
	if _, ok := media.files["/media/generated.png"]; !ok {
		t.Error("expected file to be stored")
	}
}

func TestUploadImage_SniffsWithoutExtension(t *testing.T) {
	service, _, _ := newTestMediaService()

	img, err := service.UploadImage(context.Background(), primary.UploadImageRequest{
		ManualID: "MAN-001",
		FileName: "clipboard",
		Data:     pngHeader,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if img.MimeType != "image/png" {
		t.Errorf("expected sniffed image/png, got %q", img.MimeType)
	}
}

func TestUploadImage_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     primary.UploadImageRequest
		wantErr func(error) bool
	}{
		{name: "no file name", req: primary.UploadImageRequest{ManualID: "MAN-001", Data: pngHeader}, wantErr: apperr.IsInvalid},
		{name: "no data", req: primary.UploadImageRequest{ManualID: "MAN-001", FileName: "a.png"}, wantErr: apperr.IsInvalid},
		{name: "missing manual", req: primary.UploadImageRequest{ManualID: "MAN-404", FileName: "a.png", Data: pngHeader}, wantErr: apperr.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, media := newTestMediaService()

			_, err := service.UploadImage(context.Background(), tt.req)

			if !tt.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(media.files) != 0 {
				t.Error("expected nothing to be stored")
			}
		})
	}
}

func TestUploadImage_RecordFailureRemovesFile(t *testing.T) {
	service, imageRepo, media := newTestMediaService()
	imageRepo.createErr = errors.New("disk full")

	_, err := service.UploadImage(context.Background(), primary.UploadImageRequest{
		ManualID: "MAN-001",
		FileName: "a.png",
		Data:     pngHeader,
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if len(media.files) != 0 {
		t.Error("expected orphaned file to be removed")
	}
	if len(media.removed) != 1 || media.removed[0] != "/media/generated.png" {
		t.Errorf("unexpected removals: %v", media.removed)
	}
}

func TestReadAndListImages(t *testing.T) {
	service, _, _ := newTestMediaService()
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		if _, err := service.UploadImage(ctx, primary.UploadImageRequest{ManualID: "MAN-001", FileName: name, Data: pngHeader}); err != nil {
			t.Fatalf("upload %s failed: %v", name, err)
		}
	}

	images, err := service.ListImages(ctx, "MAN-001")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(images) != 2 || images[0].DisplayOrder != 0 || images[1].DisplayOrder != 1 {
		t.Errorf("expected 2 images in display order, got %+v", images)
	}

	img, data, err := service.ReadImage(ctx, "IMG-001")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if img.ID != "IMG-001" || string(data) != string(pngHeader) {
		t.Error("expected stored bytes back")
	}

	if _, _, err := service.ReadImage(ctx, "IMG-404"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteImage(t *testing.T) {
	service, imageRepo, media := newTestMediaService()
	ctx := context.Background()

	img, err := service.UploadImage(ctx, primary.UploadImageRequest{ManualID: "MAN-001", FileName: "a.png", Data: pngHeader})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if err := service.DeleteImage(ctx, img.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(imageRepo.images) != 0 {
		t.Error("expected image record to be deleted")
	}
	if len(media.files) != 0 {
		t.Error("expected image file to be deleted")
	}
	if err := service.DeleteImage(ctx, img.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
