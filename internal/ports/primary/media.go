package primary

import "context"

// MediaService defines the primary port for manual images.
type MediaService interface {
	// UploadImage stores an image file for a manual.
	UploadImage(ctx context.Context, req UploadImageRequest) (*Image, error)

	// GetImage retrieves image metadata.
	GetImage(ctx context.Context, imageID string) (*Image, error)

	// ReadImage returns the metadata and bytes of an image.
	ReadImage(ctx context.Context, imageID string) (*Image, []byte, error)

	// ListImages retrieves a manual's images in display order.
	ListImages(ctx context.Context, manualID string) ([]*Image, error)

	// DeleteImage removes an image file and its metadata.
	DeleteImage(ctx context.Context, imageID string) error
}

// UploadImageRequest contains an image to store.
type UploadImageRequest struct {
	ManualID string
	FileName string
	Data     []byte
	AltText  string
}

// Image represents image metadata at the port boundary.
type Image struct {
	ID           string `json:"id"`
	ManualID     string `json:"manual_id"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name,omitempty"`
	FilePath     string `json:"file_path"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	AltText      string `json:"alt_text,omitempty"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
}
