package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/primary"
)

// ListImages lists the manual's images in display order.
func (s *Server) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.svc.Media.ListImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// UploadImage stores the multipart "file" field as an image of the manual.
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, r, apperr.Invalid("invalid upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, apperr.Invalid("missing file field: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, apperr.Invalid("failed to read upload: %v", err))
		return
	}

	img, err := s.svc.Media.UploadImage(r.Context(), primary.UploadImageRequest{
		ManualID: chi.URLParam(r, "id"),
		FileName: header.Filename,
		Data:     data,
		AltText:  r.FormValue("alt_text"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// GetImage returns image metadata.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.svc.Media.GetImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// ReadImage serves the stored bytes with the recorded MIME type.
func (s *Server) ReadImage(w http.ResponseWriter, r *http.Request) {
	img, data, err := s.svc.Media.ReadImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeleteImage removes the image record and its stored file.
func (s *Server) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Media.DeleteImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
