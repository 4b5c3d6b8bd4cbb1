package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/guidebook/internal/ports/primary"
)

// ListTags lists every tag.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.Tags.ListTags(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// CreateTag creates a tag.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req primary.CreateTagRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.svc.Tags.CreateTag(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteTag deletes a tag and detaches it from every manual.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tags.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetManualTags lists the tags on a manual.
func (s *Server) GetManualTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.Tags.GetManualTags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// TagManual attaches a tag by name, creating it when it does not exist.
func (s *Server) TagManual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	tag, err := s.svc.Tags.TagManual(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// UntagManual removes {tagID} from the manual.
func (s *Server) UntagManual(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tags.UntagManual(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tagID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
