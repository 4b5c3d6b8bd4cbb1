package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/guidebook/internal/ports/primary"
)

// ListManuals lists every manual. ?q= searches title and content;
// ?unassigned=true lists manuals without a category.
func (s *Server) ListManuals(w http.ResponseWriter, r *http.Request) {
	var (
		manuals []*primary.ManualSummary
		err     error
	)
	switch q := r.URL.Query().Get("q"); {
	case q != "":
		manuals, err = s.svc.Manuals.SearchManuals(r.Context(), q)
	case queryBool(r, "unassigned"):
		manuals, err = s.svc.Manuals.GetUnassignedManuals(r.Context())
	default:
		manuals, err = s.svc.Manuals.ListManuals(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manuals)
}

// GetManual returns one manual.
func (s *Server) GetManual(w http.ResponseWriter, r *http.Request) {
	manual, err := s.svc.Manuals.GetManual(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manual)
}

// CreateManual creates a manual, linking it to category_id when given.
func (s *Server) CreateManual(w http.ResponseWriter, r *http.Request) {
	var req primary.CreateManualRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.svc.Manuals.CreateManual(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateManual applies the fields present in the body. A stale
// expected_revision answers 409.
func (s *Server) UpdateManual(w http.ResponseWriter, r *http.Request) {
	var req primary.UpdateManualRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	manual, err := s.svc.Manuals.UpdateManual(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manual)
}

// DeleteManual removes a manual and its stored images.
func (s *Server) DeleteManual(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Manuals.DeleteManual(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetVersions lists the manual's version chain, newest first.
func (s *Server) GetVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.svc.Manuals.GetVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// SaveAsNewVersion copies the manual into the next version of its chain.
func (s *Server) SaveAsNewVersion(w http.ResponseWriter, r *http.Request) {
	var req primary.SaveVersionRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	resp, err := s.svc.Manuals.SaveAsNewVersion(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetHistory lists the snapshots taken before each update.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.Manuals.GetHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// ToggleFavorite sets the favorite flag from the body.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.svc.Manuals.ToggleFavorite(r.Context(), chi.URLParam(r, "id"), req.Favorite); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetManualCategories lists the categories a manual is linked to.
func (s *Server) GetManualCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Manuals.GetManualCategories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// LinkCategory links the manual to a category.
func (s *Server) LinkCategory(w http.ResponseWriter, r *http.Request) {
	var req primary.LinkCategoryRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	if err := s.svc.Manuals.LinkCategory(r.Context(), req); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlinkCategory removes the link to {categoryID}.
func (s *Server) UnlinkCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Manuals.UnlinkCategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "categoryID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCategory moves the manual's link from one category to another.
func (s *Server) MoveCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.svc.Manuals.MoveCategory(r.Context(), chi.URLParam(r, "id"), req.From, req.To); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcquireManualLock takes the edit lock on the manual.
func (s *Server) AcquireManualLock(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLock(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.svc.Manuals.AcquireLock(r.Context(), chi.URLParam(r, "id"), req.Holder)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, lockStatusCode(res), res)
}

// ReleaseManualLock releases the manual lock with the held token.
func (s *Server) ReleaseManualLock(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLock(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.svc.Manuals.ReleaseLock(r.Context(), chi.URLParam(r, "id"), req.Token); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ForceReleaseManualLock breaks the manual lock whoever holds it.
func (s *Server) ForceReleaseManualLock(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Manuals.ForceReleaseLock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// CheckManualLock reports who holds the manual lock.
func (s *Server) CheckManualLock(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Manuals.CheckLock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
