package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/ports/primary"
)

// lockRequest is the body of acquire and release calls.
// An empty holder defaults to the request's actor.
type lockRequest struct {
	Holder string `json:"holder"`
	Token  string `json:"token"`
}

func (s *Server) decodeLock(r *http.Request) (lockRequest, error) {
	var req lockRequest
	if err := decode(r, &req); err != nil {
		return req, err
	}
	if req.Holder == "" {
		req.Holder = ctxutil.ActorFromContext(r.Context())
	}
	if req.Token == "" {
		req.Token = r.URL.Query().Get("token")
	}
	return req, nil
}

// lockStatusCode reports 409 for an acquire that found the lock held.
func lockStatusCode(res *primary.LockResult) int {
	if res.Acquired {
		return http.StatusOK
	}
	return http.StatusConflict
}

// ListCategories lists every category by level, then display order.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategoryTree returns the category forest with children nested.
func (s *Server) GetCategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.svc.Categories.GetCategoryTree(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// GetCategory returns one category.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.svc.Categories.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CreateCategory creates a category under the optional parent_id.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req primary.CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.svc.Categories.CreateCategory(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateCategory renames, re-icons, reorders or moves a category.
// Only the fields present in the body change.
func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req primary.UpdateCategoryRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.CategoryID = chi.URLParam(r, "id")
	category, err := s.svc.Categories.UpdateCategory(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory deletes a category; ?recursive=true also deletes its subcategories.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.DeleteCategory(r.Context(), chi.URLParam(r, "id"), queryBool(r, "recursive")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCategoryManuals lists the manuals linked to a category.
func (s *Server) GetCategoryManuals(w http.ResponseWriter, r *http.Request) {
	manuals, err := s.svc.Categories.GetCategoryManuals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manuals)
}

// AcquireGlobalLock takes the category tree lock. A lock held by someone
// else answers 409 with the current holder in the body.
func (s *Server) AcquireGlobalLock(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLock(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.svc.Categories.AcquireGlobalLock(r.Context(), req.Holder)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, lockStatusCode(res), res)
}

// ReleaseGlobalLock releases the category tree lock with the held token.
func (s *Server) ReleaseGlobalLock(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLock(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.svc.Categories.ReleaseGlobalLock(r.Context(), req.Token); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ForceReleaseGlobalLock breaks the category tree lock whoever holds it.
func (s *Server) ForceReleaseGlobalLock(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Categories.ForceReleaseGlobalLock(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// CheckGlobalLock reports who holds the category tree lock.
func (s *Server) CheckGlobalLock(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Categories.CheckGlobalLock(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListLocks lists every held lock.
func (s *Server) ListLocks(w http.ResponseWriter, r *http.Request) {
	locks, err := s.svc.Locks.ListLocks(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locks)
}
