package httpapi

import (
	"io"
	"net/http"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/primary"
)

// maxImportSize bounds JSON import bodies.
const maxImportSize = 64 << 20

type importPathRequest struct {
	Path     string   `json:"path"`
	Patterns []string `json:"patterns,omitempty"`
}

// ImportJSON imports the request body, a JSON array of manuals.
func (s *Server) ImportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		s.respondError(w, r, apperr.Invalid("failed to read body: %v", err))
		return
	}
	s.writeImport(w, r)(s.svc.Import.ImportJSON(r.Context(), data, primary.ImportOptions{}))
}

// ImportJSONFile imports a JSON file readable by the server.
func (s *Server) ImportJSONFile(w http.ResponseWriter, r *http.Request) {
	var req importPathRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeImport(w, r)(s.svc.Import.ImportJSONFile(r.Context(), req.Path, primary.ImportOptions{}))
}

// ImportDirectory imports a folder tree readable by the server.
func (s *Server) ImportDirectory(w http.ResponseWriter, r *http.Request) {
	var req importPathRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	opts := primary.ImportOptions{Patterns: req.Patterns}
	s.writeImport(w, r)(s.svc.Import.ImportDirectory(r.Context(), req.Path, opts))
}

func (s *Server) writeImport(w http.ResponseWriter, r *http.Request) func(*primary.ImportResult, error) {
	return func(res *primary.ImportResult, err error) {
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Backup snapshots the database and media directory.
func (s *Server) Backup(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Backup.Backup(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Restore replaces the database, and media when media_dir is set, from a
// snapshot after backing up the current state.
func (s *Server) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatabasePath string `json:"database_path"`
		MediaDir     string `json:"media_dir,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.svc.Backup.Restore(r.Context(), req.DatabasePath, req.MediaDir)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListBackups lists kept snapshots, newest first.
func (s *Server) ListBackups(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Backup.ListBackups(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetDataRoot reports the active data root.
func (s *Server) GetDataRoot(w http.ResponseWriter, r *http.Request) {
	root, err := s.svc.System.GetDataRoot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, root)
}

// SetCustomDataPath saves a custom data root used from the next start.
func (s *Server) SetCustomDataPath(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	root, err := s.svc.System.SetCustomDataPath(r.Context(), req.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, root)
}

// ListAudit lists audit entries filtered by ?entity_type=, ?entity_id= and ?limit=.
func (s *Server) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	entries, err := s.svc.Audit.ListEntries(r.Context(), primary.AuditFilters{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Limit:      limit,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
