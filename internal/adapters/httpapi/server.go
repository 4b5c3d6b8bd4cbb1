// Package httpapi exposes the primary ports as a JSON API over chi.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/example/guidebook/internal/ports/primary"
)

// ActorHeader names the request header carrying the acting user.
const ActorHeader = "X-Guidebook-Actor"

// maxUploadSize bounds multipart image uploads.
const maxUploadSize = 32 << 20

// Services is the set of primary ports the API serves.
type Services struct {
	Categories primary.CategoryService
	Manuals    primary.ManualService
	Guides     primary.GuideService
	Locks      primary.LockService
	Media      primary.MediaService
	Tags       primary.TagService
	Import     primary.ImportService
	Backup     primary.BackupService
	System     primary.SystemService
	Audit      primary.AuditService
}

// Server handles API requests.
type Server struct {
	svc          Services
	logger       *zap.Logger
	defaultActor string
}

// NewServer creates a server. defaultActor is used when a request carries no actor header.
func NewServer(svc Services, defaultActor string, logger *zap.Logger) *Server {
	return &Server{svc: svc, logger: logger, defaultActor: defaultActor}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(actor(s.defaultActor))

	r.Get("/health", s.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.ListCategories)
			r.Post("/", s.CreateCategory)
			r.Get("/tree", s.GetCategoryTree)
			r.Get("/lock", s.CheckGlobalLock)
			r.Post("/lock", s.AcquireGlobalLock)
			r.Delete("/lock", s.ReleaseGlobalLock)
			r.Post("/lock/force", s.ForceReleaseGlobalLock)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetCategory)
				r.Patch("/", s.UpdateCategory)
				r.Delete("/", s.DeleteCategory)
				r.Get("/manuals", s.GetCategoryManuals)
			})
		})

		r.Route("/manuals", func(r chi.Router) {
			r.Get("/", s.ListManuals)
			r.Post("/", s.CreateManual)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetManual)
				r.Patch("/", s.UpdateManual)
				r.Delete("/", s.DeleteManual)
				r.Get("/versions", s.GetVersions)
				r.Post("/versions", s.SaveAsNewVersion)
				r.Get("/history", s.GetHistory)
				r.Put("/favorite", s.ToggleFavorite)

				r.Get("/categories", s.GetManualCategories)
				r.Post("/categories", s.LinkCategory)
				r.Delete("/categories/{categoryID}", s.UnlinkCategory)
				r.Post("/move", s.MoveCategory)

				r.Get("/lock", s.CheckManualLock)
				r.Post("/lock", s.AcquireManualLock)
				r.Delete("/lock", s.ReleaseManualLock)
				r.Post("/lock/force", s.ForceReleaseManualLock)

				r.Get("/images", s.ListImages)
				r.Post("/images", s.UploadImage)

				r.Get("/tags", s.GetManualTags)
				r.Post("/tags", s.TagManual)
				r.Delete("/tags/{tagID}", s.UntagManual)

				r.Get("/guide", s.GetGuide)
				r.Get("/guide/steps", s.GuideSteps)
				r.Post("/guide/steps", s.AddStep)
				r.Patch("/guide/steps/{nodeID}", s.UpdateStep)
				r.Delete("/guide/steps/{nodeID}", s.DeleteStep)
				r.Post("/guide/edges", s.Connect)
				r.Delete("/guide/edges/{edgeID}", s.Disconnect)
				r.Post("/guide/layout", s.AutoLayout)
			})
		})

		r.Route("/images/{id}", func(r chi.Router) {
			r.Get("/", s.GetImage)
			r.Get("/raw", s.ReadImage)
			r.Delete("/", s.DeleteImage)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.ListTags)
			r.Post("/", s.CreateTag)
			r.Delete("/{id}", s.DeleteTag)
		})

		r.Get("/locks", s.ListLocks)

		r.Post("/import/json", s.ImportJSON)
		r.Post("/import/file", s.ImportJSONFile)
		r.Post("/import/directory", s.ImportDirectory)

		r.Post("/db/backup", s.Backup)
		r.Post("/db/restore", s.Restore)
		r.Get("/db/backups", s.ListBackups)

		r.Get("/system/data-root", s.GetDataRoot)
		r.Put("/system/data-root", s.SetCustomDataPath)

		r.Get("/audit", s.ListAudit)
	})

	return r
}

// Health reports that the server is up.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Serve runs the API on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
