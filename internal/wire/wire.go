// Package wire provides dependency injection for the guidebook application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	cliadapter "github.com/example/guidebook/internal/adapters/cli"
	"github.com/example/guidebook/internal/adapters/filesystem"
	"github.com/example/guidebook/internal/adapters/httpapi"
	"github.com/example/guidebook/internal/adapters/sqlite"
	"github.com/example/guidebook/internal/app"
	"github.com/example/guidebook/internal/config"
	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/db"
	"github.com/example/guidebook/internal/logger"
)

// Container holds one fully wired application.
type Container struct {
	Config   *config.Config
	Paths    config.Paths
	Logger   *zap.Logger
	DB       *sql.DB
	Services httpapi.Services
}

// Build opens the data root described by cfg and wires every service.
// loader persists data root changes.
func Build(cfg *config.Config, loader config.Loader) (*Container, error) {
	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	database, err := db.Open(paths.DBPath)
	if err != nil {
		return nil, err
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	manualRepo := sqlite.NewManualRepository(database)
	categoryRepo := sqlite.NewCategoryRepository(database)
	linkRepo := sqlite.NewLinkRepository(database)
	auditRepo := sqlite.NewAuditRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)
	media := filesystem.NewMediaStore(paths.MediaDir)

	// Create services (primary ports implementation)
	locks := app.NewLockService(sqlite.NewLockRepository(database), manualRepo, logWriter, lg)
	categories := app.NewCategoryService(categoryRepo, linkRepo, locks, logWriter, lg)
	manuals := app.NewManualService(app.ManualDeps{
		ManualRepo:   manualRepo,
		HistoryRepo:  sqlite.NewHistoryRepository(database),
		LinkRepo:     linkRepo,
		CategoryRepo: categoryRepo,
		Media:        media,
		Locks:        locks,
		LogWriter:    logWriter,
		Logger:       lg,
	})
	tags := app.NewTagService(sqlite.NewTagRepository(database), manualRepo)

	services := httpapi.Services{
		Categories: categories,
		Manuals:    manuals,
		Guides:     app.NewGuideService(manuals),
		Locks:      locks,
		Media:      app.NewMediaService(sqlite.NewImageRepository(database), manualRepo, media, lg),
		Tags:       tags,
		Import:     app.NewImportService(categories, manuals, tags, cfg.Import.Patterns, lg),
		Backup: app.NewBackupService(
			sqlite.NewSnapshotStore(database),
			filesystem.NewBackupArchive(paths.BackupDir, time.Now),
			app.BackupSettings{DBPath: paths.DBPath, MediaDir: paths.MediaDir, Retain: cfg.Backup.Retain},
			lg,
		),
		System: app.NewSystemService(cfg, loader, lg),
		Audit:  app.NewAuditService(auditRepo),
	}

	lg.Debug("services wired", zap.String("data_root", paths.Root), zap.String("db", paths.DBPath))

	return &Container{
		Config:   cfg,
		Paths:    paths,
		Logger:   lg,
		DB:       database,
		Services: services,
	}, nil
}

// Close releases the database and flushes the logger.
func (c *Container) Close() error {
	c.Logger.Sync()
	return c.DB.Close()
}

// Server returns an HTTP server over the container's services.
func (c *Container) Server() *httpapi.Server {
	return httpapi.NewServer(c.Services, ctxutil.DefaultActor(), c.Logger)
}

var (
	container *Container
	initErr   error
	once      sync.Once
)

// initServices loads the configuration and wires the application.
// This is called once via sync.Once.
func initServices() {
	dir, err := config.DefaultConfigDir()
	if err != nil {
		initErr = err
		return
	}
	loader := config.NewLoader(dir)
	cfg, err := loader.Load()
	if err != nil {
		initErr = err
		return
	}
	container, initErr = Build(cfg, loader)
}

// Init wires the singleton and reports any start-up error.
func Init() error {
	once.Do(initServices)
	return initErr
}

// App returns the singleton container. Start-up failure is fatal here;
// commands that want to report it call Init first.
func App() *Container {
	if err := Init(); err != nil {
		log.Fatalf("failed to initialize guidebook: %v", err)
	}
	return container
}

// Shutdown closes the singleton if it was initialized.
func Shutdown() error {
	if container == nil {
		return nil
	}
	return container.Close()
}

// CategoryAdapter returns a new CategoryAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CategoryAdapter() *cliadapter.CategoryAdapter {
	return CategoryAdapterWithOutput(os.Stdout)
}

// CategoryAdapterWithOutput returns a new CategoryAdapter writing to the given output.
func CategoryAdapterWithOutput(out io.Writer) *cliadapter.CategoryAdapter {
	return cliadapter.NewCategoryAdapter(App().Services.Categories, out)
}

// ManualAdapter returns a new ManualAdapter writing to stdout.
func ManualAdapter() *cliadapter.ManualAdapter {
	return ManualAdapterWithOutput(os.Stdout)
}

// ManualAdapterWithOutput returns a new ManualAdapter writing to the given output.
func ManualAdapterWithOutput(out io.Writer) *cliadapter.ManualAdapter {
	return cliadapter.NewManualAdapter(App().Services.Manuals, out)
}

// LockAdapter returns a new LockAdapter writing to stdout.
func LockAdapter() *cliadapter.LockAdapter {
	return LockAdapterWithOutput(os.Stdout)
}

// LockAdapterWithOutput returns a new LockAdapter writing to the given output.
func LockAdapterWithOutput(out io.Writer) *cliadapter.LockAdapter {
	return cliadapter.NewLockAdapter(App().Services.Locks, out)
}

// GuideAdapter returns a new GuideAdapter reading stdin and writing to stdout.
func GuideAdapter() *cliadapter.GuideAdapter {
	return GuideAdapterWithIO(os.Stdin, os.Stdout)
}

// GuideAdapterWithIO returns a new GuideAdapter on the given streams.
func GuideAdapterWithIO(in io.Reader, out io.Writer) *cliadapter.GuideAdapter {
	return cliadapter.NewGuideAdapter(App().Services.Guides, in, out)
}

// MediaAdapter returns a new MediaAdapter writing to stdout.
func MediaAdapter() *cliadapter.MediaAdapter {
	return cliadapter.NewMediaAdapter(App().Services.Media, os.Stdout)
}

// TagAdapter returns a new TagAdapter writing to stdout.
func TagAdapter() *cliadapter.TagAdapter {
	return cliadapter.NewTagAdapter(App().Services.Tags, os.Stdout)
}

// AdminAdapter returns a new AdminAdapter writing to stdout.
func AdminAdapter(quiet bool) *cliadapter.AdminAdapter {
	return AdminAdapterWithOutput(os.Stdout, quiet)
}

// AdminAdapterWithOutput returns a new AdminAdapter writing to the given output.
func AdminAdapterWithOutput(out io.Writer, quiet bool) *cliadapter.AdminAdapter {
	s := App().Services
	return cliadapter.NewAdminAdapter(s.Import, s.Backup, s.System, s.Audit, out, quiet)
}
