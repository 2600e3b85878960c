// Package entrypoint wires the catalog core together for the server process.
package entrypoint

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akovalenko/homelib/internal/config"
	"github.com/akovalenko/homelib/internal/covers"
	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/database/books"
	"github.com/akovalenko/homelib/internal/database/downloads"
	"github.com/akovalenko/homelib/internal/database/genres"
	"github.com/akovalenko/homelib/internal/database/stats"
	"github.com/akovalenko/homelib/internal/dedup"
	"github.com/akovalenko/homelib/internal/imagecache"
	"github.com/akovalenko/homelib/internal/scheduler"
	"github.com/akovalenko/homelib/internal/taxonomy"
)

// App holds the wired core components. The serving layer (OPDS/HTTP) is an
// external collaborator that embeds this and brings its own cover renderer.
type App struct {
	DB        *database.Database
	Books     *books.Repository
	Genres    *genres.Repository
	Stats     *stats.Repository
	Downloads *downloads.Repository
	Detector  *dedup.Detector
	Cache     *imagecache.Cache
	Covers    *covers.Service

	statsScheduler *scheduler.StatsRefreshScheduler
}

// NewApp builds the application core. Schema initialization failure is
// fatal; genre import and statistics seeding are best-effort.
func NewApp(cfg *config.Config, renderer covers.Renderer) (*App, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		DB:        db,
		Books:     books.NewRepository(db),
		Genres:    genres.NewRepository(db),
		Stats:     stats.NewRepository(db),
		Downloads: downloads.NewRepository(db),
	}
	app.Detector = dedup.NewDetector(app.Books)

	cache, err := imagecache.New(imagecache.Config{
		InMemory:       cfg.Cache.ImagesInMemory,
		MaxMemoryBytes: int64(cfg.Cache.MaxRAMCacheSizeMB) * 1024 * 1024,
		CoversDir:      cfg.Cache.CoversDir,
		ThumbsDir:      cfg.Cache.ThumbsDir,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	app.Cache = cache
	if renderer != nil {
		app.Covers = covers.NewService(cache, renderer)
	}

	// Non-critical maintenance: log and keep going.
	if cfg.Genres.Path != "" {
		if tax, err := taxonomy.Load(cfg.Genres.Path); err != nil {
			log.Printf("Genre taxonomy not imported: %v", err)
		} else if err := app.Genres.Merge(tax); err != nil {
			log.Printf("Genre import failed: %v", err)
		}
	}
	if err := app.Stats.Refresh(cfg.Stats.NewBooksPeriodDays); err != nil {
		log.Printf("Statistics seed failed: %v", err)
	}

	if cfg.Stats.RefreshEnabled {
		app.statsScheduler = scheduler.NewStatsRefreshScheduler(
			app.Stats, cfg.Stats.RefreshSchedule, cfg.Stats.NewBooksPeriodDays)
		if err := app.statsScheduler.Start(); err != nil {
			log.Printf("Statistics refresh scheduler not started: %v", err)
		}
	}

	return app, nil
}

// Close stops background maintenance and releases the database.
func (a *App) Close() {
	if a.statsScheduler != nil {
		a.statsScheduler.Stop()
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Database close failed: %v", err)
	}
}

// Run wires the core and blocks until the process is told to stop.
func Run(cfg *config.Config, version string) {
	log.Printf("homelib %s starting", version)

	app, err := NewApp(cfg, nil)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down...")
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	done := make(chan struct{})
	go func() {
		app.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("Shutdown timed out after %s", timeout)
	}
}
