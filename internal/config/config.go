package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Library
		Cache
		Genres
		Stats
		Global
	}

	Database struct {
		Path string
	}
	Library struct {
		Path string // root of the book storage, used by the ingestion pipeline
	}
	Cache struct {
		ImagesInMemory    bool // memory vs disk cover storage
		MaxRAMCacheSizeMB int  // cover byte budget, memory mode only
		CoversDir         string
		ThumbsDir         string
	}
	Genres struct {
		Path string // FB2 genres.xml taxonomy source
	}
	Stats struct {
		RefreshEnabled     bool
		RefreshSchedule    string // cron format: "0 * * * *" = hourly
		NewBooksPeriodDays int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("library_path", "./library")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Image cache defaults
	v.SetDefault("cache_images_in_memory", true)
	v.SetDefault("max_ram_image_cache_size_mb", 64)
	v.SetDefault("covers_cache_dir", DefaultCoversCacheDir)
	v.SetDefault("thumbs_cache_dir", DefaultThumbsCacheDir)

	// Genre taxonomy defaults
	v.SetDefault("genres_path", DefaultGenresPath)

	// Statistics refresh defaults
	v.SetDefault("stats_refresh_enabled", true)
	v.SetDefault("stats_refresh_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("new_books_period_days", 7)

	return &Config{
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Library: Library{
			Path: v.GetString("LIBRARY_PATH"),
		},
		Cache: Cache{
			ImagesInMemory:    v.GetBool("CACHE_IMAGES_IN_MEMORY"),
			MaxRAMCacheSizeMB: v.GetInt("MAX_RAM_IMAGE_CACHE_SIZE_MB"),
			CoversDir:         v.GetString("COVERS_CACHE_DIR"),
			ThumbsDir:         v.GetString("THUMBS_CACHE_DIR"),
		},
		Genres: Genres{
			Path: v.GetString("GENRES_PATH"),
		},
		Stats: Stats{
			RefreshEnabled:     v.GetBool("STATS_REFRESH_ENABLED"),
			RefreshSchedule:    v.GetString("STATS_REFRESH_SCHEDULE"),
			NewBooksPeriodDays: v.GetInt("NEW_BOOKS_PERIOD_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
