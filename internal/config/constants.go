package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./homelib.db"

	// DefaultGenresPath is the default path for the FB2 genre taxonomy file
	DefaultGenresPath = "./genres.xml"

	// Default image cache directories, used in disk mode
	DefaultCoversCacheDir = "./cache/covers"
	DefaultThumbsCacheDir = "./cache/thumbs"
)
