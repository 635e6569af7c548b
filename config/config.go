package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every user-tunable setting of the shell. It is persisted
// as config.json and may be edited from inside the session.
type Config struct {
	DefaultTicker  string `json:"default_ticker"`
	DisplayMaxRows int    `json:"display_max_rows"`
	ExportFolder   string `json:"export_folder"`
	DataCacheDir   string `json:"data_cache_dir"`

	HVRollingWindows []int `json:"hv_rolling_windows"`

	IVSurfaceRange float64 `json:"iv_surface_range"`
	IVSurfaceRes   int     `json:"iv_surface_res"`
	IVSurfaceCmap  string  `json:"iv_surface_cmap"`

	NewsMaxArticles int `json:"news_max_articles"`

	CacheEnabled  bool `json:"cache_enabled"`
	CacheTTLHours int  `json:"cache_ttl_hours"`
}

// DefaultConfig returns the default settings rooted in the working
// directory, then applies .env and environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the default settings with paths rooted at
// dir.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		DefaultTicker:  "",
		DisplayMaxRows: 50,
		ExportFolder:   filepath.Join(dir, "exports"),
		DataCacheDir:   filepath.Join(dir, "cache"),

		HVRollingWindows: []int{5, 10, 20, 50},

		IVSurfaceRange: 0.2,
		IVSurfaceRes:   25,
		IVSurfaceCmap:  "jet",

		NewsMaxArticles: 10,

		CacheEnabled:  true,
		CacheTTLHours: 24,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("VOLSUITE_DEFAULT_TICKER"); val != "" {
		c.DefaultTicker = val
	}
	if val := os.Getenv("VOLSUITE_EXPORT_FOLDER"); val != "" {
		c.ExportFolder = val
	}
	if val := os.Getenv("VOLSUITE_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("VOLSUITE_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("VOLSUITE_DISPLAY_MAX_ROWS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.DisplayMaxRows = v
		}
	}
}

// Validate checks invariants the rest of the program depends on.
func (c *Config) Validate() error {
	if c.DisplayMaxRows < 0 {
		return fmt.Errorf("display_max_rows must be >= 0, got %d", c.DisplayMaxRows)
	}
	if len(c.HVRollingWindows) == 0 {
		return fmt.Errorf("hv_rolling_windows must not be empty")
	}
	for _, w := range c.HVRollingWindows {
		if w < 1 {
			return fmt.Errorf("hv rolling window must be >= 1, got %d", w)
		}
	}
	if c.IVSurfaceRange <= 0 || c.IVSurfaceRange > 1 {
		return fmt.Errorf("iv_surface_range must be in (0, 1], got %v", c.IVSurfaceRange)
	}
	if c.IVSurfaceRes < 1 {
		return fmt.Errorf("iv_surface_res must be >= 1, got %d", c.IVSurfaceRes)
	}
	if c.NewsMaxArticles < 0 {
		return fmt.Errorf("news_max_articles must be >= 0, got %d", c.NewsMaxArticles)
	}
	if c.CacheTTLHours < 0 {
		return fmt.Errorf("cache_ttl_hours must be >= 0, got %d", c.CacheTTLHours)
	}
	return nil
}

// EnsureDirectories creates the export and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.ExportFolder, c.DataCacheDir} {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
