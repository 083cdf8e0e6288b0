package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"art-vault/internal/assettypes"
	"art-vault/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	CacheDir        string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	ScanInterval    time.Duration
	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool
	VipsEnabled     bool

	// Scanner pipeline
	PlaceholderThumbnail string
	ThumbnailWidth       int
	HashingEnabled       bool
	HashMaxFileSize      int64
	BlockedExtensions    []string

	// Derived paths
	DatabasePath string
	ThumbnailDir string
}

// fileValues holds values loaded from CONFIG_FILE, keyed by environment
// variable name. Environment variables always win over file values.
type fileValues map[string]string

// loadConfigFile reads a flat YAML document. Keys are matched case-insensitively
// against environment variable names, so both `scan_interval: 10m` and
// `SCAN_INTERVAL: 10m` work.
func loadConfigFile(path string) (fileValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(fileValues, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch typed := v.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, 0, len(typed))
			for _, item := range typed {
				parts = append(parts, fmt.Sprint(item))
			}
			values[key] = strings.Join(parts, ",")
		default:
			values[key] = fmt.Sprint(typed)
		}
	}
	return values, nil
}

// source resolves configuration keys from the environment, then the optional
// config file, then the supplied default.
type source struct {
	file fileValues
}

func (s source) lookup(key string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	if value, ok := s.file[key]; ok && value != "" {
		return value, true
	}
	return "", false
}

func (s source) str(key, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

func (s source) boolean(key string, def bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, v, def)
		return def
	}
	return parsed
}

func (s source) int64(key string, def int64) int64 {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, v, def)
		return def
	}
	return parsed
}

func (s source) duration(key string, def time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, v, def)
		return def
	}
	return parsed
}

func (s source) list(key string, def []string) []string {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnv(key, defaultValue string) string {
	return source{}.str(key, defaultValue)
}

func getEnvBool(key string, defaultValue bool) bool {
	return source{}.boolean(key, defaultValue)
}

// LoadConfig loads and validates configuration from CONFIG_FILE (optional)
// and environment variables, and prepares the database and thumbnail
// directories.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	var src source
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		values, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		src.file = values
		logging.Info("  Loaded config file: %s (%d keys)", path, len(values))
	}

	config, err := buildConfig(src)
	if err != nil {
		return nil, err
	}

	logSection("CONFIGURATION")
	logging.Info("  CACHE_DIR:             %s", config.CacheDir)
	logging.Info("  DATABASE_DIR:          %s", config.DatabaseDir)
	logging.Info("  THUMBNAIL_DIR:         %s", config.ThumbnailDir)
	logging.Info("  PLACEHOLDER_THUMBNAIL: %s", config.PlaceholderThumbnail)
	logging.Info("  THUMBNAIL_WIDTH:       %d", config.ThumbnailWidth)
	logging.Info("  PORT:                  %s", config.Port)
	logging.Info("  METRICS_PORT:          %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:       %v", config.MetricsEnabled)
	logging.Info("  SCAN_INTERVAL:         %v", config.ScanInterval)
	logging.Info("  HASHING_ENABLED:       %v", config.HashingEnabled)
	logging.Info("  HASH_MAX_FILE_SIZE:    %s", FormatBytes(config.HashMaxFileSize))
	logging.Info("  BLOCKED_EXTENSIONS:    %s", strings.Join(config.BlockedExtensions, " "))
	logging.Info("  VIPS_ENABLED:          %v", config.VipsEnabled)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	logSection("DIRECTORY SETUP")
	if err := ensureDirectory(config.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	if err := ensureDirectory(config.ThumbnailDir, "thumbnails"); err != nil {
		return nil, fmt.Errorf("thumbnail directory error: %w", err)
	}
	if err := testWriteAccess(config.ThumbnailDir); err != nil {
		return nil, fmt.Errorf("thumbnail directory is not writable: %w", err)
	}
	logging.Info("  [OK] Thumbnail directory is writable")

	if _, err := os.Stat(config.PlaceholderThumbnail); err != nil {
		logging.Warn("  Placeholder thumbnail not readable (%v); clients will receive 404 for placeholder", err)
	}

	return config, nil
}

func buildConfig(src source) (*Config, error) {
	cacheDir, err := filepath.Abs(src.str("CACHE_DIR", "/cache"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	databaseDir, err := filepath.Abs(src.str("DATABASE_DIR", "/database"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	thumbnailDir, err := filepath.Abs(src.str("THUMBNAIL_DIR", filepath.Join(cacheDir, "thumbnails")))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thumbnail directory path: %w", err)
	}

	return &Config{
		CacheDir:             cacheDir,
		DatabaseDir:          databaseDir,
		Port:                 src.str("PORT", "8080"),
		MetricsPort:          src.str("METRICS_PORT", "9090"),
		ScanInterval:         src.duration("SCAN_INTERVAL", 5*time.Minute),
		LogStaticFiles:       src.boolean("LOG_STATIC_FILES", false),
		LogHealthChecks:      src.boolean("LOG_HEALTH_CHECKS", true),
		MetricsEnabled:       src.boolean("METRICS_ENABLED", true),
		VipsEnabled:          src.boolean("VIPS_ENABLED", true),
		PlaceholderThumbnail: src.str("PLACEHOLDER_THUMBNAIL", "static/placeholder.png"),
		ThumbnailWidth:       int(src.int64("THUMBNAIL_WIDTH", 400)),
		HashingEnabled:       src.boolean("HASHING_ENABLED", false),
		HashMaxFileSize:      src.int64("HASH_MAX_FILE_SIZE", 100*1024*1024),
		BlockedExtensions:    src.list("BLOCKED_EXTENSIONS", assettypes.DefaultBlockedExtensions),
		DatabasePath:         filepath.Join(databaseDir, "art-vault.db"),
		ThumbnailDir:         thumbnailDir,
	}, nil
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
