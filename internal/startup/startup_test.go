package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ART_VAULT_TEST_SET", "custom")
	os.Unsetenv("ART_VAULT_TEST_UNSET")

	if got := getEnv("ART_VAULT_TEST_SET", "default"); got != "custom" {
		t.Errorf("getEnv set = %q, want custom", got)
	}
	if got := getEnv("ART_VAULT_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv unset = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"true", "true", false, true},
		{"numeric false", "0", true, false},
		{"invalid uses default", "maybe", true, true},
		{"empty uses default", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ART_VAULT_TEST_BOOL", tt.value)
			if got := getEnvBool("ART_VAULT_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
scan_interval: 10m
HASHING_ENABLED: true
hash_max_file_size: 1048576
blocked_extensions:
  - .exe
  - .bat
port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	values, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	want := map[string]string{
		"SCAN_INTERVAL":      "10m",
		"HASHING_ENABLED":    "true",
		"HASH_MAX_FILE_SIZE": "1048576",
		"BLOCKED_EXTENSIONS": ".exe,.bat",
		"PORT":               "9000",
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("values[%s] = %q, want %q", k, values[k], v)
		}
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CACHE_DIR", dir)
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))
	t.Setenv("SCAN_INTERVAL", "1m")
	t.Setenv("THUMBNAIL_DIR", "")
	t.Setenv("HASHING_ENABLED", "")

	src := source{file: fileValues{
		"SCAN_INTERVAL":      "10m",
		"HASHING_ENABLED":    "true",
		"HASH_MAX_FILE_SIZE": "2048",
		"BLOCKED_EXTENSIONS": ".exe, .bat",
	}}

	cfg, err := buildConfig(src)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.ScanInterval != time.Minute {
		t.Errorf("ScanInterval = %v, env should win over file", cfg.ScanInterval)
	}
	if !cfg.HashingEnabled {
		t.Error("HashingEnabled should come from file")
	}
	if cfg.HashMaxFileSize != 2048 {
		t.Errorf("HashMaxFileSize = %d, want 2048", cfg.HashMaxFileSize)
	}
	if !reflect.DeepEqual(cfg.BlockedExtensions, []string{".exe", ".bat"}) {
		t.Errorf("BlockedExtensions = %v", cfg.BlockedExtensions)
	}
	if cfg.ThumbnailDir != filepath.Join(dir, "thumbnails") {
		t.Errorf("ThumbnailDir = %s", cfg.ThumbnailDir)
	}
	if cfg.ThumbnailWidth != 400 {
		t.Errorf("ThumbnailWidth = %d, want 400", cfg.ThumbnailWidth)
	}
	if cfg.DatabasePath != filepath.Join(dir, "db", "art-vault.db") {
		t.Errorf("DatabasePath = %s", cfg.DatabasePath)
	}
}

func TestSourceInvalidValuesUseDefaults(t *testing.T) {
	src := source{file: fileValues{
		"SCAN_INTERVAL":      "soon",
		"HASH_MAX_FILE_SIZE": "-5",
	}}
	if got := src.duration("SCAN_INTERVAL", 5*time.Minute); got != 5*time.Minute {
		t.Errorf("duration = %v", got)
	}
	if got := src.int64("HASH_MAX_FILE_SIZE", 10); got != 10 {
		t.Errorf("int64 = %d", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1048576, "1.0 MiB"},
		{104857600, "100.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/assets/{id}":    "api/assets",
		"/api/scan/start":     "api/scan",
		"/health":             "health",
		"/":                   "",
		"/api":                "api",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/scan/start", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("POST")
	r.HandleFunc("/health", func(_ http.ResponseWriter, _ *http.Request) {})

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].Method != "POST" || routes[0].Path != "/api/scan/start" {
		t.Errorf("unexpected first route %+v", routes[0])
	}
	if routes[1].Method != "*" {
		t.Errorf("route without methods should report *, got %s", routes[1].Method)
	}
}
