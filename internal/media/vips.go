package media

import (
	"fmt"
	"path/filepath"
	"sync"

	"art-vault/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLogConfig maps the application log level onto libvips' own level and
// returns a handler that forwards libvips messages to our logger.
func vipsLogConfig(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	forward := func(warnings, debug bool) func(string, vips.LogLevel, string) {
		return func(domain string, lvl vips.LogLevel, msg string) {
			switch lvl {
			case vips.LogLevelError, vips.LogLevelCritical:
				logging.Error("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				if warnings {
					logging.Warn("[%s] %s", domain, msg)
				}
			default:
				if debug {
					logging.Debug("[%s] %s", domain, msg)
				}
			}
		}
	}

	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo, forward(true, true)
	case logging.LevelWarn:
		return vips.LogLevelError, forward(false, false)
	case logging.LevelError:
		return vips.LogLevelCritical, forward(false, false)
	default:
		return vips.LogLevelWarning, forward(true, false)
	}
}

// InitVips initializes the libvips library. It should be called once at
// startup; thumbnails fall back to pure Go when it is not.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup.
	vipsLevel, handler := vipsLogConfig(logging.GetLevel())
	vips.LoggingSettings(handler, vipsLevel)

	// The scanner decodes one file at a time; keep libvips equally modest.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// thumbnailWithVips shrinks the file at path to width x height during decode
// and returns it encoded as WebP.
func thumbnailWithVips(path string, width, height int) ([]byte, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	logging.Debug("Vips loaded %s: %dx%d, shrinking to %dx%d",
		filepath.Base(path), ref.Width(), ref.Height(), width, height)

	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	params := vips.NewWebpExportParams()
	params.Quality = 80
	params.StripMetadata = true

	data, _, err := ref.ExportWebp(params)
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return data, nil
}
