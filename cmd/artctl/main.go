package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"art-vault/internal/database"
	"art-vault/internal/filesystem"
	"art-vault/internal/media"
	"art-vault/internal/scanner"
	"art-vault/internal/startup"
)

// defaultTimeout bounds the quick database commands. Scans run until done or
// interrupted.
const defaultTimeout = 30 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := startup.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, config.DatabasePath, &database.Options{BlockedExtensions: config.BlockedExtensions})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", config.DatabaseDir)
		os.Exit(1)
	}

	ok := true
	switch command {
	case "scan":
		extractor := media.NewExtractor(media.ExtractorConfig{
			ThumbnailDir:    config.ThumbnailDir,
			PlaceholderPath: config.PlaceholderThumbnail,
			ThumbnailWidth:  config.ThumbnailWidth,
			HashEnabled:     config.HashingEnabled,
			HashMaxBytes:    config.HashMaxFileSize,
		})
		ok = runScan(ctx, scanner.New(db, extractor, nil, nil, config.ScanInterval), os.Stdout)
	case "status":
		ok = showStatus(ctx, db, os.Stdout)
	case "add-folder":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: add-folder needs a path")
			ok = false
			break
		}
		ok = addFolder(ctx, db, os.Args[2], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(os.Stderr)
		ok = false
	}

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	if !ok {
		os.Exit(1)
	}
}

// sanitizeCommand replaces anything outside [a-zA-Z0-9_-] with '_' so
// arbitrary input is safe to echo.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Art Vault Library Maintenance")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: artctl <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan              - Scan every active folder once")
	fmt.Fprintln(w, "  status            - Show library totals and scan folders")
	fmt.Fprintln(w, "  add-folder <path> - Register a folder for scanning")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Configuration is read from the same environment and CONFIG_FILE as the server.")
}

type oneShotScanner interface {
	ScanOnce(ctx context.Context, mode scanner.ScanMode) (scanner.Result, error)
}

// runScan performs one manual scan and prints its summary. It reports failure
// when the scan could not complete; individual file failures are only counted.
func runScan(ctx context.Context, sc oneShotScanner, w io.Writer) bool {
	result, err := sc.ScanOnce(ctx, scanner.ModeManual)
	printResult(w, result)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(w, "Scan interrupted")
		} else {
			fmt.Fprintf(w, "Scan failed: %v\n", err)
		}
		return false
	}
	return true
}

func printResult(w io.Writer, r scanner.Result) {
	fmt.Fprintf(w, "Folders scanned:  %d (%d failed)\n", r.Folders, r.FoldersFailed)
	fmt.Fprintf(w, "New files found:  %d\n", r.Discovered)
	fmt.Fprintf(w, "Indexed:          %d\n", r.Indexed)
	fmt.Fprintf(w, "Skipped:          %d\n", r.Skipped)
	fmt.Fprintf(w, "Failed:           %d\n", r.Failed)
	fmt.Fprintf(w, "Duration:         %v\n", r.Duration.Round(time.Millisecond))
}

func showStatus(ctx context.Context, db *database.Database, w io.Writer) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats, err := db.GetStats(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}
	folders, err := db.ListScanFolders(ctx, false)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}
	last, err := db.GetLastScan(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}

	fmt.Fprintf(w, "Images:       %d\n", stats.Images)
	fmt.Fprintf(w, "Models:       %d\n", stats.Models)
	fmt.Fprintf(w, "Textures:     %d\n", stats.Textures)
	fmt.Fprintf(w, "Other:        %d\n", stats.Other)
	fmt.Fprintf(w, "In trash:     %d\n", stats.Deleted)
	fmt.Fprintf(w, "Tags:         %d\n", stats.Tags)
	fmt.Fprintf(w, "Collections:  %d\n", stats.Collections)
	if last.IsZero() {
		fmt.Fprintln(w, "Last scan:    never")
	} else {
		fmt.Fprintf(w, "Last scan:    %s\n", last.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "Folders (%d):\n", len(folders))
	for _, f := range folders {
		state := "active"
		if !f.IsActive {
			state = "paused"
		}
		fmt.Fprintf(w, "  [%d] %s (%s, %d assets)\n", f.ID, f.Path, state, f.AssetCount)
	}
	return true
}

func addFolder(ctx context.Context, db *database.Database, path string, w io.Writer) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}
	info, err := filesystem.StatWithRetry(abs, filesystem.DefaultRetryConfig())
	if err != nil || !info.IsDir() {
		fmt.Fprintf(w, "Error: %s is not a directory\n", abs)
		return false
	}

	folder, err := db.CreateScanFolder(ctx, abs)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "Registered folder %d: %s\n", folder.ID, folder.Path)
	return true
}
