package media

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"art-vault/internal/filesystem"
	"art-vault/internal/logging"
	"art-vault/internal/metrics"
)

// HashFile returns the lowercase hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.HashDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s after hashing: %v", path, err)
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
