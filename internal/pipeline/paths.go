package pipeline

import (
	"os"
	"path/filepath"
)

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "leaselad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "leaselad")
}

// CachePath returns the full path to the readings database.
func CachePath() string {
	return filepath.Join(CacheDir(), "readings.db")
}
