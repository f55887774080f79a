package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFileNames are the per-project config files, in lookup order.
var ConfigFileNames = []string{".jobboard.yaml", ".jobboard.yml"}

// ErrConfigNotFound is returned by FindConfig when no config exists.
var ErrConfigNotFound = errors.New("config not found")

// FindConfig looks upwards from startDir for a project config file and
// falls back to the user config file (UserConfigPath).
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range ConfigFileNames {
			if hasFile(dir, name) {
				return filepath.Join(dir, name), nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	if p, err := UserConfigPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrConfigNotFound
}

// UserConfigPath is the per-user config file, e.g.
// ~/.config/jobboard/config.yaml on Linux.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jobboard", "config.yaml"), nil
}

// DefaultSnapshotPath is where the last board is cached when no path is
// configured.
func DefaultSnapshotPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jobboard", "board.json"), nil
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
