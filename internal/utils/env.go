package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kelsos/wallet-tracker/internal/logger"
)

// LoadEnvironment loads .env files without overriding variables that are
// already set. Explicit files are loaded first, then the working directory and
// the directory of the executable. It returns the files that were loaded.
func LoadEnvironment(explicit ...string) []string {
	candidates := append([]string{}, explicit...)
	candidates = append(candidates, ".env")

	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), ".env"))
	} else {
		logger.Debug("Could not determine executable path: %v", err)
	}

	seen := make(map[string]bool)
	loaded := make([]string, 0, len(candidates))
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err != nil {
			logger.Debug("No env file loaded from %s: %v", abs, err)
			continue
		}
		logger.Info("Loaded environment from %s", abs)
		loaded = append(loaded, abs)
	}

	return loaded
}
