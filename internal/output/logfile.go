package output

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If MIRRORKIT_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.mirrorkit/logs/mirrorkit.log
func GetLogFilePath() string {
	if customPath := os.Getenv("MIRRORKIT_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "mirrorkit.log"
	}

	return filepath.Join(homeDir, ".mirrorkit", "logs", "mirrorkit.log")
}
