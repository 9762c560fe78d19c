// Package storage persists game records, per-agent statistics and console
// preferences in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

const appName = "shogiplay"

// HomeEnv, when set, replaces the platform data directory.
const HomeEnv = "SHOGIPLAY_HOME"

// GetDataDir returns the application data directory, creating it if needed.
// SHOGIPLAY_HOME wins; otherwise the platform location is used:
// ~/Library/Application Support/shogiplay on macOS, %APPDATA%\shogiplay on
// Windows and $XDG_DATA_HOME/shogiplay (default ~/.local/share) elsewhere.
func GetDataDir() (string, error) {
	dataDir := os.Getenv(HomeEnv)
	if dataDir == "" {
		base, err := platformDataHome()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(base, appName)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

func platformDataHome() (string, error) {
	var env string
	switch runtime.GOOS {
	case "darwin":
	case "windows":
		env = "APPDATA"
	default:
		env = "XDG_DATA_HOME"
	}
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Roaming"), nil
	}
	return filepath.Join(home, ".local", "share"), nil
}

// GetDatabaseDir returns the BadgerDB directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ResolveDatabaseDir(dataDir)
}

// ResolveDatabaseDir returns the database directory under dataDir, or the
// default one when dataDir is empty.
func ResolveDatabaseDir(dataDir string) (string, error) {
	if dataDir == "" {
		return GetDatabaseDir()
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	log.Debug().Str("dir", dbDir).Msg("database-directory")
	return dbDir, nil
}
