package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetConfigDir returns ~/.config/drakyn on every platform.
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", "drakyn")
}

// GetDefaultDataDir holds debug.log and runs.db.
// Linux/Mac: ~/.local/share/drakyn
// Windows: %LOCALAPPDATA%\drakyn
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		if dir, err := os.UserCacheDir(); err == nil {
			return filepath.Join(dir, "drakyn")
		}
	}
	return filepath.Join(GetHomeDir(), ".local", "share", "drakyn")
}

// GetConfigFilePath returns the config file path, honouring DRAKYN_CONFIG.
func GetConfigFilePath() string {
	if path := os.Getenv("DRAKYN_CONFIG"); path != "" {
		return ExpandPath(path)
	}
	return filepath.Join(GetConfigDir(), "config.toml")
}

func GetHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return string(filepath.Separator)
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		return GetHomeDir()
	case strings.HasPrefix(path, "~/"):
		path = filepath.Join(GetHomeDir(), path[2:])
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// EnsureDir creates path with user-only permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir or tightens it to 0700. The run
// journal and debug log live there.
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dataDir, 0700)
	}
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}
