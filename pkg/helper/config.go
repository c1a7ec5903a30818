package helper

import (
	"os"
	"path/filepath"
)

// SystemConfigDir is the last place configuration files are looked up
const SystemConfigDir = "/etc/catalog"

// GetCfgPath returns the path to the configuration file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. Check ./{filename} and ./configs/{filename}
// 3. Otherwise, fallback to /etc/catalog/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}

	if filepath.IsAbs(filename) {
		return filename
	}

	for _, dir := range []string{".", "configs"} {
		if p := lookup(dir, filename); p != "" {
			return p
		}
	}

	return filepath.Join(SystemConfigDir, filename)
}

// lookup returns the absolute path of dir/filename relative to the working directory if it exists
func lookup(dir, filename string) string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return ""
	}
	candidate := filepath.Join(wd, dir, filename)
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return ""
	}
	return abs
}
