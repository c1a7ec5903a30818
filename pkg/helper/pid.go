package helper

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPIDFile is used when no pid path is configured
const DefaultPIDFile = "/var/run/catalog-apiserver.pid"

// GetPIDPath resolves a configured pid file path.
// Relative paths are resolved against the working directory.
func GetPIDPath(filename string) string {
	if filename == "" {
		return DefaultPIDFile
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return DefaultPIDFile
	}
	return abs
}

// WritePID writes the current process id to path, creating its directory
func WritePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

// RemovePID removes the pid file; a missing file is not an error
func RemovePID(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
