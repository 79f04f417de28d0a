package nats

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const portFile = "port"

// WritePort records the server port in dataDir.
func WritePort(dataDir string, port int) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating nats directory: %w", err)
	}
	path := filepath.Join(dataDir, portFile)
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0644); err != nil {
		return fmt.Errorf("writing port file: %w", err)
	}
	return nil
}

// ReadPort returns the port recorded by a running server.
func ReadPort(dataDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, portFile))
	if err != nil {
		return 0, fmt.Errorf("reading port file: %w", err)
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid port file contents %q", strings.TrimSpace(string(data)))
	}
	return port, nil
}

// RemovePort deletes the port file. A missing file is not an error.
func RemovePort(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, portFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
