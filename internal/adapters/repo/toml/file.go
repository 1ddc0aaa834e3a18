package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	fileMode  = 0o600
	dirMode   = 0o700
	configDir = ".onboard"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// resolvePath reads key from cfg, falling back to ~/.onboard/<fileName>.
func resolvePath(cfg *viper.Viper, key, fileName string) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(key)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, configDir, fileName)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// readTOML decodes path into out. A missing file leaves out untouched.
func readTOML(path, what string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s file: %w", what, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s file: %w", what, err)
	}
	return nil
}

// writeTOML replaces path atomically through a temp file in the same directory.
func writeTOML(path, what string, in any) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create %s directory: %w", what, err)
	}

	data, err := toml.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s file: %w", what, err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+what+"-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp %s file: %w", what, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp %s file: %w", what, err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp %s file: %w", what, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp %s file: %w", what, err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s file: %w", what, err)
	}
	cleanup = false

	if err := os.Chmod(path, fileMode); err != nil {
		return fmt.Errorf("chmod %s file: %w", what, err)
	}
	return nil
}
