package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/logging"
)

// Store persists a registry as a JSON document.
type Store struct {
	path string
}

// NewStore creates a store for the registry file at path
func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// DefaultPath returns the default registry location
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "appimages", "installed_apps.json")
}

// Path returns the registry file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry. It never fails: a missing file is an empty
// registry and an unreadable or corrupt one is logged and treated as empty.
func (s *Store) Load() *Registry {
	reg, err := s.load()
	if err != nil {
		logging.Logger.Error("failed to load registry", "path", s.path, "error", err)
		return New()
	}
	return reg
}

func (s *Store) load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, apperr.Persistence("read registry", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	reg := New()
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, apperr.Persistence("parse registry", err)
	}
	return reg, nil
}

// Save writes the registry, creating the parent directory when needed. The
// file is replaced atomically so a failed write keeps the previous version.
// Failures are logged and returned as persistence errors.
func (s *Store) Save(reg *Registry) error {
	if err := s.save(reg); err != nil {
		logging.Logger.Error("failed to save registry", "path", s.path, "error", err)
		return err
	}
	logging.Logger.Debug("registry saved", "path", s.path, "apps", reg.Len())
	return nil
}

func (s *Store) save(reg *Registry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperr.Persistence("create registry directory", err)
	}

	data, err := json.MarshalIndent(reg, "", "    ")
	if err != nil {
		return apperr.Persistence("encode registry", err)
	}

	tmp, err := os.CreateTemp(dir, ".installed_apps-*.json")
	if err != nil {
		return apperr.Persistence("write registry", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.Persistence("write registry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.Persistence("write registry", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return apperr.Persistence("write registry", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperr.Persistence("replace registry", err)
	}
	return nil
}
