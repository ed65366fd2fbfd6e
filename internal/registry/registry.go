// Package registry keeps the persisted mapping of installed app name to its
// install metadata.
package registry

import (
	"encoding/json"
	"sort"
	"strings"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/models"
)

// Registry is the in-memory set of installed apps, keyed by name
type Registry struct {
	apps map[string]models.AppRecord
}

// New creates an empty registry
func New() *Registry {
	return &Registry{apps: make(map[string]models.AppRecord)}
}

// Len returns the number of installed apps
func (r *Registry) Len() int {
	return len(r.apps)
}

// Has reports whether name is installed
func (r *Registry) Has(name string) bool {
	_, ok := r.apps[name]
	return ok
}

// Get returns the record of name
func (r *Registry) Get(name string) (models.AppRecord, bool) {
	rec, ok := r.apps[name]
	if ok {
		rec.Name = name
	}
	return rec, ok
}

// Names returns the installed app names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns every record ordered by name
func (r *Registry) Records() []models.AppRecord {
	records := make([]models.AppRecord, 0, len(r.apps))
	for _, name := range r.Names() {
		rec, _ := r.Get(name)
		records = append(records, rec)
	}
	return records
}

// Upsert inserts or replaces the record stored under name
func (r *Registry) Upsert(name string, rec models.AppRecord) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("app name is required")
	}
	rec.Name = name
	r.apps[name] = rec
	return nil
}

// Rename moves the record of oldName to newName.
func (r *Registry) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperr.Validation("new name cannot be empty")
	}

	rec, ok := r.apps[oldName]
	if !ok {
		return apperr.NotFound("app "+oldName+" is not installed", nil)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := r.apps[newName]; exists {
		return apperr.Validationf("an app named %q is already installed", newName)
	}

	delete(r.apps, oldName)
	rec.Name = newName
	r.apps[newName] = rec
	return nil
}

// Remove deletes the record of name
func (r *Registry) Remove(name string) error {
	if _, ok := r.apps[name]; !ok {
		return apperr.NotFound("app "+name+" is not installed", nil)
	}
	delete(r.apps, name)
	return nil
}

// Clone returns an independent copy of the registry
func (r *Registry) Clone() *Registry {
	c := New()
	for name, rec := range r.apps {
		c.apps[name] = rec
	}
	return c
}

// MarshalJSON writes the registry as an object keyed by app name
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.apps)
}

// UnmarshalJSON reads an object keyed by app name
func (r *Registry) UnmarshalJSON(data []byte) error {
	apps := make(map[string]models.AppRecord)
	if err := json.Unmarshal(data, &apps); err != nil {
		return err
	}
	for name, rec := range apps {
		rec.Name = name
		apps[name] = rec
	}
	r.apps = apps
	return nil
}
