package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AppRecord is the install metadata of one bundle
type AppRecord struct {
	Name        string    `json:"-"`                 // Registry key
	Path        string    `json:"path"`              // Managed copy of the bundle
	Icon        string    `json:"icon,omitempty"`    // Icon file, if any
	InstallDate Timestamp `json:"install_date"`      // When the bundle was installed
	Comment     string    `json:"comment,omitempty"` // Desktop entry comment
}

// DesktopFileName returns the file name used for both desktop entries
func (a AppRecord) DesktopFileName() string {
	return a.Name + ".desktop"
}

// Timestamp is a time that also accepts the zone-less ISO layout written by
// older registry files.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes the timestamp as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC 3339 and local ISO timestamps
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid install date %q", s)
}
