// Package prefs is the persisted preference store: a consent flag and the
// user's last-chosen translation set. Values expire after a year and the
// translation key is never read or written before consent is granted.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const (
	consentKey = "consent"
	biblesKey  = "selected-bibles"

	expiry = 365 * 24 * time.Hour
)

// Store persists preferences under a base directory, one file per key.
type Store struct {
	d   *diskv.Diskv
	now func() time.Time
}

// DefaultPath resolves the per-user preference directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "biblescope"), nil
}

// Open creates a store rooted at basePath, creating the directory lazily on
// first write.
func Open(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 64 * 1024,
		}),
		now: time.Now,
	}
}

// record wraps every stored value with its expiry instant.
type record struct {
	Value   json.RawMessage `json:"value"`
	Expires time.Time       `json:"expires"`
}

func (s *Store) read(key string, out any) bool {
	data, err := s.d.Read(key)
	if err != nil {
		return false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return false
	}
	if s.now().After(rec.Expires) {
		return false
	}
	return json.Unmarshal(rec.Value, out) == nil
}

func (s *Store) write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record{Value: raw, Expires: s.now().Add(expiry)})
	if err != nil {
		return err
	}
	return s.d.Write(key, data)
}

// Consented reports whether the user has granted persistence consent.
func (s *Store) Consented() bool {
	var v bool
	return s.read(consentKey, &v) && v
}

// SetConsent records the consent decision. Revoking consent also clears the
// stored translation set.
func (s *Store) SetConsent(consented bool) error {
	if err := s.write(consentKey, consented); err != nil {
		return err
	}
	if !consented {
		return s.eraseIfPresent(biblesKey)
	}
	return nil
}

// Translations returns the stored translation set, or nil without consent,
// without a stored value, or after expiry.
func (s *Store) Translations() []string {
	if !s.Consented() {
		return nil
	}
	var ids []string
	if !s.read(biblesKey, &ids) || len(ids) == 0 {
		return nil
	}
	return ids
}

// SaveTranslations writes the translation set through to disk. It is a no-op
// without consent; an empty set removes the key.
func (s *Store) SaveTranslations(ids []string) error {
	if !s.Consented() {
		return nil
	}
	if len(ids) == 0 {
		return s.eraseIfPresent(biblesKey)
	}
	return s.write(biblesKey, ids)
}

// Clear removes everything the store holds.
func (s *Store) Clear() error {
	if err := s.eraseIfPresent(consentKey); err != nil {
		return err
	}
	return s.eraseIfPresent(biblesKey)
}

func (s *Store) eraseIfPresent(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}
