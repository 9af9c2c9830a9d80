package prefs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const prefsFile = "prefs.toml"

// Prefs is the only state persisted across runs.
type Prefs struct {
	DarkMode bool   `toml:"dark_mode"`
	Layout   string `toml:"layout,omitempty"`
}

// Store reads and writes Prefs under Dir.
type Store struct {
	Dir string
}

// DefaultStore uses the per-user config directory.
func DefaultStore() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(dir, "budregistry")}, nil
}

func (s Store) path() string {
	return filepath.Join(s.Dir, prefsFile)
}

// Load returns the saved prefs, or def when nothing has been saved.
func (s Store) Load(def Prefs) (Prefs, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return def, err
	}
	p := def
	if _, err := toml.Decode(string(data), &p); err != nil {
		return def, err
	}
	return p, nil
}

// Save writes prefs atomically.
func (s Store) Save(p Prefs) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}
