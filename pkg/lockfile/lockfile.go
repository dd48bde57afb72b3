// Package lockfile reads and writes plugins.lock, the machine-generated pin
// of exact plugin versions, download URLs, and content hashes.
//
// The lockfile is rewritten wholesale on every lock and its entries are
// sorted by name before each write, so locking against unchanged upstream
// state reproduces the file byte for byte.
package lockfile

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/jarlock-dev/jarlock/pkg/errors"
)

// Lockfile is an ordered list of pinned plugins.
type Lockfile struct {
	Plugin []LockedPlugin `toml:"plugin"`
}

// LockedPlugin pins one plugin to an exact artifact.
type LockedPlugin struct {
	Name    string `toml:"name"`
	Source  string `toml:"source"`
	Version string `toml:"version"`
	File    string `toml:"file"`
	URL     string `toml:"url"`
	Hash    string `toml:"hash"`
}

// New returns an empty lockfile.
func New() *Lockfile {
	return &Lockfile{}
}

// Load reads the lockfile at path.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lf Lockfile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, errors.Wrap(errors.CodeState, err, "parsing %s", path)
	}
	return &lf, nil
}

// Add appends a plugin. Call SortByName (or Save, which sorts) before
// comparing or writing.
func (lf *Lockfile) Add(p LockedPlugin) {
	lf.Plugin = append(lf.Plugin, p)
}

// SortByName orders entries by plugin name.
func (lf *Lockfile) SortByName() {
	sort.Slice(lf.Plugin, func(i, j int) bool {
		return lf.Plugin[i].Name < lf.Plugin[j].Name
	})
}

// Encode renders the lockfile in its on-disk form, sorting first. Dry-run
// comparisons use this to detect whether a write would change anything.
func (lf *Lockfile) Encode() ([]byte, error) {
	lf.SortByName()
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lf); err != nil {
		return nil, errors.Wrap(errors.CodeState, err, "encoding lockfile")
	}
	return buf.Bytes(), nil
}

// Save writes the lockfile to path, creating parent directories as needed.
func (lf *Lockfile) Save(path string) error {
	data, err := lf.Encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
