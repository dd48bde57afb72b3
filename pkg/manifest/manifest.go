// Package manifest reads and writes plugins.toml, the user-edited file
// declaring which plugins a server wants and for which Minecraft version.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/jarlock-dev/jarlock/pkg/errors"
)

// Manifest declares the desired plugin set. Plugins is keyed by the
// user-chosen plugin name; encoding sorts keys, so saving is deterministic.
type Manifest struct {
	Minecraft MinecraftSpec         `toml:"minecraft"`
	Plugins   map[string]PluginSpec `toml:"plugins"`
}

// MinecraftSpec pins the server's Minecraft version, used for compatibility
// filtering during resolution.
type MinecraftSpec struct {
	Version string `toml:"version"`
}

// PluginSpec is one desired plugin. An empty Version means "latest
// compatible" and is re-resolved on every lock.
type PluginSpec struct {
	Source  string `toml:"source"`
	ID      string `toml:"id"`
	Version string `toml:"version,omitempty"`
}

// New returns an empty manifest for the given Minecraft version.
func New(mcVersion string) *Manifest {
	return &Manifest{
		Minecraft: MinecraftSpec{Version: mcVersion},
		Plugins:   make(map[string]PluginSpec),
	}
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.CodeState, err, "parsing %s", path)
	}
	if m.Plugins == nil {
		m.Plugins = make(map[string]PluginSpec)
	}
	return &m, nil
}

// Exists reports whether a manifest is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes the manifest to path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return errors.Wrap(errors.CodeState, err, "encoding %s", path)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
