package cli

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// pluginMeta is what import learns about one installed JAR.
type pluginMeta struct {
	Name     string
	Version  string
	Filename string
}

// scanPlugins reads metadata from every JAR in dir, sorted by name. A JAR
// without a usable descriptor falls back to its filename as the name. A
// missing directory yields an empty result.
func scanPlugins(dir string) ([]pluginMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var plugins []pluginMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jar") {
			continue
		}
		meta := readPluginDescriptor(filepath.Join(dir, e.Name()))
		meta.Filename = e.Name()
		if meta.Name == "" {
			meta.Name = strings.TrimSuffix(e.Name(), ".jar")
		}
		plugins = append(plugins, meta)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name < plugins[j].Name
	})
	return plugins, nil
}

// readPluginDescriptor pulls name and version from the JAR's plugin.yml, or
// bungee.yml for proxy plugins. Unreadable or descriptorless JARs return an
// empty meta; the caller falls back to the filename.
func readPluginDescriptor(path string) pluginMeta {
	r, err := zip.OpenReader(path)
	if err != nil {
		return pluginMeta{}
	}
	defer r.Close()

	for _, descriptor := range []string{"plugin.yml", "bungee.yml"} {
		f, err := r.Open(descriptor)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			continue
		}

		// Version is untyped: plugin.yml authors write 1.2 as often as
		// "1.2", and YAML parses the former as a float.
		var desc struct {
			Name    string `yaml:"name"`
			Version any    `yaml:"version"`
		}
		if err := yaml.Unmarshal(data, &desc); err != nil || desc.Name == "" {
			continue
		}
		meta := pluginMeta{Name: desc.Name}
		if desc.Version != nil {
			meta.Version = fmt.Sprint(desc.Version)
		}
		return meta
	}
	return pluginMeta{}
}

// detectMinecraftVersion infers the server's Minecraft version from a Paper
// server JAR in dir, first from the filename and then from the JAR's
// manifest.
func detectMinecraftVersion(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jar") {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), "paper") {
			continue
		}
		if v, ok := versionFromPaperFilename(name); ok {
			return v, true
		}
		if v, ok := versionFromJARManifest(filepath.Join(dir, name)); ok {
			return v, true
		}
	}
	return "", false
}

// versionFromPaperFilename parses paper-<version>-<build>.jar and
// paper-<version>.jar names.
func versionFromPaperFilename(name string) (string, bool) {
	base := strings.TrimSuffix(name, ".jar")
	parts := strings.Split(base, "-")
	if len(parts) < 2 {
		return "", false
	}
	version := parts[1]
	if version == "" || version[0] < '0' || version[0] > '9' {
		return "", false
	}
	return version, true
}

// versionFromJARManifest reads META-INF/MANIFEST.MF and takes the version
// from Implementation-Version, then Specification-Version, cut at the first
// build suffix.
func versionFromJARManifest(path string) (string, bool) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", false
	}
	defer r.Close()

	f, err := r.Open("META-INF/MANIFEST.MF")
	if err != nil {
		return "", false
	}
	defer f.Close()

	var impl, spec string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if v, ok := strings.CutPrefix(line, "Implementation-Version:"); ok {
			impl = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "Specification-Version:"); ok {
			spec = strings.TrimSpace(v)
		}
	}

	for _, raw := range []string{impl, spec} {
		version, _, _ := strings.Cut(raw, "-")
		if version != "" && version[0] >= '0' && version[0] <= '9' {
			return version, true
		}
	}
	return "", false
}
