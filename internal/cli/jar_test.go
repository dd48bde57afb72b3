package cli

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeJAR(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestScanPluginsReadsDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeJAR(t, filepath.Join(dir, "worldedit.jar"), map[string]string{
		"plugin.yml": "name: WorldEdit\nversion: 7.3.0\nmain: com.sk89q.worldedit.bukkit.WorldEditPlugin\n",
	})
	writeJAR(t, filepath.Join(dir, "proxy-thing.jar"), map[string]string{
		"bungee.yml": "name: ProxyThing\nversion: 2.1\n",
	})
	writeJAR(t, filepath.Join(dir, "bare.jar"), nil)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	plugins, err := scanPlugins(dir)
	if err != nil {
		t.Fatalf("scanPlugins: %v", err)
	}

	want := []pluginMeta{
		{Name: "ProxyThing", Version: "2.1", Filename: "proxy-thing.jar"},
		{Name: "WorldEdit", Version: "7.3.0", Filename: "worldedit.jar"},
		{Name: "bare", Version: "", Filename: "bare.jar"},
	}
	if len(plugins) != len(want) {
		t.Fatalf("got %d plugins, want %d: %+v", len(plugins), len(want), plugins)
	}
	for i, w := range want {
		if plugins[i] != w {
			t.Errorf("plugin %d = %+v, want %+v", i, plugins[i], w)
		}
	}
}

func TestScanPluginsMissingDir(t *testing.T) {
	plugins, err := scanPlugins(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("scanPlugins: %v", err)
	}
	if len(plugins) != 0 {
		t.Fatalf("got %d plugins, want 0", len(plugins))
	}
}

func TestReadPluginDescriptorNumericVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thing.jar")
	writeJAR(t, path, map[string]string{
		"plugin.yml": "name: Thing\nversion: 1.2\n",
	})

	meta := readPluginDescriptor(path)
	if meta.Name != "Thing" {
		t.Errorf("Name = %q, want %q", meta.Name, "Thing")
	}
	if meta.Version != "1.2" {
		t.Errorf("Version = %q, want %q", meta.Version, "1.2")
	}
}

func TestDetectMinecraftVersionFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"paper-1.21.4-123.jar", "1.21.4"},
		{"paper-1.21.4.jar", "1.21.4"},
		{"Paper-1.20.6-496.jar", "1.20.6"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			dir := t.TempDir()
			writeJAR(t, filepath.Join(dir, tt.filename), nil)

			got, ok := detectMinecraftVersion(dir)
			if !ok {
				t.Fatal("detectMinecraftVersion: no version found")
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectMinecraftVersionFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeJAR(t, filepath.Join(dir, "paper.jar"), map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\nImplementation-Version: 1.21.4-101-abcdef\n",
	})

	got, ok := detectMinecraftVersion(dir)
	if !ok {
		t.Fatal("detectMinecraftVersion: no version found")
	}
	if got != "1.21.4" {
		t.Errorf("got %q, want %q", got, "1.21.4")
	}
}

func TestDetectMinecraftVersionSpecificationFallback(t *testing.T) {
	dir := t.TempDir()
	writeJAR(t, filepath.Join(dir, "paperclip.jar"), map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\nSpecification-Version: 1.21\n",
	})

	got, ok := detectMinecraftVersion(dir)
	if !ok {
		t.Fatal("detectMinecraftVersion: no version found")
	}
	if got != "1.21" {
		t.Errorf("got %q, want %q", got, "1.21")
	}
}

func TestDetectMinecraftVersionNoServerJAR(t *testing.T) {
	dir := t.TempDir()
	writeJAR(t, filepath.Join(dir, "spigot-1.21.4.jar"), nil)

	if _, ok := detectMinecraftVersion(dir); ok {
		t.Fatal("expected no version from a non-Paper JAR")
	}
}
