package cli

import (
	"path/filepath"
	"testing"
)

func TestWorkDirDefaultsToCurrent(t *testing.T) {
	t.Setenv("JARLOCK_DIR", "")
	if got := workDir(); got != "." {
		t.Errorf("workDir() = %q, want %q", got, ".")
	}
}

func TestWorkDirFromEnv(t *testing.T) {
	t.Setenv("JARLOCK_DIR", "/srv/minecraft")

	if got := workDir(); got != "/srv/minecraft" {
		t.Errorf("workDir() = %q, want %q", got, "/srv/minecraft")
	}
	if got, want := manifestPath(), filepath.Join("/srv/minecraft", "plugins.toml"); got != want {
		t.Errorf("manifestPath() = %q, want %q", got, want)
	}
	if got, want := lockfilePath(), filepath.Join("/srv/minecraft", "plugins.lock"); got != want {
		t.Errorf("lockfilePath() = %q, want %q", got, want)
	}
	if got, want := pluginsDir(), filepath.Join("/srv/minecraft", "plugins"); got != want {
		t.Errorf("pluginsDir() = %q, want %q", got, want)
	}
}
