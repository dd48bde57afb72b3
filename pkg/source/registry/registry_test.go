package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/source"
)

// fakeSource scripts a Source for registry tests.
type fakeSource struct {
	name    string
	delay   time.Duration
	resolve func(id, requested, mcVersion string) (*source.ResolvedVersion, error)
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidID, "%s plugin ID cannot be empty", f.name)
	}
	return nil
}

func (f *fakeSource) Resolve(ctx context.Context, id, requested, mcVersion string) (*source.ResolvedVersion, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resolve(id, requested, mcVersion)
}

func found(version string) func(string, string, string) (*source.ResolvedVersion, error) {
	return func(id, _, _ string) (*source.ResolvedVersion, error) {
		return &source.ResolvedVersion{Version: version, Filename: id + ".jar", URL: "https://x/" + id, Hash: "sha256:aa"}, nil
	}
}

func notFound(id, _, _ string) (*source.ResolvedVersion, error) {
	return nil, errors.New(errors.CodeNotFound, "plugin %q not found", id)
}

func TestGet(t *testing.T) {
	r := New(&fakeSource{name: "modrinth", resolve: notFound})

	if _, err := r.Get("modrinth"); err != nil {
		t.Errorf("Get(modrinth) error: %v", err)
	}

	_, err := r.Get("curseforge")
	if !errors.Is(err, errors.CodeUnsupportedSource) {
		t.Errorf("want CodeUnsupportedSource, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "modrinth") {
		t.Errorf("error should list valid sources: %v", err)
	}
}

func TestSearchPriorityBeatsLatency(t *testing.T) {
	// The highest-priority source is the slowest; it must still win.
	r := New(
		&fakeSource{name: "modrinth", delay: 100 * time.Millisecond, resolve: found("1.0-modrinth")},
		&fakeSource{name: "hangar", resolve: found("1.0-hangar")},
		&fakeSource{name: "spigot", resolve: found("1.0-spigot")},
	)

	m, err := r.Search(context.Background(), "worldedit", "", "1.20")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if m.Source != "modrinth" {
		t.Errorf("Source = %s, want modrinth despite its latency", m.Source)
	}
}

func TestSearchFallsThroughFailures(t *testing.T) {
	r := New(
		&fakeSource{name: "modrinth", resolve: notFound},
		&fakeSource{name: "hangar", resolve: notFound},
		&fakeSource{name: "spigot", resolve: found("5.0")},
	)

	m, err := r.Search(context.Background(), "vault", "", "1.20")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if m.Source != "spigot" || m.Resolved.Version != "5.0" {
		t.Errorf("match = %+v", m)
	}
}

func TestSearchModrinthLowercaseRetry(t *testing.T) {
	r := New(
		&fakeSource{name: "modrinth", resolve: func(id, _, _ string) (*source.ResolvedVersion, error) {
			if id != "worldedit" {
				return nil, errors.New(errors.CodeNotFound, "plugin %q not found", id)
			}
			return &source.ResolvedVersion{Version: "7.3.0"}, nil
		}},
		&fakeSource{name: "hangar", resolve: notFound},
	)

	m, err := r.Search(context.Background(), "WorldEdit", "", "1.20")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if m.ID != "worldedit" {
		t.Errorf("ID = %q, want the lowercased identifier that matched", m.ID)
	}
	if m.Source != "modrinth" {
		t.Errorf("Source = %s", m.Source)
	}
}

func TestSearchRetriesWithoutVersionPin(t *testing.T) {
	r := New(
		&fakeSource{name: "modrinth", resolve: func(id, requested, _ string) (*source.ResolvedVersion, error) {
			if requested != "" {
				return nil, &errors.IncompatibleError{PluginID: id, Version: requested, Minecraft: "1.21"}
			}
			return &source.ResolvedVersion{Version: "2.0"}, nil
		}},
	)

	m, err := r.Search(context.Background(), "plugin", "1.0", "1.21")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if m.Resolved.Version != "2.0" {
		t.Errorf("Version = %s, want the unpinned retry result", m.Resolved.Version)
	}
}

func TestSearchAllFailSurfacesFirstError(t *testing.T) {
	r := New(
		&fakeSource{name: "modrinth", resolve: func(id, _, _ string) (*source.ResolvedVersion, error) {
			return nil, errors.New(errors.CodeNotFound, "modrinth says no")
		}},
		&fakeSource{name: "hangar", resolve: func(id, _, _ string) (*source.ResolvedVersion, error) {
			return nil, errors.New(errors.CodeNotFound, "hangar says no")
		}},
	)

	_, err := r.Search(context.Background(), "ghost", "", "1.20")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "modrinth says no") {
		t.Errorf("error should carry the highest-priority failure: %v", err)
	}
	if !strings.Contains(err.Error(), "2 tried") {
		t.Errorf("error should note how many sources were tried: %v", err)
	}
}

func TestDefaultOrder(t *testing.T) {
	r := Default(nil)
	want := []string{"modrinth", "hangar", "spigot", "github"}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("len = %d, want %d", len(all), len(want))
	}
	for i, s := range all {
		if s.Name() != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, s.Name(), want[i])
		}
	}
}
