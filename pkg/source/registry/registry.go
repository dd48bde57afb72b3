// Package registry holds the configured catalog adapters and implements the
// cross-catalog fallback search used when a plugin's source is unknown.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source"
	"github.com/jarlock-dev/jarlock/pkg/source/github"
	"github.com/jarlock-dev/jarlock/pkg/source/hangar"
	"github.com/jarlock-dev/jarlock/pkg/source/modrinth"
	"github.com/jarlock-dev/jarlock/pkg/source/spigot"
)

// searchTimeout bounds each adapter during fallback search so one slow
// catalog cannot stall the whole scan.
const searchTimeout = 3 * time.Minute

// Registry is an immutable, priority-ordered set of catalog adapters.
// Construct one explicitly and pass it to whatever needs it; there is no
// package-level instance.
type Registry struct {
	ordered []source.Source
	byName  map[string]source.Source
}

// New builds a registry from sources, which are kept in the given priority
// order for fallback search.
func New(sources ...source.Source) *Registry {
	r := &Registry{byName: make(map[string]source.Source, len(sources))}
	for _, s := range sources {
		r.ordered = append(r.ordered, s)
		r.byName[s.Name()] = s
	}
	return r
}

// Default builds the standard registry: Modrinth first, then Hangar, Spigot,
// and GitHub.
func Default(client *httputil.Client) *Registry {
	return New(
		modrinth.New(client),
		hangar.New(client),
		spigot.New(client),
		github.New(client),
	)
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (source.Source, error) {
	if s, ok := r.byName[name]; ok {
		return s, nil
	}
	names := make([]string, 0, len(r.ordered))
	for _, s := range r.ordered {
		names = append(names, s.Name())
	}
	return nil, errors.New(errors.CodeUnsupportedSource,
		"unsupported source: %q. Supported sources: %s", name, strings.Join(names, ", "))
}

// All returns the adapters in priority order. The returned slice must not be
// modified.
func (r *Registry) All() []source.Source {
	return r.ordered
}

// Match is a successful fallback search outcome. ID may differ from the
// queried name (the Modrinth lowercase retry), so callers persist it rather
// than the original query.
type Match struct {
	Source   string
	ID       string
	Resolved *source.ResolvedVersion
}

type candidate struct {
	src source.Source
	id  string
}

// Search resolves name against every adapter concurrently and returns the
// match from the adapter earliest in the priority order. Concurrency is for
// latency only: a slow Modrinth hit still beats a fast GitHub one. For
// Modrinth the lowercased name is tried as an extra candidate, ranked just
// behind the exact spelling. When version and mcVersion are both set and the
// pinned resolution fails, each adapter retries unpinned so an importable
// plugin with a stale local version still matches.
func (r *Registry) Search(ctx context.Context, name, version, mcVersion string) (*Match, error) {
	var candidates []candidate
	for _, s := range r.ordered {
		if s.ValidateID(name) != nil {
			continue
		}
		candidates = append(candidates, candidate{src: s, id: name})
		if s.Name() == "modrinth" {
			if lower := strings.ToLower(name); lower != name {
				candidates = append(candidates, candidate{src: s, id: lower})
			}
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New(errors.CodeInvalidID, "no source accepts plugin ID %q", name)
	}

	type outcome struct {
		resolved *source.ResolvedVersion
		err      error
	}
	outcomes := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, searchTimeout)
			defer cancel()

			resolved, err := c.src.Resolve(cctx, c.id, version, mcVersion)
			if err != nil && version != "" && mcVersion != "" {
				resolved, err = c.src.Resolve(cctx, c.id, "", mcVersion)
			}
			outcomes[i] = outcome{resolved: resolved, err: err}
		}()
	}
	wg.Wait()

	// Winner selection is by candidate order, never completion order.
	for i, o := range outcomes {
		if o.err == nil {
			return &Match{
				Source:   candidates[i].src.Name(),
				ID:       candidates[i].id,
				Resolved: o.resolved,
			}, nil
		}
	}

	return nil, errors.Wrap(errors.CodeNotFound, outcomes[0].err,
		"plugin %q not found in any source (%d tried)", name, len(candidates))
}
