// Package doctor audits manifest, lockfile, and plugins directory health
// without modifying anything.
//
// A run produces a Report whose exit code is the contract scripts depend on:
// 0 for healthy, 1 for drift (warnings such as unmanaged JARs), 2 for
// failure (missing or corrupted plugin files, broken config files).
package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/lockfile"
	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

// SchemaVersion identifies the JSON report format. Increment only on
// breaking changes.
const SchemaVersion = 1

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Status string

const (
	StatusHealthy Status = "healthy"
	StatusDrift   Status = "drift"
	StatusFailure Status = "failure"
)

// Check is one audited item.
type Check struct {
	Name     string   `json:"name"`
	Severity Severity `json:"status"`
	Message  string   `json:"message"`
}

// Summary counts checks by severity.
type Summary struct {
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Report is the full audit outcome, serializable as the doctor --json
// output.
type Report struct {
	SchemaVersion int     `json:"schema_version"`
	Status        Status  `json:"status"`
	Summary       Summary `json:"summary"`
	Checks        []Check `json:"checks"`
}

// ExitCode maps the report status to the process exit code contract.
func (r *Report) ExitCode() int {
	switch r.Status {
	case StatusFailure:
		return 2
	case StatusDrift:
		return 1
	default:
		return 0
	}
}

// Engine points the audit at one server layout.
type Engine struct {
	ManifestPath string
	LockfilePath string
	PluginsDir   string
}

// Run performs every check and assembles the report. It never writes.
func (e *Engine) Run() *Report {
	r := &Report{SchemaVersion: SchemaVersion}

	r.add(e.checkManifest())

	lf, lockCheck := e.checkLockfile()
	r.add(lockCheck)
	if lf != nil {
		for _, p := range lf.Plugin {
			r.add(e.checkPlugin(p))
		}
		r.addAll(e.checkUnmanaged(lf))
	}

	switch {
	case r.Summary.Errors > 0:
		r.Status = StatusFailure
	case r.Summary.Warnings > 0:
		r.Status = StatusDrift
	default:
		r.Status = StatusHealthy
	}
	return r
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
	switch c.Severity {
	case SeverityError:
		r.Summary.Errors++
	case SeverityWarning:
		r.Summary.Warnings++
	default:
		r.Summary.OK++
	}
}

func (r *Report) addAll(checks []Check) {
	for _, c := range checks {
		r.add(c)
	}
}

func (e *Engine) checkManifest() Check {
	name := filepath.Base(e.ManifestPath)
	if _, err := os.Stat(e.ManifestPath); err != nil {
		return Check{Name: name, Severity: SeverityError, Message: "file not found"}
	}
	if _, err := manifest.Load(e.ManifestPath); err != nil {
		return Check{Name: name, Severity: SeverityError, Message: err.Error()}
	}
	return Check{Name: name, Severity: SeverityOK, Message: "file exists and parses correctly"}
}

func (e *Engine) checkLockfile() (*lockfile.Lockfile, Check) {
	name := filepath.Base(e.LockfilePath)
	if _, err := os.Stat(e.LockfilePath); err != nil {
		return nil, Check{Name: name, Severity: SeverityError, Message: "file not found"}
	}
	lf, err := lockfile.Load(e.LockfilePath)
	if err != nil {
		return nil, Check{Name: name, Severity: SeverityError, Message: err.Error()}
	}
	return lf, Check{
		Name:     name,
		Severity: SeverityOK,
		Message:  fmt.Sprintf("file exists and parses correctly (%d plugin(s))", len(lf.Plugin)),
	}
}

// checkPlugin verifies one locked plugin. The checks short-circuit: a
// missing file is reported without also reporting its hash as wrong.
func (e *Engine) checkPlugin(p lockfile.LockedPlugin) Check {
	name := "plugin:" + p.Name
	path := filepath.Join(e.PluginsDir, p.File)

	if _, err := os.Stat(path); err != nil {
		return Check{Name: name, Severity: SeverityError, Message: fmt.Sprintf("file %q not found", p.File)}
	}

	algo, _, err := checksum.Parse(p.Hash)
	if err != nil {
		return Check{Name: name, Severity: SeverityError, Message: fmt.Sprintf("failed to parse hash: %v", err)}
	}
	got, err := checksum.File(path, algo)
	if err != nil {
		return Check{Name: name, Severity: SeverityError, Message: fmt.Sprintf("failed to compute hash: %v", err)}
	}
	if got != p.Hash {
		return Check{Name: name, Severity: SeverityError, Message: fmt.Sprintf("hash mismatch for %q", p.File)}
	}

	return Check{Name: name, Severity: SeverityOK, Message: fmt.Sprintf("all checks passed for %q", p.File)}
}

// checkUnmanaged flags JARs nothing in the lockfile claims. os.ReadDir
// returns sorted entries, so the report order is stable.
func (e *Engine) checkUnmanaged(lf *lockfile.Lockfile) []Check {
	managed := make(map[string]bool, len(lf.Plugin))
	for _, p := range lf.Plugin {
		managed[p.File] = true
	}

	entries, err := os.ReadDir(e.PluginsDir)
	if err != nil {
		return nil
	}

	var out []Check
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".jar" || managed[name] {
			continue
		}
		out = append(out, Check{
			Name:     "unmanaged:" + name,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("unmanaged .jar file: %q", name),
		})
	}
	return out
}
