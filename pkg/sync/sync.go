// Package sync reconciles a plugins directory with a lockfile.
//
// The engine stages downloads in a hidden subdirectory, backs up the managed
// JARs it is about to touch, and swaps staged files in only after every
// download has passed integrity verification. Any failure after staging
// restores the backup, so the live directory is never left half-updated.
// Non-JAR files in the directory are never touched.
package sync

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/lockfile"
)

const (
	stagingDirName = ".plugins.staging"
	backupDirName  = ".plugins.backup"
)

// Engine downloads and verifies plugin artifacts.
type Engine struct {
	Client *httputil.Client
}

// Options controls a single sync run.
type Options struct {
	// DryRun reports what would change without writing anything.
	DryRun bool

	// Logger receives per-plugin progress. Defaults to log.Default().
	Logger *log.Logger
}

// Result summarizes a sync run.
type Result struct {
	Changed    bool
	Downloaded []string
	Removed    []string
}

// Sync brings dir in line with lf. On any error after staging began, the
// previous managed JARs are restored from backup before returning.
func (e *Engine) Sync(ctx context.Context, lf *lockfile.Lockfile, dir string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	toDownload, err := planDownloads(lf, dir)
	if err != nil {
		return nil, err
	}
	unmanaged, err := findUnmanaged(lf, dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Changed: len(toDownload) > 0 || len(unmanaged) > 0}

	if opts.DryRun {
		for _, p := range toDownload {
			logger.Info("would download", "plugin", p.Name, "version", p.Version)
			result.Downloaded = append(result.Downloaded, p.Name)
		}
		for _, f := range unmanaged {
			logger.Info("would remove unmanaged file", "file", f)
			result.Removed = append(result.Removed, f)
		}
		return result, nil
	}

	staging := filepath.Join(dir, stagingDirName)
	backup := filepath.Join(dir, backupDirName)

	// A crashed prior run may have left temp dirs behind.
	if err := cleanupTempDirs(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, err
	}
	if err := backupJARs(dir, backup); err != nil {
		return nil, err
	}
	defer cleanupTempDirs(dir)

	if err := e.reconcile(ctx, dir, staging, toDownload, unmanaged, logger, result); err != nil {
		if restoreErr := restoreBackup(dir, backup); restoreErr != nil {
			logger.Warn("failed to restore backup", "err", restoreErr)
		}
		return nil, err
	}
	return result, nil
}

// reconcile performs the destructive phase: downloads into staging, removal
// of unmanaged JARs, and the staged swap. Callers restore from backup if it
// fails.
func (e *Engine) reconcile(ctx context.Context, dir, staging string, toDownload []lockfile.LockedPlugin, unmanaged []string, logger *log.Logger, result *Result) error {
	for _, p := range toDownload {
		logger.Info("downloading", "plugin", p.Name, "version", p.Version)
		if err := e.downloadVerified(ctx, p, filepath.Join(staging, p.File)); err != nil {
			return err
		}
		result.Downloaded = append(result.Downloaded, p.Name)
	}

	for _, f := range unmanaged {
		logger.Info("removing unmanaged file", "file", f)
		if err := os.Remove(filepath.Join(dir, f)); err != nil {
			return err
		}
		result.Removed = append(result.Removed, f)
	}

	return swapStaged(dir, staging)
}

// planDownloads returns the locked plugins whose file is missing from dir or
// fails hash verification. A matching file is left alone, no network call.
func planDownloads(lf *lockfile.Lockfile, dir string) ([]lockfile.LockedPlugin, error) {
	var out []lockfile.LockedPlugin
	for _, p := range lf.Plugin {
		algo, _, err := checksum.Parse(p.Hash)
		if err != nil {
			return nil, errors.Wrap(errors.CodeState, err, "lockfile entry %s", p.Name)
		}

		path := filepath.Join(dir, p.File)
		if _, statErr := os.Stat(path); statErr == nil {
			if got, hashErr := checksum.File(path, algo); hashErr == nil && got == p.Hash {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// findUnmanaged lists JARs in dir that no lockfile entry claims.
func findUnmanaged(lf *lockfile.Lockfile, dir string) ([]string, error) {
	managed := make(map[string]bool, len(lf.Plugin))
	for _, p := range lf.Plugin {
		managed[p.File] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && filepath.Ext(name) == ".jar" && !managed[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// downloadVerified streams the artifact to dest, hashing as bytes arrive.
// A digest mismatch is fatal; the partial file stays in staging and is
// removed with it.
func (e *Engine) downloadVerified(ctx context.Context, p lockfile.LockedPlugin, dest string) error {
	algo, _, err := checksum.Parse(p.Hash)
	if err != nil {
		return errors.Wrap(errors.CodeState, err, "lockfile entry %s", p.Name)
	}

	resp, err := e.Client.Download(ctx, p.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(errors.CodeTransport, "downloading %s: HTTP %d from %s", p.Name, resp.StatusCode, p.URL)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	h, err := checksum.New(algo)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		f.Close()
		return errors.Wrap(errors.CodeTransport, err, "downloading %s", p.Name)
	}
	if err := f.Close(); err != nil {
		return err
	}

	got := checksum.Format(algo, hex.EncodeToString(h.Sum(nil)))
	if got != p.Hash {
		return errors.New(errors.CodeIntegrity, "hash mismatch for %s: expected %s, got %s", p.Name, p.Hash, got)
	}
	return nil
}

// backupJARs copies every managed-extension file in dir into backupDir.
// A missing dir is fine; there is nothing to protect yet.
func backupJARs(dir, backupDir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jar" {
			continue
		}
		if err := copyFile(filepath.Join(dir, e.Name()), filepath.Join(backupDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// restoreBackup puts the backed-up JARs back, removing whatever JARs the
// failed run left in dir first.
func restoreBackup(dir, backupDir string) error {
	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".jar" {
				if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
					return err
				}
			}
		}
	}

	backups, err := os.ReadDir(backupDir)
	if err != nil {
		return err
	}
	for _, e := range backups {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(backupDir, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// swapStaged replaces live files with their staged counterparts. Only
// filenames present in staging are deleted from dir, so user files and the
// manifest/lockfile survive.
func swapStaged(dir, staging string) error {
	staged, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, e := range staged {
		if e.IsDir() {
			continue
		}
		live := filepath.Join(dir, e.Name())
		if _, err := os.Stat(live); err == nil {
			if err := os.Remove(live); err != nil {
				return err
			}
		}
		if err := copyFile(filepath.Join(staging, e.Name()), live); err != nil {
			return err
		}
	}
	return nil
}

func cleanupTempDirs(dir string) error {
	for _, name := range []string{stagingDirName, backupDirName} {
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
