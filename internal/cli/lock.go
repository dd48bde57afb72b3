package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/lockfile"
	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

func newLockCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve the manifest and write plugins.lock",
		Long: `Resolve every plugin in plugins.toml against its source and write
plugins.lock with exact versions, download URLs, and content hashes.
Plugins without a pinned version resolve to the latest release compatible
with the manifest's Minecraft version.

With --dry-run, nothing is written: exit code 0 means the lockfile is up to
date, 1 means locking would change it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLock(cmd.Context(), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report whether the lockfile would change without writing it")
	return cmd
}

func runLock(ctx context.Context, dryRun bool) error {
	m, err := manifest.Load(manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no %s found. Run 'jarlock init' first", manifestFile)
		}
		return err
	}
	warnGitHubManifest(m)

	reg := newRegistry()
	lf := lockfile.New()

	// Map iteration order is random; resolve in name order so progress
	// output and transient failures are reproducible.
	names := make([]string, 0, len(m.Plugins))
	for name := range m.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := m.Plugins[name]
		src, err := reg.Get(spec.Source)
		if err != nil {
			return err
		}

		sp := newSpinner(ctx, fmt.Sprintf("resolving %s", name))
		sp.Start()
		resolved, err := src.Resolve(ctx, spec.ID, spec.Version, m.Minecraft.Version)
		if err != nil {
			sp.StopWithError(fmt.Sprintf("failed to resolve %s", name))
			return err
		}
		sp.StopWithResolved(name, resolved.Version)

		lf.Add(lockfile.LockedPlugin{
			Name:    name,
			Source:  spec.Source,
			Version: resolved.Version,
			File:    resolved.Filename,
			URL:     resolved.URL,
			Hash:    resolved.Hash,
		})
	}

	if dryRun {
		next, err := lf.Encode()
		if err != nil {
			return err
		}
		current, readErr := os.ReadFile(lockfilePath())
		if readErr != nil || !bytes.Equal(current, next) {
			printInfo("%s is out of date; locking would pin %d plugin(s)", lockfileFile, len(lf.Plugin))
			return &ExitError{Code: 1}
		}
		printSuccess("%s is up to date", lockfileFile)
		return nil
	}

	if err := lf.Save(lockfilePath()); err != nil {
		return err
	}
	printSuccess("locked %d plugin(s) to %s", len(lf.Plugin), lockfileFile)
	printNextStep("Install them", "jarlock sync")
	return nil
}

// warnGitHubManifest prints a one-time notice when the manifest contains
// github plugins, which have no Minecraft compatibility metadata.
func warnGitHubManifest(m *manifest.Manifest) {
	for _, spec := range m.Plugins {
		if spec.Source == "github" {
			printWarning("GitHub releases carry no Minecraft compatibility metadata; github plugins are not filtered by Minecraft version")
			return
		}
	}
}
