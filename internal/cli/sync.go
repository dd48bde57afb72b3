package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/lockfile"
	pluginsync "github.com/jarlock-dev/jarlock/pkg/sync"
)

func newSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Make the plugins directory match plugins.lock",
		Long: `Download, verify, and install every plugin pinned in plugins.lock, and
remove JARs the lockfile does not know about. Plugins whose installed file
already matches its pinned hash are skipped without touching the network.
Files that are not JARs are never touched.

With --dry-run, nothing is written: exit code 0 means the directory is
already in sync, 1 means sync would change it. Failures exit 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lf, err := lockfile.Load(lockfilePath())
			if err != nil {
				if os.IsNotExist(err) {
					return &ExitError{Code: 2, Err: fmt.Errorf("no %s found. Run 'jarlock lock' first", lockfileFile)}
				}
				return &ExitError{Code: 2, Err: err}
			}
			warnGitHubLockfile(lf)

			engine := &pluginsync.Engine{Client: newClient()}
			result, err := engine.Sync(ctx, lf, pluginsDir(), pluginsync.Options{
				DryRun: dryRun,
				Logger: loggerFromContext(ctx),
			})
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if dryRun {
				if result.Changed {
					printInfo("%d download(s) and %d removal(s) pending", len(result.Downloaded), len(result.Removed))
					return &ExitError{Code: 1}
				}
				printSuccess("%s is in sync", pluginsDirName)
				return nil
			}

			if !result.Changed {
				printSuccess("already in sync, nothing to do")
				return nil
			}
			for _, name := range result.Downloaded {
				printDetail("installed %s", name)
			}
			for _, file := range result.Removed {
				printDetail("removed %s", file)
			}
			printSuccess("synced %d plugin(s)", len(lf.Plugin))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report pending changes without applying them")
	return cmd
}

func warnGitHubLockfile(lf *lockfile.Lockfile) {
	for _, p := range lf.Plugin {
		if p.Source == "github" {
			printWarning("GitHub releases carry no Minecraft compatibility metadata; verify github plugins against your server version")
			return
		}
	}
}
