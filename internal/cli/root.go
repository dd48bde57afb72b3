package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/buildinfo"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source/registry"
)

// Execute runs the jarlock CLI and returns an error if any command fails.
// Commands that define exit-code contracts return an [ExitError].
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "jarlock",
		Short: "Deterministic plugin manager for Minecraft servers",
		Long: `jarlock manages Minecraft server plugins the way a package manager manages
dependencies: plugins.toml declares what you want, plugins.lock pins exact
versions and content hashes, and sync makes the plugins directory match the
lockfile, atomically and reproducibly.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newLockCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newImportCmd())

	return root.ExecuteContext(ctx)
}

// newClient builds the HTTP client shared by every catalog adapter.
func newClient() *httputil.Client {
	return httputil.NewClient("jarlock/" + buildinfo.Short())
}

// newRegistry builds the default source registry.
func newRegistry() *registry.Registry {
	return registry.Default(newClient())
}
