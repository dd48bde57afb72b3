package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

func newRemoveCmd() *cobra.Command {
	var noUpdate bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a plugin from the manifest",
		Long: `Remove a plugin from plugins.toml and update the lockfile. The installed
JAR stays in place until the next sync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			m, err := manifest.Load(manifestPath())
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no %s found. Run 'jarlock init' first", manifestFile)
				}
				return err
			}

			if _, ok := m.Plugins[name]; !ok {
				return fmt.Errorf("plugin %q is not in %s", name, manifestFile)
			}
			delete(m.Plugins, name)

			if err := m.Save(manifestPath()); err != nil {
				return err
			}
			printSuccess("removed %s from %s", name, manifestFile)

			if noUpdate {
				printNextStep("Update the lockfile", "jarlock lock")
				return nil
			}
			if err := runLock(cmd.Context(), false); err != nil {
				return err
			}
			printNextStep("Delete the installed JAR", "jarlock sync")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "edit the manifest without updating the lockfile")
	return cmd
}
