package cli

import (
	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [minecraft-version]",
		Short: "Create a plugins.toml manifest",
		Long: `Create an empty plugins.toml in the server directory. The Minecraft version
is taken from the argument, detected from a Paper server JAR, or defaulted,
in that order. Running init in a directory that already has a manifest is a
no-op.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifest.Exists(manifestPath()) {
				printInfo("%s already exists, nothing to do", manifestFile)
				return nil
			}

			var mcVersion string
			if len(args) == 1 {
				mcVersion = args[0]
			}
			if mcVersion == "" {
				if detected, ok := detectMinecraftVersion(workDir()); ok {
					mcVersion = detected
					printInfo("detected Minecraft %s from server JAR", mcVersion)
				} else {
					mcVersion = defaultMCVersion
					printInfo("no server JAR found, assuming Minecraft %s", mcVersion)
				}
			}

			m := manifest.New(mcVersion)
			if err := m.Save(manifestPath()); err != nil {
				return err
			}

			printSuccess("created %s for Minecraft %s", manifestFile, mcVersion)
			printNextStep("Add a plugin", "jarlock add <plugin>")
			return nil
		},
	}
}
