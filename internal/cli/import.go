package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/lockfile"
	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

func newImportCmd() *cobra.Command {
	var mcVersion string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Adopt an existing plugins directory",
		Long: `Build plugins.toml and plugins.lock from the JARs already installed in the
plugins directory. Each JAR's name and version are read from its bundled
plugin.yml and matched against the catalogs; the installed filename is kept,
while the download URL and content hash come from the matched release.
Plugins no catalog knows are skipped with a warning and stay untouched on
disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if manifest.Exists(manifestPath()) {
				return fmt.Errorf("%s already exists; remove it before importing", manifestFile)
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

			plugins, err := scanPlugins(pluginsDir())
			if err != nil {
				return err
			}

			m := manifest.New(mcVersion)
			lf := lockfile.New()
			reg := newRegistry()
			skipped := 0

			for _, p := range plugins {
				sp := newSpinner(ctx, fmt.Sprintf("matching %s", p.Name))
				sp.Start()
				match, err := reg.Search(ctx, p.Name, p.Version, mcVersion)
				if err != nil {
					sp.Stop()
					printWarning("skipping %s: not found in any source", p.Name)
					skipped++
					continue
				}
				sp.StopWithResolved(fmt.Sprintf("%s (%s)", p.Name, match.Source), match.Resolved.Version)

				m.Plugins[p.Name] = manifest.PluginSpec{Source: match.Source, ID: match.ID}
				lf.Add(lockfile.LockedPlugin{
					Name:    p.Name,
					Source:  match.Source,
					Version: match.Resolved.Version,
					// Keep the installed filename so sync does not churn
					// files that are already in place.
					File: p.Filename,
					URL:  match.Resolved.URL,
					Hash: match.Resolved.Hash,
				})
			}

			if err := m.Save(manifestPath()); err != nil {
				return err
			}
			if err := lf.Save(lockfilePath()); err != nil {
				return err
			}

			printSuccess("imported %d plugin(s) into %s", len(lf.Plugin), manifestFile)
			if skipped > 0 {
				printDetail("%d plugin(s) skipped", skipped)
			}
			printNextStep("Verify the install", "jarlock doctor")
			return nil
		},
	}

	cmd.Flags().StringVar(&mcVersion, "version", "", "Minecraft version (detected from the server JAR when omitted)")
	return cmd
}
