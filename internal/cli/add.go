package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/manifest"
)

func newAddCmd() *cobra.Command {
	var noUpdate bool

	cmd := &cobra.Command{
		Use:   "add <plugin>",
		Short: "Add a plugin to the manifest",
		Long: `Add a plugin to plugins.toml and update the lockfile.

The plugin is given as [source:]id[@version], e.g.:

  jarlock add viaversion
  jarlock add modrinth:worldedit
  jarlock add hangar:EssentialsX/Essentials@2.21.0
  jarlock add github:dmulloy2/ProtocolLib

Without a source prefix, every catalog is searched in priority order
(Modrinth, Hangar, SpigotMC, GitHub) and the first match wins. Without a
version, the plugin tracks the latest release compatible with the
manifest's Minecraft version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := manifest.Load(manifestPath())
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no %s found. Run 'jarlock init' first", manifestFile)
				}
				return err
			}

			srcName, id, version := parseAddSpec(args[0])
			reg := newRegistry()

			if srcName == "" {
				sp := newSpinner(ctx, fmt.Sprintf("searching for %s", id))
				sp.Start()
				match, err := reg.Search(ctx, id, version, m.Minecraft.Version)
				if err != nil {
					sp.StopWithError(fmt.Sprintf("no source has %s", id))
					return err
				}
				sp.StopWithResolved(fmt.Sprintf("%s (%s)", id, match.Source), match.Resolved.Version)
				srcName, id = match.Source, match.ID
			} else {
				src, err := reg.Get(srcName)
				if err != nil {
					return err
				}
				if err := src.ValidateID(id); err != nil {
					return err
				}

				sp := newSpinner(ctx, fmt.Sprintf("resolving %s", id))
				sp.Start()
				resolved, err := src.Resolve(ctx, id, version, m.Minecraft.Version)
				if err != nil {
					sp.StopWithError(fmt.Sprintf("failed to resolve %s", id))
					return err
				}
				sp.StopWithResolved(id, resolved.Version)
			}

			name := pluginName(id)
			if _, ok := m.Plugins[name]; ok {
				return fmt.Errorf("plugin %q is already in %s", name, manifestFile)
			}

			m.Plugins[name] = manifest.PluginSpec{Source: srcName, ID: id, Version: version}
			if err := m.Save(manifestPath()); err != nil {
				return err
			}
			printSuccess("added %s (%s) to %s", name, srcName, manifestFile)

			if noUpdate {
				printNextStep("Pin it", "jarlock lock")
				return nil
			}
			if err := runLock(ctx, false); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "edit the manifest without updating the lockfile")
	return cmd
}

// parseAddSpec splits a [source:]id[@version] argument. The pieces are not
// validated here; an unknown source surfaces as a registry lookup error.
func parseAddSpec(raw string) (source, id, version string) {
	id = raw
	if before, after, ok := strings.Cut(id, ":"); ok {
		source, id = before, after
	}
	if before, after, ok := strings.Cut(id, "@"); ok {
		id, version = before, after
	}
	return source, id, version
}

// pluginName derives the manifest key from a plugin ID. For owner/repo IDs
// the repository part alone is the name.
func pluginName(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
