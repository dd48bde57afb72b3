package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarlock-dev/jarlock/pkg/doctor"
)

func newDoctorCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Audit the installation against the lockfile",
		Long: `Check that the manifest and lockfile parse, that every locked plugin is
installed with a matching hash, and that no unmanaged JARs sit in the
plugins directory. Nothing is modified.

Exit code 0 means healthy, 1 means drift (warnings only), 2 means failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := &doctor.Engine{
				ManifestPath: manifestPath(),
				LockfilePath: lockfilePath(),
				PluginsDir:   pluginsDir(),
			}
			report := engine.Run()

			if jsonOut {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				for _, c := range report.Checks {
					switch c.Severity {
					case doctor.SeverityOK:
						printSuccess("%s: %s", c.Name, c.Message)
					case doctor.SeverityWarning:
						printWarning("%s: %s", c.Name, c.Message)
					default:
						printError("%s: %s", c.Name, c.Message)
					}
				}
				printInfo("status: %s (%d ok, %d warning(s), %d error(s))",
					report.Status, report.Summary.OK, report.Summary.Warnings, report.Summary.Errors)
			}

			if code := report.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	return cmd
}
