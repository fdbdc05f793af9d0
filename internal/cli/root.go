package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/railmap/internal/pkg/config"
	"github.com/samirrijal/railmap/internal/pkg/logging"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	logLevel   string
}

// config reads --config when given, else the usual config.yaml lookup.
func (o *globalOptions) config() (*config.Config, error) {
	if o.configPath == "" {
		return config.Load("railmap-cli")
	}
	return config.LoadFile("railmap-cli", o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "railmap",
		Short:        "Rail track layouts from OpenStreetMap GeoJSON exports",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetupStderr(opts.logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (optional; config.yaml in . or ./configs otherwise)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	cmd.AddCommand(
		layoutCmd(opts),
		footprintsCmd(opts),
		outlineCmd(opts),
		submitCmd(opts),
	)
	return cmd
}
