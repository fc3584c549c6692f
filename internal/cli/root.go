// Package cli wires the dashboard commands: serve, import, token and config.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jengzang/citibike-dashboard-go/internal/config"
)

const appName = "citibike-dashboard"

type rootOptions struct {
	configFile string
}

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Citi Bike trip dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		serveCommand(opts),
		importCommand(opts),
		tokenCommand(opts),
		configCommand(opts),
	)
	return rootCmd
}

// load builds the configuration from defaults, the config file, DASHBOARD_*
// environment variables and finally the flags the user set, in that order
func (o *rootOptions) load(flags *pflag.FlagSet, bindings map[string]string) (*config.Config, error) {
	v, err := config.NewViper(o.configFile)
	if err != nil {
		return nil, err
	}
	for key, flag := range bindings {
		f := flags.Lookup(flag)
		if f == nil {
			return nil, fmt.Errorf("unknown flag %q bound to %s", flag, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return config.Load(v)
}
