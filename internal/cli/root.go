package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/powerset/pkg/buildinfo"
	"github.com/matzehuels/powerset/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the config file is loaded (--config, or the
// XDG default) and the log level is taken from it unless --verbose is set.
// The logger is then attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "Powerset converts NFAs to DFAs and minimizes them",
		Long: `Powerset turns nondeterministic finite automata (with epsilon transitions)
into equivalent deterministic ones by subset construction, and reduces DFAs
to their minimal form by partition refinement.

Definitions are read from JSON, YAML, or TOML files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg

			level := cfg.Level()
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/powerset/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.minimizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
