// Command friday-api serves the F.R.I.D.A.Y assistant over HTTP and offers a
// one-shot "ask" mode for the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/friday-agent/internal/config"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

var (
	version = "0.1.0" // set at build time

	configFile string
	v          = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "friday-api",
	Short:         "F.R.I.D.A.Y conversational assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "friday-api v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (json|logfmt|text)")
	flags.String("backend", "", "Model backend (ollama|openai|vertex|mock)")
	flags.String("model", "", "Model name")

	for key, name := range map[string]string{
		"log.level":   "log-level",
		"log.format":  "log-format",
		"llm.backend": "backend",
		"llm.model":   "model",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(serveCmd, askCmd, versionCmd)
}

// loadConfig reads the configuration and sets up logging for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := observability.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}
