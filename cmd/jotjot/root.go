package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"jotjot/internal/config"
)

var (
	configPath string
	verbose    bool

	cfg config.Config
	log = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jotjot",
	Short: "A rich text note editor with read-only share links",
	Long: `JotJot serves a note editor and turns notes into short share links.
The same commands can share, fetch and preview notes from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			fatal("Error loading configuration", err)
		}

		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetOutput(os.Stderr)
		level, _ := logrus.ParseLevel(cfg.LogLevel)
		if verbose {
			level = logrus.DebugLevel
		}
		log.SetLevel(level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs", "Directory holding config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
