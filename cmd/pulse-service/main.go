package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	EnvFile  string
	LogLevel string
}

var globalFlags = &rootFlags{}

var rootCmd = &cobra.Command{
	Use:   "pulse-service",
	Short: "Leadership clarity audits and team pulse feedback sessions",
	Long: `pulse-service scores Leadership Clarity Audits, runs anonymous team
pulse feedback sessions and emails the resulting reports once a session
closes.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewProcessExpiredCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&globalFlags.EnvFile, "env-file", ".env",
		"Path to an optional env file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "",
		"Log level (debug,info,warn,error); overrides LOG_LEVEL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
