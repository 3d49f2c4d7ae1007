package main

import (
	"os"

	"github.com/spf13/cobra"

	"stridesync/internal/interfaces/cli/migrate"
	"stridesync/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stridesync",
		Short: "StrideSync - fitness activity sync engine",
		Long:  `StrideSync keeps athlete training logs in step with their connected activity providers.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
