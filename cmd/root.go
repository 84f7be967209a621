package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbmint",
	Short: "dbmint provisions MySQL databases and application users.",
	Long: `dbmint provisions MySQL databases and application users across local,
dev, and prod environments. It runs the provisioning SQL through a local
mysql client when one is installed, or through docker exec into a running
MySQL or MariaDB container, and saves the resulting credentials to a
db_credential file.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
