package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbmint/dbmint/internal/docker"
)

var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List running MySQL and MariaDB containers",
	RunE:  runContainers,
}

func init() {
	rootCmd.AddCommand(containersCmd)
}

func runContainers(cmd *cobra.Command, args []string) error {
	candidates, err := docker.NewLocator().ListCandidates(cmd.Context())
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Println("No running MySQL or MariaDB containers found.")
		return nil
	}
	for i, candidate := range candidates {
		fmt.Printf("%d. %s\n", i+1, candidate.Name)
	}
	return nil
}
