package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/fatih/color"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"github.com/dbmint/dbmint/internal/config"
	"github.com/dbmint/dbmint/internal/docker"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity for an environment",
	Long: `Check resolves an environment's settings, reports which execution
channel a provisioning run would use, and verifies that the MySQL server
is reachable where that can be done without side effects.`,
	RunE: runCheck,
}

var checkEnv string

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkEnv, "environment", "e", "", "Environment to check (defaults to config default)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	printConfigHint(os.Stdout, cfg)

	resolved, err := config.ResolveEnvironment(cfg, checkEnv)
	if err != nil {
		return err
	}
	describeResolution(os.Stdout, resolved)

	ctx := cmd.Context()
	locator := docker.NewLocator()

	if resolved.ContainerName != "" {
		running, err := locator.IsRunning(ctx, docker.ContainerRef{Name: resolved.ContainerName})
		if err != nil {
			return err
		}
		if !running {
			color.New(color.FgRed).Printf("✗ Container %q is not running\n", resolved.ContainerName)
			return fmt.Errorf("container %q is not running", resolved.ContainerName)
		}
		color.New(color.FgGreen).Printf("✓ Container %q is running; provisioning will exec into it\n", resolved.ContainerName)
		return nil
	}

	if clientPath, err := exec.LookPath("mysql"); err == nil {
		fmt.Printf("Channel:     direct (%s)\n", clientPath)
		return pingServer(ctx, resolved)
	}

	candidates, err := locator.ListCandidates(ctx)
	if err != nil {
		return err
	}
	switch len(candidates) {
	case 0:
		return docker.ErrNoContainerFound
	case 1:
		fmt.Printf("Channel:     containerized (%s)\n", candidates[0].Name)
	default:
		fmt.Printf("Channel:     containerized (%d candidates; provisioning will ask)\n", len(candidates))
		for i, candidate := range candidates {
			fmt.Printf("  %d. %s\n", i+1, candidate.Name)
		}
	}
	return nil
}

// pingServer verifies reachability through the MySQL driver. Only the
// direct channel is pinged; exec'ing a probe into a container is not free
// of side effects, so containers are only checked for liveness.
func pingServer(ctx context.Context, resolved *config.ResolvedEnvironment) error {
	if resolved.NeedsPassword {
		fmt.Println("No admin password configured; skipping the server ping.")
		return nil
	}

	driverCfg := mysql.NewConfig()
	driverCfg.User = resolved.AdminUser
	driverCfg.Passwd = resolved.AdminPassword
	driverCfg.Net = "tcp"
	driverCfg.Addr = net.JoinHostPort(resolved.Host, "3306")
	driverCfg.Timeout = 5 * time.Second

	db, err := sql.Open("mysql", driverCfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		color.New(color.FgRed).Printf("✗ Server unreachable at %s\n", driverCfg.Addr)
		return err
	}

	color.New(color.FgGreen).Printf("✓ Server reachable at %s as %s\n", driverCfg.Addr, resolved.AdminUser)
	return nil
}
