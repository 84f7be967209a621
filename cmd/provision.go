package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbmint/dbmint/internal/config"
	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/provision"
	"github.com/dbmint/dbmint/internal/secret"
	"github.com/dbmint/dbmint/internal/sqlgen"
	"github.com/dbmint/dbmint/internal/wizard"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a database and an application user",
	Long: `Provision creates a MySQL database, an application user with access to
it, and saves the credentials under db_credential/.

Without flags it runs an interactive wizard. Passing --database along
with --username and a password source runs non-interactively, for use
in scripts:

  dbmint provision -e dev --database shop --username shop_user --generate`,
	RunE: runProvision,
}

var (
	provisionEnv      string
	provisionDatabase string
	provisionUsername string
	provisionUserHost string
	provisionPassword string
	provisionGenerate bool
	provisionFull     bool
	provisionDryRun   bool
	provisionVerbose  bool
)

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVarP(&provisionEnv, "environment", "e", "", "Target environment: local, dev, or prod (defaults to config default)")
	provisionCmd.Flags().StringVar(&provisionDatabase, "database", "", "Database name to create (skips the wizard)")
	provisionCmd.Flags().StringVar(&provisionUsername, "username", "", "Application username to create")
	provisionCmd.Flags().StringVar(&provisionUserHost, "user-host", "", `Host pattern the user may connect from (default "%")`)
	provisionCmd.Flags().StringVar(&provisionPassword, "password", "", "Application password (mutually exclusive with --generate)")
	provisionCmd.Flags().BoolVar(&provisionGenerate, "generate", false, "Generate a secure application password")
	provisionCmd.Flags().BoolVar(&provisionFull, "full-privileges", false, "Grant ALL PRIVILEGES instead of the application set")
	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "Print the SQL without executing it")
	provisionCmd.Flags().BoolVarP(&provisionVerbose, "verbose", "v", false, "Enable verbose logging")
}

// passwordPlaceholder stands in for secrets in dry-run output.
const passwordPlaceholder = "********"

func runProvision(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	// Deferred cleanup in the channels must run on Ctrl-C, so interrupts
	// cancel the context instead of killing the process.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in provision.Inputs
	if flagModeRequested() {
		in, err = inputsFromFlags(cfg)
	} else {
		in, err = inputsFromWizard(cfg)
	}
	if err != nil {
		return err
	}

	if provisionDryRun {
		script := sqlgen.BuildScript(sqlgen.Request{
			Database:  in.Database,
			Username:  in.Username,
			UserHost:  in.UserHost,
			Password:  passwordPlaceholder,
			GrantFull: in.GrantFull,
		})
		fmt.Print(string(script))
		return nil
	}

	orch := provision.NewOrchestrator(provision.Options{
		Locator: docker.NewLocator(),
		Pick:    wizard.PickContainer,
		Verbose: provisionVerbose,
	})
	return orch.Run(ctx, in)
}

// flagModeRequested reports whether enough flags were passed to skip the
// wizard entirely.
func flagModeRequested() bool {
	return provisionDatabase != "" || provisionUsername != "" || provisionPassword != "" || provisionGenerate
}

func inputsFromFlags(cfg *config.Config) (provision.Inputs, error) {
	var in provision.Inputs

	if provisionDatabase == "" {
		return in, fmt.Errorf("--database is required for non-interactive provisioning")
	}
	if provisionUsername == "" {
		return in, fmt.Errorf("--username is required for non-interactive provisioning")
	}
	if provisionPassword != "" && provisionGenerate {
		return in, fmt.Errorf("--password and --generate are mutually exclusive")
	}
	if provisionPassword == "" && !provisionGenerate {
		return in, fmt.Errorf("provide --password or --generate")
	}

	resolved, err := config.ResolveEnvironment(cfg, provisionEnv)
	if err != nil {
		return in, err
	}
	if resolved.NeedsPassword {
		return in, fmt.Errorf("no admin password configured for %s; set %s or run interactively",
			resolved.Name, resolved.Name.Key(config.KeyAdminPass))
	}

	password := provisionPassword
	generated := false
	if provisionGenerate {
		password, err = secret.Generate()
		if err != nil {
			return in, err
		}
		generated = true
	} else if err := secret.Validate(password); err != nil {
		return in, err
	}

	return provision.Inputs{
		Environment:   resolved.Name,
		Host:          resolved.Host,
		AdminUser:     resolved.AdminUser,
		AdminPassword: resolved.AdminPassword,
		ContainerHint: resolved.ContainerName,
		Database:      provisionDatabase,
		Username:      provisionUsername,
		UserHost:      provisionUserHost,
		Password:      password,
		Generated:     generated,
		GrantFull:     provisionFull,
	}, nil
}

func inputsFromWizard(cfg *config.Config) (provision.Inputs, error) {
	var in provision.Inputs

	result, err := wizard.Run(cfg, provisionEnv)
	if err != nil {
		return in, err
	}
	if result == nil || !result.Confirmed {
		return in, wizard.ErrCancelled
	}

	resolved := result.Resolved
	return provision.Inputs{
		Environment:   result.Environment,
		Host:          resolved.Host,
		AdminUser:     resolved.AdminUser,
		AdminPassword: result.AdminPassword,
		ContainerHint: resolved.ContainerName,
		Database:      result.Database,
		Username:      result.Username,
		UserHost:      result.UserHost,
		Password:      result.Password,
		Generated:     result.Generated,
		GrantFull:     result.GrantFull,
	}, nil
}
