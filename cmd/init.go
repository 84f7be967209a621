package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	dbmintConfigFilename = "dbmint.toml"
	envExampleFilename   = ".env.example"

	defaultDbmintTomlBody = `default_environment = "local"

[environments.local]
description = "Local development server"
mysql_host = "127.0.0.1"
admin_user = "root"

[environments.dev]
description = "Shared development server"

[environments.prod]
description = "Production server"
`

	envExampleBody = `# Copy the lines you need into .env.<environment> or export them.
# Secrets belong in .env files or the process environment, never in
# dbmint.toml.

# LOCAL_MYSQL_HOST=127.0.0.1
# LOCAL_ADMIN_USER=root
# LOCAL_ADMIN_PASS=
# LOCAL_DOCKER_CONTAINER=

# DEV_MYSQL_HOST=dev-db.internal
# DEV_ADMIN_USER=root
# DEV_ADMIN_PASS=

# PROD_MYSQL_HOST=prod-db.internal
# PROD_ADMIN_USER=root
# PROD_ADMIN_PASS=
`
)

// gitignoreEntries keeps credential artifacts and per-environment secrets
// out of version control.
var gitignoreEntries = []string{"db_credential/", ".env.local", ".env.dev", ".env.prod"}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a dbmint config in the current directory",
	Long: `Init writes a starter dbmint.toml plus a .env.example, and adds the
credential directory and .env files to .gitignore.`,
	RunE: runInit,
}

var initYes bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initYes, "yes", false, "Skip the wizard and accept default values")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initYes {
		result, err := bootstrapProject()
		if err != nil {
			return err
		}
		reportBootstrapResult(os.Stdout, result)
		return nil
	}
	return startInitWizard()
}

type bootstrapResult struct {
	ConfigPath        string
	ConfigCreated     bool
	EnvExamplePath    string
	EnvExampleCreated bool
	GitignoreUpdated  bool
}

func bootstrapProject() (*bootstrapResult, error) {
	if info, err := os.Stat(dbmintConfigFilename); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%s already exists.\n\nEdit the existing file or delete it if you want to re-initialize.", dbmintConfigFilename)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := os.WriteFile(dbmintConfigFilename, []byte(defaultDbmintTomlBody), 0o644); err != nil {
		return nil, err
	}
	result := &bootstrapResult{ConfigPath: dbmintConfigFilename, ConfigCreated: true}

	if _, err := os.Stat(envExampleFilename); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(envExampleFilename, []byte(envExampleBody), 0o644); err != nil {
			return nil, err
		}
		result.EnvExamplePath = envExampleFilename
		result.EnvExampleCreated = true
	} else if err != nil {
		return nil, err
	}

	updated, err := ensureGitignoreEntries(".gitignore", gitignoreEntries)
	if err != nil {
		return nil, err
	}
	result.GitignoreUpdated = updated

	return result, nil
}

// ensureGitignoreEntries appends the entries that are not already present,
// creating the file when missing. Reports whether anything changed.
func ensureGitignoreEntries(path string, entries []string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	existing := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range entries {
		if !existing[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(missing, "\n"))
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func reportBootstrapResult(out io.Writer, result *bootstrapResult) {
	if result == nil {
		return
	}

	if result.ConfigCreated {
		_, _ = fmt.Fprintf(out, "✓ Wrote %s\n", result.ConfigPath)
	}
	if result.EnvExampleCreated {
		_, _ = fmt.Fprintf(out, "✓ Wrote %s\n", result.EnvExamplePath)
	}
	if result.GitignoreUpdated {
		_, _ = fmt.Fprintf(out, "✓ Updated .gitignore\n")
	}
	_, _ = fmt.Fprintf(out, "\nNext: put admin credentials in .env.local (see %s), then run 'dbmint provision'.\n", envExampleFilename)
}

func startInitWizard() error {
	model := newInitWizardModel()
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return err
	}
	if model.err != nil {
		return model.err
	}
	reportBootstrapResult(os.Stdout, model.result)
	return nil
}

type initWizardModel struct {
	spinner  spinner.Model
	creating bool
	done     bool
	err      error
	status   string
	result   *bootstrapResult
}

func newInitWizardModel() *initWizardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &initWizardModel{
		spinner: sp,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

type bootstrapResultMsg struct {
	Result *bootstrapResult
}

type bootstrapErrorMsg struct {
	Err error
}

func createBootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := bootstrapProject()
		if err != nil {
			return bootstrapErrorMsg{Err: err}
		}
		return bootstrapResultMsg{Result: result}
	}
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.creating || m.done {
				return m, tea.Quit
			}
			m.creating = true
			m.status = ""
			return m, tea.Batch(createBootstrapCmd(), m.spinner.Tick)
		}
	case spinner.TickMsg:
		if m.creating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case bootstrapResultMsg:
		m.creating = false
		m.done = true
		m.result = msg.Result
		m.status = fmt.Sprintf("✓ Ready! Wrote %s", msg.Result.ConfigPath)
		return m, tea.Quit
	case bootstrapErrorMsg:
		m.creating = false
		m.err = msg.Err
		m.status = fmt.Sprintf("Error: %v", msg.Err)
		return m, tea.Quit
	}

	return m, nil
}

func (m *initWizardModel) View() string {
	var b strings.Builder

	b.WriteString("\n  dbmint init\n\n")
	b.WriteString("  This will create:\n")
	b.WriteString("    • dbmint.toml\n")
	b.WriteString("    • .env.example\n")
	b.WriteString("    • .gitignore entries for credentials\n\n")

	switch {
	case m.creating:
		b.WriteString(fmt.Sprintf("  %s Writing project files...\n\n", m.spinner.View()))
	case m.done:
		b.WriteString(fmt.Sprintf("  %s\n\n", m.status))
	case m.err != nil:
		b.WriteString(fmt.Sprintf("  %s\n\n", m.status))
	default:
		b.WriteString("  Press Enter to continue or Esc to cancel.\n\n")
	}

	return b.String()
}
