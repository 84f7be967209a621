// Package wizard holds the interactive flows: the provisioning interview
// and the container picker. All prompting lives here; the rest of the
// program works from resolved values.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbmint/dbmint/internal/config"
	"github.com/dbmint/dbmint/internal/secret"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

// ErrCancelled is returned when the user backs out before confirming.
var ErrCancelled = errors.New("provisioning cancelled")

// New creates a new wizard model. initialEnv preselects the environment
// when it names a known one; selection still happens in the first step.
func New(cfg *config.Config, initialEnv string) WizardModel {
	if cfg == nil {
		cfg = &config.Config{}
	}

	envIndex := 0
	if env, err := config.ParseEnvironment(initialEnv); err == nil {
		for i, known := range config.Environments {
			if known == env {
				envIndex = i
			}
		}
	}

	return WizardModel{
		state:    StateEnvironment,
		cfg:      cfg,
		envIndex: envIndex,
	}
}

// Init initializes the wizard (Bubble Tea Init)
func (m WizardModel) Init() tea.Cmd {
	return nil
}

// Update handles state transitions (Bubble Tea Update)
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.state = StateAborted
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			return m.handleUp()

		case "down":
			return m.handleDown()

		case "k":
			// Vim keys navigate in choice steps and type everywhere else
			if m.inChoiceState() {
				return m.handleUp()
			}
			return m.handleTextInput(msg)

		case "j":
			if m.inChoiceState() {
				return m.handleDown()
			}
			return m.handleTextInput(msg)

		default:
			return m.handleTextInput(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case environmentResolvedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateError
			return m, nil
		}
		m.resolved = msg.resolved
		m.answers.Environment = msg.resolved.Name
		m.answers.Resolved = msg.resolved
		if msg.resolved.NeedsPassword {
			m.state = StateAdminPassword
			m.input = makeInput("admin password", "", true)
		} else {
			m.answers.AdminPassword = msg.resolved.AdminPassword
			m.state = StateDatabase
			m.input = makeInput("application database name", "", false)
		}
		return m, nil
	}

	return m, nil
}

// View renders the wizard UI (Bubble Tea View)
func (m WizardModel) View() string {
	switch m.state {
	case StateEnvironment:
		return m.renderEnvironment()
	case StateResolving:
		return m.renderResolving()
	case StateAdminPassword:
		return m.renderAdminPassword()
	case StateDatabase:
		return m.renderInput("Database", "Name of the application database to create:")
	case StateUsername:
		return m.renderInput("Username", "Name of the application user to grant access:")
	case StateUserHost:
		return m.renderInput("User Host", "Host pattern the user may connect from:")
	case StatePasswordMode:
		return m.renderPasswordMode()
	case StateManualPassword:
		return m.renderManualPassword()
	case StatePrivileges:
		return m.renderPrivileges()
	case StateSummary:
		return m.renderSummary()
	case StateDone:
		return m.renderDone()
	case StateAborted:
		return ""
	case StateError:
		return m.renderError()
	default:
		return "Unknown state"
	}
}

// State transition handlers

func (m WizardModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateEnvironment:
		m.state = StateResolving
		return m, m.resolveEnvironment()

	case StateAdminPassword:
		// An empty admin password is legal; throwaway servers allow it
		m.answers.AdminPassword = m.input.Value()
		m.state = StateDatabase
		m.input = makeInput("application database name", "", false)
		return m, nil

	case StateDatabase:
		name := strings.TrimSpace(m.input.Value())
		if err := ValidateDatabaseName(name); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.inputErr = ""
		m.answers.Database = name
		m.state = StateUsername
		m.input = makeInput("application username", "", false)
		return m, nil

	case StateUsername:
		name := strings.TrimSpace(m.input.Value())
		if err := ValidateUsername(name); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.inputErr = ""
		m.answers.Username = name
		m.state = StateUserHost
		m.input = makeInput("user host", sqlgen.DefaultUserHost, false)
		return m, nil

	case StateUserHost:
		host := strings.TrimSpace(m.input.Value())
		if host == "" {
			host = sqlgen.DefaultUserHost
		}
		m.answers.UserHost = host
		m.state = StatePasswordMode
		return m, nil

	case StatePasswordMode:
		if m.modeChoice == 0 {
			password, err := secret.Generate()
			if err != nil {
				m.err = err
				m.state = StateError
				return m, nil
			}
			m.answers.Password = password
			m.answers.Generated = true
			m.state = StatePrivileges
			return m, nil
		}
		m.state = StateManualPassword
		m.input = makeInput("application password", "", true)
		return m, nil

	case StateManualPassword:
		if err := ValidatePassword(m.input.Value()); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.inputErr = ""
		m.answers.Password = m.input.Value()
		m.answers.Generated = false
		m.state = StatePrivileges
		return m, nil

	case StatePrivileges:
		m.answers.GrantFull = m.grantChoice == 0
		m.state = StateSummary
		return m, nil

	case StateSummary:
		m.answers.Confirmed = true
		answers := m.answers
		m.result = &answers
		m.state = StateDone
		return m, tea.Quit

	case StateDone, StateError:
		return m, tea.Quit
	}

	return m, nil
}

func (m WizardModel) handleUp() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateEnvironment:
		if m.envIndex > 0 {
			m.envIndex--
		}
	case StatePasswordMode:
		if m.modeChoice > 0 {
			m.modeChoice--
		}
	case StatePrivileges:
		if m.grantChoice > 0 {
			m.grantChoice--
		}
	}
	return m, nil
}

func (m WizardModel) handleDown() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateEnvironment:
		if m.envIndex < len(config.Environments)-1 {
			m.envIndex++
		}
	case StatePasswordMode:
		if m.modeChoice < 1 {
			m.modeChoice++
		}
	case StatePrivileges:
		if m.grantChoice < 1 {
			m.grantChoice++
		}
	}
	return m, nil
}

func (m WizardModel) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateAdminPassword, StateDatabase, StateUsername, StateUserHost, StateManualPassword:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WizardModel) inChoiceState() bool {
	switch m.state {
	case StateEnvironment, StatePasswordMode, StatePrivileges, StateSummary:
		return true
	}
	return false
}

// Input management

func makeInput(placeholder, value string, isPassword bool) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.SetValue(value)
	if isPassword {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '*'
	}
	input.Focus()
	return input
}

// Message types for async operations

type environmentResolvedMsg struct {
	resolved *config.ResolvedEnvironment
	err      error
}

func (m WizardModel) resolveEnvironment() tea.Cmd {
	cfg := m.cfg
	name := string(config.Environments[m.envIndex])
	return func() tea.Msg {
		resolved, err := config.ResolveEnvironment(cfg, name)
		return environmentResolvedMsg{resolved: resolved, err: err}
	}
}

// View renderers

func (m WizardModel) renderEnvironment() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Environment"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Which environment are you provisioning?"))
	b.WriteString("\n\n")

	for i, env := range config.Environments {
		line := string(env)
		if section, ok := m.cfg.Environments[string(env)]; ok && section.Description != "" {
			line = fmt.Sprintf("%s (%s)", env, section.Description)
		}
		if m.cfg.DefaultEnvironment == string(env) {
			line += " [default]"
		}
		b.WriteString(renderOption(i == m.envIndex, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatusBar("↑/↓: navigate  Enter: select  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderResolving() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render(iconSpinner + " Resolving environment settings..."))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderAdminPassword() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Admin Password"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("No admin password is configured for %s.\n\n", m.answers.Environment))
	b.WriteString(labelStyle.Render(fmt.Sprintf("Password for %s@%s:", m.resolved.AdminUser, m.resolved.Host)))
	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Enter: continue (empty allowed)  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderInput(section, label string) string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader(section))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(label))
	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(renderError(m.inputErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatusBar("Enter: continue  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderPasswordMode() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Application Password"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("How should the password for %s be set?", m.answers.Username)))
	b.WriteString("\n\n")
	b.WriteString(renderOption(m.modeChoice == 0, "Generate a secure password (recommended)"))
	b.WriteString("\n")
	b.WriteString(renderOption(m.modeChoice == 1, "Enter a password manually"))
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("↑/↓: navigate  Enter: select  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderManualPassword() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Application Password"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Password for %s:", m.answers.Username)))
	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(renderError(m.inputErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderInfo("Slashes and backslashes are not allowed; they break\nthe client tools that consume the credential file."))
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Enter: continue  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderPrivileges() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Privileges"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Which privileges should %s get on %s.*?", m.answers.Username, m.answers.Database)))
	b.WriteString("\n\n")
	b.WriteString(renderOption(m.grantChoice == 0, "All privileges"))
	b.WriteString("\n")
	b.WriteString(renderOption(m.grantChoice == 1, "Application set ("+sqlgen.GrantSummary(false)+")"))
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("↑/↓: navigate  Enter: select  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderSummary() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSectionHeader("Summary"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %-13s %s\n", "Environment:", m.answers.Environment))
	b.WriteString(fmt.Sprintf("  %-13s %s\n", "Host:", m.resolved.Host))
	b.WriteString(fmt.Sprintf("  %-13s %s\n", "Admin user:", m.resolved.AdminUser))
	if m.resolved.ContainerName != "" {
		b.WriteString(fmt.Sprintf("  %-13s %s\n", "Container:", m.resolved.ContainerName))
	}
	b.WriteString(fmt.Sprintf("  %-13s %s\n", "Database:", m.answers.Database))
	b.WriteString(fmt.Sprintf("  %-13s %s@%s\n", "User:", m.answers.Username, m.answers.UserHost))
	if m.answers.Generated {
		b.WriteString(fmt.Sprintf("  %-13s %s\n", "Password:", "(generated)"))
	} else {
		b.WriteString(fmt.Sprintf("  %-13s %s\n", "Password:", "********"))
	}
	b.WriteString(fmt.Sprintf("  %-13s %s\n", "Privileges:", sqlgen.GrantSummary(m.answers.GrantFull)))

	if m.answers.Generated {
		b.WriteString("\n")
		b.WriteString(renderInfo("The generated password will be written to the\ncredential file after provisioning succeeds."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatusBar("Enter: provision  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderDone() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderSuccess("Inputs confirmed."))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderError() string {
	var b strings.Builder

	b.WriteString(renderHeader("dbmint Provisioning"))
	b.WriteString("\n\n")
	b.WriteString(renderError("An error occurred"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Press Enter to exit"))

	return borderStyle.Render(b.String())
}

// Run starts the provisioning interview and returns the confirmed answers.
func Run(cfg *config.Config, initialEnv string) (*Result, error) {
	p := tea.NewProgram(New(cfg, initialEnv))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected wizard model type %T", finalModel)
	}
	switch m.state {
	case StateDone:
		return m.result, nil
	case StateError:
		return nil, m.err
	default:
		return nil, ErrCancelled
	}
}
