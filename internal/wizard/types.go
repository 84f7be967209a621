package wizard

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/dbmint/dbmint/internal/config"
)

// WizardState represents the current step in the interview flow
type WizardState int

const (
	StateEnvironment WizardState = iota
	StateResolving
	StateAdminPassword
	StateDatabase
	StateUsername
	StateUserHost
	StatePasswordMode
	StateManualPassword
	StatePrivileges
	StateSummary
	StateDone
	StateAborted
	StateError
)

// WizardModel holds the state for the Bubble Tea interview
type WizardModel struct {
	state WizardState

	cfg *config.Config

	// Environment selection
	envIndex int
	resolved *config.ResolvedEnvironment

	// Active input for the current text step. Each step owns the field
	// exclusively; transitions swap it out.
	input textinput.Model

	// Password mode selection: 0=generate, 1=manual
	modeChoice int

	// Privilege scope selection: 0=full, 1=application set
	grantChoice int

	// Answers collected so far
	answers Result

	// Validation message for the current input, cleared on success
	inputErr string

	// Final output
	result *Result
	err    error

	// Terminal dimensions
	width  int
	height int
}

// Result contains the confirmed interview answers
type Result struct {
	Environment config.Environment
	Resolved    *config.ResolvedEnvironment

	// AdminPassword is the collected secret when the resolver signalled
	// one was missing; otherwise it mirrors the resolved value.
	AdminPassword string

	Database string
	Username string
	UserHost string
	Password string

	// Generated is true when the password came from the generator rather
	// than manual entry.
	Generated bool

	GrantFull bool

	// Confirmed is true only when the summary step was accepted.
	Confirmed bool
}
