package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbmint/dbmint/internal/docker"
)

// ErrPickCancelled is returned when the user backs out of the container
// selection.
var ErrPickCancelled = errors.New("container selection cancelled")

// pickerModel prompts for a container choice among several candidates. The
// raw input is handed back untouched; the locator interprets it as an
// index, a name, or empty for the first candidate.
type pickerModel struct {
	candidates []docker.ContainerRef
	input      textinput.Model
	aborted    bool
}

func newPicker(candidates []docker.ContainerRef) pickerModel {
	input := textinput.New()
	input.Placeholder = "number or name (empty takes the first)"
	input.Focus()
	return pickerModel{candidates: candidates, input: input}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Multiple database containers found"))
	b.WriteString("\n\n")
	for i, candidate := range m.candidates {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, candidate.Name))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Select a container:"))
	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Enter: select  Esc: cancel"))

	return borderStyle.Render(b.String())
}

// PickContainer prompts for a selection and returns the raw input value.
func PickContainer(candidates []docker.ContainerRef) (string, error) {
	p := tea.NewProgram(newPicker(candidates))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := finalModel.(pickerModel)
	if !ok {
		return "", fmt.Errorf("unexpected picker model type %T", finalModel)
	}
	if m.aborted {
		return "", ErrPickCancelled
	}
	return m.input.Value(), nil
}
