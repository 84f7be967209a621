package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbmint/dbmint/internal/docker"
)

func testCandidates() []docker.ContainerRef {
	return []docker.ContainerRef{{Name: "alpha-mysql"}, {Name: "beta-mysql"}}
}

func TestPickerViewListsCandidates(t *testing.T) {
	t.Parallel()

	view := newPicker(testCandidates()).View()
	for _, want := range []string{"1. alpha-mysql", "2. beta-mysql", "Select a container"} {
		if !strings.Contains(view, want) {
			t.Fatalf("Expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestPickerCapturesTypedValue(t *testing.T) {
	t.Parallel()

	m := newPicker(testCandidates())

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = model.(pickerModel)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(pickerModel)
	if cmd == nil {
		t.Fatal("Expected quit command on enter")
	}
	if m.aborted {
		t.Fatal("Expected selection, not abort")
	}
	if m.input.Value() != "2" {
		t.Fatalf("Expected raw input %q, got %q", "2", m.input.Value())
	}
}

func TestPickerEmptyInputIsValid(t *testing.T) {
	t.Parallel()

	m := newPicker(testCandidates())
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(pickerModel)
	if m.aborted {
		t.Fatal("Expected empty selection to be accepted")
	}
	if m.input.Value() != "" {
		t.Fatalf("Expected empty input, got %q", m.input.Value())
	}
}

func TestPickerEscapeAborts(t *testing.T) {
	t.Parallel()

	m := newPicker(testCandidates())
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(pickerModel)
	if !m.aborted {
		t.Fatal("Expected abort on escape")
	}
	if cmd == nil {
		t.Fatal("Expected quit command on escape")
	}
}
