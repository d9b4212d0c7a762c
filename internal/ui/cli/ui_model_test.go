package cli

import (
	"errors"
	"strings"
	"testing"

	coreapp "propinfo/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

func sampleReport() *coreapp.ClassReport {
	return &coreapp.ClassReport{
		Class: "User",
		Properties: []coreapp.PropertyReport{
			{Name: "Name", TypeText: "string", ShortDescription: "Display name.", Readable: boolPtr(true)},
			{Name: "Email", TypeText: "?string"},
		},
	}
}

func TestModel_ReportAndDetailsFlow(t *testing.T) {
	m := initialModel("User")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated, _ = updated.Update(reportMsg{report: sampleReport()})

	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	if len(state.propertyList.Items()) != 2 {
		t.Fatalf("expected 2 property items, got %d", len(state.propertyList.Items()))
	}
	first := state.propertyList.Items()[0].(item)
	if first.title != "Name" || !strings.Contains(first.desc, "Display name.") {
		t.Fatalf("unexpected first item: %+v", first)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state = updated.(model)
	if !state.showDetails {
		t.Fatal("expected details after enter")
	}
	p, ok := state.selected()
	if !ok || p.Name != "Name" {
		t.Fatalf("expected Name selected, got %+v (ok=%v)", p, ok)
	}
	if view := state.View(); !strings.Contains(view, "readable:      yes") || !strings.Contains(view, "writable:      unknown") {
		t.Fatalf("expected detail pane in view:\n%s", view)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state = updated.(model)
	if state.showDetails {
		t.Fatal("expected esc to close details")
	}
}

func TestModel_ReportError(t *testing.T) {
	m := initialModel("Missing")
	updated, _ := m.Update(reportMsg{err: errors.New("class not found")})
	state := updated.(model)
	if state.err == nil {
		t.Fatal("expected error to be recorded")
	}
	if !strings.Contains(state.View(), "class not found") {
		t.Fatalf("expected error in view:\n%s", state.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := initialModel("User")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
