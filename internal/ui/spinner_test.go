package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSpinnerCtrlCCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := spinnerModel{text: "Running", cancel: cancel}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(spinnerModel).quitting {
		t.Error("expected spinner to stop")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Error("expected Ctrl+C to cancel the running command")
	}
}

func TestSpinnerDone(t *testing.T) {
	m := spinnerModel{text: "Running"}
	next, cmd := m.Update(doneMsg{})
	if cmd == nil || !next.(spinnerModel).done {
		t.Error("expected done to quit")
	}
	if next.View() != "" {
		t.Errorf("expected empty view after done, got %q", next.View())
	}
}

func TestRunWithSpinnerPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	err := RunWithSpinner(ctx, "Running", func(got context.Context) error {
		if got.Value(key{}) != "v" {
			return errors.New("context not passed through")
		}
		return nil
	})
	if err != nil {
		t.Error(err)
	}
}
