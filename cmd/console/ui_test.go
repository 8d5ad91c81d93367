package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/events"
)

func newTestUI(t *testing.T) ConsoleUI {
	t.Helper()
	eng := engine.New()
	ui := NewConsoleUI(eng, "Hollowmere")
	if err := eng.InitializeWorld(); err != nil {
		t.Fatalf("Failed to initialize world: %v", err)
	}
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(ConsoleUI)
}

func enter(t *testing.T, ui ConsoleUI, input string) ConsoleUI {
	t.Helper()
	ui.textarea.SetValue(input)
	model, _ := ui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return model.(ConsoleUI)
}

func TestFormatEvent(t *testing.T) {
	e := events.Event{
		Type: events.PlayerMoved,
		Data: map[string]any{"to": "forest", "from": "start"},
	}
	if got := formatEvent(e); got != "Player Moved from=start to=forest" {
		t.Errorf("Unexpected format: %q", got)
	}
	if got := formatEvent(events.Event{Type: events.GameOver}); got != "Game Over" {
		t.Errorf("Unexpected format: %q", got)
	}
}

func TestConsoleUI_OpeningLookIsNotEchoed(t *testing.T) {
	ui := newTestUI(t)
	model, _ := ui.Update(submitMsg{input: "look"})
	ui = model.(ConsoleUI)

	if len(ui.transcript) != 1 {
		t.Fatalf("Expected 1 transcript entry, got %d", len(ui.transcript))
	}
	if ui.transcript[0].input != "" {
		t.Errorf("Expected opening look not to be echoed, got %q", ui.transcript[0].input)
	}
	if !strings.Contains(ui.lastMessage(), "Village Square") {
		t.Errorf("Expected location description, got %q", ui.lastMessage())
	}
	if len(ui.parser.History()) != 1 {
		t.Errorf("Expected history of 1, got %d", len(ui.parser.History()))
	}
}

func TestConsoleUI_EnterRunsCommand(t *testing.T) {
	ui := newTestUI(t)
	ui = enter(t, ui, "move north")

	if ui.gs == nil || ui.gs.Player.Location != "forest" {
		t.Fatalf("Expected player in forest, got %+v", ui.gs)
	}
	last := ui.transcript[len(ui.transcript)-1]
	if last.input != "move north" || last.failed {
		t.Errorf("Unexpected transcript entry: %+v", last)
	}
	if ui.textarea.Value() != "" {
		t.Errorf("Expected input to be cleared, got %q", ui.textarea.Value())
	}

	found := false
	for _, line := range ui.log.lines {
		if strings.HasPrefix(line, "Player Moved") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a Player Moved event, got %v", ui.log.lines)
	}

	ui = enter(t, ui, "dance")
	if last := ui.transcript[len(ui.transcript)-1]; !last.failed || last.message != engine.MsgUnknownCommand {
		t.Errorf("Expected failed unknown command, got %+v", last)
	}
}

func TestConsoleUI_BlankInputIgnored(t *testing.T) {
	ui := newTestUI(t)
	ui = enter(t, ui, "   ")
	if len(ui.transcript) != 0 {
		t.Errorf("Expected no transcript entries, got %d", len(ui.transcript))
	}
}

func TestConsoleUI_History(t *testing.T) {
	ui := newTestUI(t)
	ui = enter(t, ui, "look")
	ui = enter(t, ui, "inventory")

	model, _ := ui.Update(tea.KeyMsg{Type: tea.KeyUp})
	ui = model.(ConsoleUI)
	if ui.textarea.Value() != "inventory" {
		t.Errorf("Expected 'inventory', got %q", ui.textarea.Value())
	}

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyUp})
	ui = model.(ConsoleUI)
	if ui.textarea.Value() != "look" {
		t.Errorf("Expected 'look', got %q", ui.textarea.Value())
	}

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyDown})
	ui = model.(ConsoleUI)
	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyDown})
	ui = model.(ConsoleUI)
	if ui.textarea.Value() != "" {
		t.Errorf("Expected empty input past the newest entry, got %q", ui.textarea.Value())
	}
}

func TestConsoleUI_QuitModal(t *testing.T) {
	ui := newTestUI(t)
	model, _ := ui.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ui = model.(ConsoleUI)
	if !ui.showQuitModal {
		t.Fatal("Expected quit modal to be shown")
	}

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	ui = model.(ConsoleUI)
	if ui.showQuitModal {
		t.Error("Expected quit modal to close on n")
	}

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	ui = model.(ConsoleUI)
	_, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
