package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	def := world.Default()
	if cfg.WorldFile != "" {
		def, err = world.Load(cfg.WorldFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load world: %v\n", err)
			os.Exit(1)
		}
	}

	// The TUI owns stdout, so engine logs are limited to errors on stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	eng := engine.New(engine.WithWorld(def), engine.WithLogger(logger))
	ui := NewConsoleUI(eng, def.Name)
	if err := eng.InitializeWorld(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize world: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(ui,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
