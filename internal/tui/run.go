package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/l4d2-addon-manager/internal/config"
	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/session"
)

// Run loads preferences, builds a session and starts the TUI. It blocks
// until the user quits.
func Run() error {
	settingsPath := config.DefaultPath()
	settings, err := config.Load(settingsPath)
	if err != nil {
		// A corrupt preferences file should not keep the UI from
		// starting; it will be rewritten on the next directory change.
		settings = config.DefaultSettings()
	}

	// Log lines would tear the alternate screen, so only errors.
	if err := logging.Init(logging.Config{Level: "error", Format: "console"}); err != nil {
		return err
	}
	defer logging.Sync()

	sess := session.New(settings, settingsPath)
	p := tea.NewProgram(NewModel(sess), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
