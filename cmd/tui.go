package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/service"
	"github.com/jjenkins/pincode/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive lookup form in the terminal",
	Long: `Open the lookup form in the terminal.

Type a pincode and press enter. While results are shown, type to filter
by post office name and press esc to start a new search.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to a file so they do not draw over the form
	logger, err := logging.NewFileLogger(cfg.LogFile(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Close()

	db, history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	var recorder service.Recorder
	if history != nil {
		defer db.Close()
		recorder = history
	}

	p := tea.NewProgram(tui.New(newClient(cfg), recorder, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal form failed: %w", err)
	}
	return nil
}
