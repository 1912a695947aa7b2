package cmd

import (
	"fmt"

	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/tui"
	"github.com/leaselad/leaselad/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	s, termsErr := newSession(true)
	if s == nil {
		return termsErr
	}
	defer s.Close()

	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Config: s.cfg,
		Syncer: s.syncer,
		Lease:  s.lease,
		Demo:   flagDemo,
		NeedSetup: !flagDemo && (termsErr != nil ||
			(!config.Exists() && config.GetAPIToken(s.cfg) == "")),
	}
	if s.cache != nil {
		opts.History = s.cache
	}
	if !flagDemo {
		opts.Connect = connect
		opts.Save = config.Save
	}

	app := tui.NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
