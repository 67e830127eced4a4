package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/latexr/internal/config"
	"github.com/csheth/latexr/internal/session"
	"github.com/csheth/latexr/internal/tui"
)

var (
	cfgFile     string
	verbose     bool
	noAltScreen bool
)

var rootCmd = &cobra.Command{
	Use:   "latexr [share-link]",
	Short: "Render LaTeX formulas to images from the terminal",
	Long: `latexr is a small editor for LaTeX formulas. Type markup, then copy the
rendered image to the clipboard, save it as PNG, JPEG or WEBP, or share a
link that reopens the same formula.

Pass a share link as the only argument to start with its formula.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.newSession()
	defer func() { _ = sess.Close() }()
	if len(args) == 1 {
		if _, err := sess.SeedFromLink(args[0]); err != nil {
			return fmt.Errorf("reading share link: %w", err)
		}
	}

	opts := []tea.ProgramOption{}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{Session: sess, Logger: a.logger}), opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func (a *app) newSession() *session.Session {
	return session.New(session.Config{
		Exporter:       a.exporter,
		Clipboard:      a.clipboard,
		Prefs:          a.prefs,
		ShareBaseURL:   a.cfg.ShareBaseURL,
		HistoryPolicy:  session.HistoryPolicy(a.cfg.History.OpenPolicy),
		NotifyDuration: a.cfg.Notify.Duration,
		UserAgent:      a.userAgent,
		LogPath:        a.cfg.Log.Path,
		Logger:         a.logger,
	})
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
