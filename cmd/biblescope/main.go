package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"biblescope/internal/api"
	"biblescope/internal/config"
	"biblescope/internal/logging"
	"biblescope/internal/prefs"
	"biblescope/internal/ui"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		apiBaseURL string
		prefsDir   string
		localeFlag string
		logFile    string
		themeName  string
		query      string
	)

	cmd := &cobra.Command{
		Use:   "biblescope [query]",
		Short: "Look up, search, and browse Bible passages in the terminal",
		Long: `biblescope is a terminal client for looking up passages by reference,
searching verse text, and browsing book by book across multiple
translations. Passing a query string restores a shared view, e.g.:

  biblescope "tab=lookup&ref=John%203%3A16&bibles=kjv"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if apiBaseURL != "" {
				cfg.APIBaseURL = apiBaseURL
			}
			if prefsDir != "" {
				cfg.PrefsDir = prefsDir
			}
			if localeFlag != "" {
				cfg.Locale = localeFlag
			}
			if logFile != "" {
				cfg.LogFile = logFile
			}
			if themeName != "" {
				cfg.Theme = themeName
			}
			if len(args) > 0 {
				query = args[0]
			}
			return run(cfg, query)
		},
	}

	cmd.Flags().StringVar(&apiBaseURL, "api", "", "base URL of the passage API")
	cmd.Flags().StringVar(&prefsDir, "prefs-dir", "", "directory for stored preferences")
	cmd.Flags().StringVar(&localeFlag, "locale", "", `language override, e.g. "fr"`)
	cmd.Flags().StringVar(&logFile, "log-file", "", "write structured logs to this file")
	cmd.Flags().StringVar(&themeName, "theme", "", `color scheme, "dark" or "light"`)

	return cmd
}

func run(cfg config.Config, query string) error {
	log, closeLog, err := logging.Open(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLog()

	prefsDir := cfg.PrefsDir
	if prefsDir == "" {
		prefsDir, err = prefs.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving preferences path: %w", err)
		}
	}
	store := prefs.Open(prefsDir)
	client := api.NewClient(cfg.APIBaseURL, log)

	p := tea.NewProgram(
		ui.NewModel(client, store, query, cfg.Theme, cfg.Locale, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
