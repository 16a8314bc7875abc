// dashboard is the agent-facing terminal UI for the complaint triage
// system. It talks to the ticket store over REST (the real backend or
// the bundled mockstore) and keeps its view reconciled through the
// polling watchers.
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/config"
	"github.com/spec-kit/complaint-triage/internal/observability"
	"github.com/spec-kit/complaint-triage/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var apiURL, ticketID, logFile string
	flagSet := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api-url", cfg.API.BaseURL, "ticket store base URL")
	flagSet.StringVar(&ticketID, "ticket", "", "open this ticket's detail view directly")
	flagSet.StringVar(&logFile, "log-file", cfg.Logger.File, "write JSON log records to this file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg.Logger.File = logFile

	logger, err := observability.NewFileLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	apiClient := client.New(apiURL, cfg.API.Timeout())
	model := ui.NewModel(apiClient, logger,
		cfg.Poll.CollectionInterval(), cfg.Poll.TicketInterval(), ticketID)

	logger.Info("dashboard starting", zap.String("api_url", apiURL))

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
