package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/obra/internal/cli"
	"github.com/alexanderramin/obra/internal/config"
	"github.com/alexanderramin/obra/internal/db"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/repository"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	slog.Debug("configuration loaded", "source", cfg.Source, "db", cfg.DBPath, "zoom", cfg.DefaultZoom)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	// Wire services
	engine := gantt.NewEngine(cfg.Layout)
	app := &cli.App{
		Projects:    service.NewProjectService(projectRepo, observers...),
		Schedule:    service.NewScheduleService(projectRepo, taskRepo, depRepo, uow, engine, observers...),
		Import:      service.NewImportService(uow, observers...),
		DefaultZoom: cfg.DefaultZoom,
	}

	// Forms, confirmations and the interactive chart need a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}
