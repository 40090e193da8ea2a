package cli

import (
	"time"

	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects service.ProjectService
	Schedule service.ScheduleService
	Import   service.ImportService

	// DefaultZoom is used when a command gets no --zoom flag.
	DefaultZoom gantt.ZoomMode

	// IsInteractive reports whether forms and confirmations may prompt.
	// Nil means never.
	IsInteractive func() bool

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) zoom() gantt.ZoomMode {
	if a.DefaultZoom.IsValid() {
		return a.DefaultZoom
	}
	return gantt.ZoomWeek
}

// NewRootCmd creates the top-level "obra" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "obra",
		Short:         "Construction schedules and Gantt charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newDepCmd(app),
		newGanttCmd(app),
		newExportCmd(app),
		newImportCmd(app),
	)

	return root
}
