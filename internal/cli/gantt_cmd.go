package cli

import (
	"fmt"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// boardFlags are shared by the commands that render a board.
type boardFlags struct {
	project   string
	zoom      string
	weighting string
	collapsed bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	projectFlag(cmd, &f.project)
	cmd.Flags().StringVarP(&f.zoom, "zoom", "z", "", "Zoom (day, week, month, quarter)")
	cmd.Flags().StringVar(&f.weighting, "weighting", string(gantt.EqualWeighted), "Phase progress weighting (equal, duration)")
	cmd.Flags().BoolVar(&f.collapsed, "collapsed", false, "Show top-level tasks only")
}

// request validates the flags and returns the project and board request.
func (f *boardFlags) request(cmd *cobra.Command, app *App) (*domain.Project, service.BoardRequest, error) {
	req := service.BoardRequest{
		Zoom:      app.zoom(),
		Weighting: gantt.Weighting(f.weighting),
		ExpandAll: !f.collapsed,
	}
	if f.zoom != "" {
		z, err := gantt.ParseZoom(f.zoom)
		if err != nil {
			return nil, req, err
		}
		req.Zoom = z
	}
	if !req.Weighting.IsValid() {
		return nil, req, domain.NewValidationError("weighting", "must be equal or duration (got %q)", f.weighting)
	}
	if f.collapsed {
		req.Expanded = gantt.NewExpansionSet()
	}
	p, err := resolveProject(cmd.Context(), app, f.project)
	return p, req, err
}

func newGanttCmd(app *App) *cobra.Command {
	var flags boardFlags
	var width, labelWidth int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Show the Gantt chart of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, req, err := flags.request(cmd, app)
			if err != nil {
				return err
			}

			if interactive {
				if !app.interactive() {
					return fmt.Errorf("interactive mode needs a terminal")
				}
				m := newGanttView(app, p, req)
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}

			b, err := app.Schedule.Board(cmd.Context(), p.ID, req)
			if err != nil {
				return err
			}
			if len(b.Rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no tasks yet.\n", p.Name)
				return nil
			}
			today := app.now()
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n\n", formatter.Bold(p.Name), formatter.Dim(string(b.Zoom)))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGantt(b, formatter.GanttOptions{
				Width:      width,
				LabelWidth: labelWidth,
				Cursor:     -1,
				Today:      &today,
			}))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "Line width in columns (default 120)")
	cmd.Flags().IntVar(&labelWidth, "label-width", 0, "WBS column width (default 36)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the chart interactively")

	return cmd
}
