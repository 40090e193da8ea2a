package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"obra"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectRemoveCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var shortID, name, client, location, start, target string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			targetDate, err := parseDate("target", target)
			if err != nil {
				return err
			}

			p := &domain.Project{
				ShortID:    shortID,
				Name:       name,
				Client:     client,
				Location:   location,
				TargetDate: targetDate,
			}
			if startDate != nil {
				p.StartDate = *startDate
			}

			if err := app.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, p.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID (3-6 uppercase letters + 2-4 digits, e.g. OBR01)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&client, "client", "", "Client")
	cmd.Flags().StringVar(&location, "location", "", "Site location")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&target, "target", "", "Target completion date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show project details and schedule summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			summary, err := projectSummary(ctx, app, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatProjectShow(summary))
			return nil
		},
	}
}

// projectSummary derives the figures shown on the project card from a
// collapsed board: counts, the planned span, and the mean of the top-level
// progress values.
func projectSummary(ctx context.Context, app *App, p *domain.Project) (formatter.ProjectSummary, error) {
	s := formatter.ProjectSummary{Project: p}

	tasks, err := app.Schedule.ListTasks(ctx, p.ID)
	if err != nil {
		return s, err
	}
	deps, err := app.Schedule.ListDependencies(ctx, p.ID)
	if err != nil {
		return s, err
	}
	s.Tasks = len(tasks)
	s.Dependencies = len(deps)
	for _, t := range tasks {
		if t.IsMilestone() {
			s.Milestones++
		}
		if t.PlannedStart != nil && (s.PlannedStart == nil || t.PlannedStart.Before(*s.PlannedStart)) {
			s.PlannedStart = t.PlannedStart
		}
		if end := t.PlannedEnd; end != nil && (s.PlannedEnd == nil || end.After(*s.PlannedEnd)) {
			s.PlannedEnd = end
		}
	}
	if len(tasks) == 0 {
		return s, nil
	}

	b, err := app.Schedule.Board(ctx, p.ID, service.BoardRequest{
		Zoom:     app.zoom(),
		Expanded: gantt.NewExpansionSet(),
	})
	if err != nil {
		return s, err
	}
	total := 0
	for _, r := range b.Rows {
		total += b.Progress[r.Task.ID]
	}
	if len(b.Rows) > 0 {
		s.Progress = total / len(b.Rows)
	}
	s.Roots = formatter.RenderTree(b.Rows, b.Progress)
	return s, nil
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a project with all its tasks and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				confirmed := false
				title := fmt.Sprintf("Delete %s [%s] and its whole schedule?", p.Name, p.ShortID)
				if err := confirmForm(title, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := app.Projects.Delete(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s [%s]\n", p.Name, p.ShortID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
