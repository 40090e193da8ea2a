package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/spf13/cobra"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dep",
		Aliases: []string{"dependency"},
		Short:   "Manage dependencies between tasks",
	}

	cmd.AddCommand(
		newDepAddCmd(app),
		newDepRemoveCmd(app),
		newDepListCmd(app),
		newDepCheckCmd(app),
	)

	return cmd
}

func newDepAddCmd(app *App) *cobra.Command {
	var projectRef, depType string
	var lag int

	cmd := &cobra.Command{
		Use:   "add PREDECESSOR SUCCESSOR",
		Short: "Add a dependency between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			tasks, err := app.Schedule.ListTasks(ctx, p.ID)
			if err != nil {
				return err
			}
			pred, err := matchTask(tasks, args[0])
			if err != nil {
				return fmt.Errorf("resolving predecessor: %w", err)
			}
			succ, err := matchTask(tasks, args[1])
			if err != nil {
				return fmt.Errorf("resolving successor: %w", err)
			}

			d, err := app.Schedule.CreateDependency(ctx, service.CreateDependencyInput{
				PredecessorID: pred.ID,
				SuccessorID:   succ.ID,
				Type:          domain.DependencyType(strings.ToUpper(depType)),
				LagDays:       lag,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s → %s %s (%s %s)\n",
				pred.WBSCode, pred.Name, succ.WBSCode, succ.Name,
				d.Type, strings.TrimSpace(formatter.Lag(d.LagDays)+" "+formatter.TruncID(d.ID)))
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().StringVarP(&depType, "type", "t", string(domain.FinishToStart), "Type (FS, SS, FF, SF)")
	cmd.Flags().IntVar(&lag, "lag", 0, "Lag in days; negative for lead")

	return cmd
}

func newDepRemoveCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "remove ID | PREDECESSOR SUCCESSOR",
		Short: "Remove a dependency by ID (or prefix) or by its endpoints",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			d, err := resolveDependency(ctx, app, p.ID, args)
			if err != nil {
				return err
			}
			if err := app.Schedule.DeleteDependency(ctx, d.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency %s\n", formatter.TruncID(d.ID))
			return nil
		},
	}

	projectFlag(cmd, &projectRef)

	return cmd
}

// resolveDependency accepts either one argument (dependency ID or prefix) or
// two task references naming the predecessor and successor.
func resolveDependency(ctx context.Context, app *App, projectID string, args []string) (*domain.Dependency, error) {
	deps, err := app.Schedule.ListDependencies(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if len(args) == 2 {
		tasks, err := app.Schedule.ListTasks(ctx, projectID)
		if err != nil {
			return nil, err
		}
		pred, err := matchTask(tasks, args[0])
		if err != nil {
			return nil, fmt.Errorf("resolving predecessor: %w", err)
		}
		succ, err := matchTask(tasks, args[1])
		if err != nil {
			return nil, fmt.Errorf("resolving successor: %w", err)
		}
		for _, d := range deps {
			if d.PredecessorID == pred.ID && d.SuccessorID == succ.ID {
				return d, nil
			}
		}
		return nil, fmt.Errorf("no dependency from %s to %s", pred.WBSCode, succ.WBSCode)
	}

	var matches []*domain.Dependency
	for _, d := range deps {
		if d.ID == args[0] {
			return d, nil
		}
		if strings.HasPrefix(d.ID, args[0]) {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("dependency not found: %q", args[0])
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("dependency ID prefix %q is ambiguous (%d matches)", args[0], len(matches))
	}
}

func newDepListCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the dependencies of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			deps, err := app.Schedule.ListDependencies(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(deps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dependencies found.")
				return nil
			}
			tasks, err := tasksByID(ctx, app, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatDependencyList(deps, tasks))
			return nil
		},
	}

	projectFlag(cmd, &projectRef)

	return cmd
}

func newDepCheckCmd(app *App) *cobra.Command {
	var projectRef string
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check planned dates against every dependency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			results, err := app.Schedule.CheckConstraints(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dependencies to check.")
				return nil
			}
			tasks, err := tasksByID(ctx, app, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatConstraintReport(results, tasks))

			if strict {
				violated := 0
				for _, r := range results {
					if r.Status == gantt.ConstraintViolated {
						violated++
					}
				}
				if violated > 0 {
					return fmt.Errorf("%s violated", plural(violated, "dependency"))
				}
			}
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any dependency is violated")

	return cmd
}

func tasksByID(ctx context.Context, app *App, projectID string) (map[string]*domain.Task, error) {
	tasks, err := app.Schedule.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out, nil
}
