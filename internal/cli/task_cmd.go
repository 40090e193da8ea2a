package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the WBS of a project",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskUpdateCmd(app),
		newTaskRemoveCmd(app),
		newTaskListCmd(app),
		newTaskShowCmd(app),
	)

	return cmd
}

func projectFlag(cmd *cobra.Command, ref *string) {
	cmd.Flags().StringVarP(ref, "project", "p", "", "Project short ID or UUID")
	_ = cmd.MarkFlagRequired("project")
}

func newTaskAddCmd(app *App) *cobra.Command {
	var projectRef, name, description, kind, parentRef, start, end string
	var percent int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task, phase or milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}

			if name == "" && app.interactive() {
				values, err := runTaskForm(ctx, app, p.ID)
				if err != nil {
					return err
				}
				name, kind, start, end = values.Name, values.Kind, values.Start, values.End
				if values.Percent != "" {
					percent, _ = strconv.Atoi(values.Percent)
				}
				parentRef = values.Parent
			}

			in := service.CreateTaskInput{
				ProjectID:       p.ID,
				Name:            name,
				Description:     description,
				Kind:            domain.TaskKind(kind),
				PercentComplete: percent,
			}
			if in.PlannedStart, err = parseDate("start", start); err != nil {
				return err
			}
			if in.PlannedEnd, err = parseDate("end", end); err != nil {
				return err
			}
			if parentRef != "" {
				parent, err := resolveTask(ctx, app, p.ID, parentRef)
				if err != nil {
					return fmt.Errorf("resolving parent: %w", err)
				}
				in.ParentID = &parent.ID
			}

			t, err := app.Schedule.CreateTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s %s\n", t.Kind, t.WBSCode, t.Name)
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&kind, "kind", string(domain.KindTask), "Kind (task, phase, milestone)")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Parent task (WBS code, ID or name)")
	cmd.Flags().StringVar(&start, "start", "", "Planned start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Planned end (YYYY-MM-DD); ignored for milestones")
	cmd.Flags().IntVar(&percent, "percent", 0, "Percent complete (0-100)")

	return cmd
}

// runTaskForm shows the interactive task form. Parent choices are the
// project's phases.
func runTaskForm(ctx context.Context, app *App, projectID string) (*taskFormValues, error) {
	tasks, err := app.Schedule.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var phases []*domain.Task
	for _, t := range tasks {
		if t.IsPhase() {
			phases = append(phases, t)
		}
	}
	values := &taskFormValues{}
	if err := taskForm(values, phases).Run(); err != nil {
		return nil, err
	}
	return values, nil
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var projectRef, name, description, kind, parentRef, start, end string
	var percent int
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "update TASK",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			t, err := resolveTask(ctx, app, p.ID, args[0])
			if err != nil {
				return err
			}

			var patch service.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("kind") {
				k := domain.TaskKind(kind)
				patch.Kind = &k
			}
			if flags.Changed("start") {
				if patch.PlannedStart, err = parseDate("start", start); err != nil {
					return err
				}
			}
			if flags.Changed("end") {
				if patch.PlannedEnd, err = parseDate("end", end); err != nil {
					return err
				}
			}
			if flags.Changed("percent") {
				patch.PercentComplete = &percent
			}
			switch {
			case toRoot && parentRef != "":
				return fmt.Errorf("--parent and --root are mutually exclusive")
			case toRoot:
				patch.ClearParent = true
			case parentRef != "":
				parent, err := resolveTask(ctx, app, p.ID, parentRef)
				if err != nil {
					return fmt.Errorf("resolving parent: %w", err)
				}
				patch.ParentID = &parent.ID
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update (see --help for the available flags)")
			}

			updated, err := app.Schedule.UpdateTask(ctx, t.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", updated.WBSCode, updated.Name)
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&kind, "kind", "", "New kind (task, phase, milestone)")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Move under this task")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to the top level")
	cmd.Flags().StringVar(&start, "start", "", "Planned start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Planned end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&percent, "percent", 0, "Percent complete (0-100)")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var projectRef string
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove TASK",
		Short: "Delete a task with its descendants and their dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			t, err := resolveTask(ctx, app, p.ID, args[0])
			if err != nil {
				return err
			}

			b, err := app.Schedule.Board(ctx, p.ID, service.BoardRequest{Zoom: app.zoom()})
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				prompt := fmt.Sprintf("Delete %s %s and everything under it?", t.WBSCode, t.Name)
				if waiting := dependents(b, t.ID); len(waiting) > 0 {
					prompt += " Depending on it: " + taskRefs(waiting) + "."
				}
				confirmed := false
				if err := confirmForm(prompt, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			res, err := app.Schedule.DeleteTask(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s (%s, %s)\n", t.WBSCode, t.Name,
				plural(len(res.TaskIDs), "task"), plural(res.DependencyCount, "dependency"))
			if len(res.Dependents) > 0 {
				lost := make([]*domain.Task, 0, len(res.Dependents))
				for _, id := range res.Dependents {
					if dt, ok := b.Graph().Task(id); ok {
						lost = append(lost, dt)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Lost a predecessor: %s\n", formatter.StyleYellow.Render("!"), taskRefs(lost))
			}
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var projectRef string
	var tree bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the WBS of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			b, err := app.Schedule.Board(ctx, p.ID, service.BoardRequest{Zoom: app.zoom(), ExpandAll: true})
			if err != nil {
				return err
			}
			if len(b.Rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}

			if tree {
				fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTree(b.Rows, b.Progress))
				return nil
			}
			tasks := make([]*domain.Task, len(b.Rows))
			for i, r := range b.Rows {
				tasks[i] = r.Task
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatTaskList(tasks, b.Progress))
			return nil
		},
	}

	projectFlag(cmd, &projectRef)
	cmd.Flags().BoolVar(&tree, "tree", false, "Render as a tree")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "show TASK",
		Short: "Show a task with its neighbours",
		Args:  cobra.ExactArgs(1),
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
			t, err := matchTask(tasks, args[0])
			if err != nil {
				return err
			}
			b, err := app.Schedule.Board(ctx, p.ID, service.BoardRequest{Zoom: app.zoom()})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskDetail(taskDetail(t, b)))
			return nil
		},
	}

	projectFlag(cmd, &projectRef)

	return cmd
}

func taskDetail(t *domain.Task, b *gantt.Board) formatter.TaskDetail {
	d := formatter.TaskDetail{Task: t, Progress: t.PercentComplete}
	if pct, ok := b.Progress[t.ID]; ok {
		d.Progress = pct
	}
	if n, ok := b.Tree().ByID[t.ID]; ok {
		if n.Parent != nil {
			d.Parent = n.Parent.Task
		}
		for _, c := range n.Children {
			d.Children = append(d.Children, c.Task)
		}
	}
	g := b.Graph()
	for _, pred := range g.Predecessors(t.ID) {
		d.Predecessors = append(d.Predecessors, formatter.LinkedTask{Task: pred, Dependency: g.Edge(pred.ID, t.ID)})
	}
	for _, succ := range g.Successors(t.ID) {
		d.Successors = append(d.Successors, formatter.LinkedTask{Task: succ, Dependency: g.Edge(t.ID, succ.ID)})
	}
	return d
}

// dependents returns the tasks outside id's subtree that depend on id or on
// anything below it, ordered by WBS code.
func dependents(b *gantt.Board, id string) []*domain.Task {
	subtree := append([]string{id}, b.Tree().Descendants(id)...)
	inside := make(map[string]bool, len(subtree))
	for _, sid := range subtree {
		inside[sid] = true
	}
	var out []*domain.Task
	for _, sid := range subtree {
		for _, succ := range b.Graph().Successors(sid) {
			if inside[succ.ID] {
				continue
			}
			inside[succ.ID] = true
			out = append(out, succ)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WBSCode < out[j].WBSCode })
	return out
}

func taskRefs(tasks []*domain.Task) string {
	refs := make([]string, len(tasks))
	for i, t := range tasks {
		refs[i] = t.WBSCode + " " + t.Name
	}
	return strings.Join(refs, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if noun == "dependency" {
		return fmt.Sprintf("%d dependencies", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
