package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project with its WBS and dependencies from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s [%s]: %s, %s\n",
				res.Project.Name, res.Project.ShortID,
				plural(res.TaskCount, "task"), plural(res.DependencyCount, "dependency"))
			return nil
		},
	}
}
