package cli

import (
	"fmt"

	"github.com/alexanderramin/obra/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var flags boardFlags
	var output, format, title string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the Gantt chart as SVG, PNG or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f export.Format
			if format != "" {
				parsed, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}

			p, req, err := flags.request(cmd, app)
			if err != nil {
				return err
			}
			b, err := app.Schedule.Board(cmd.Context(), p.ID, req)
			if err != nil {
				return err
			}

			if title == "" {
				title = p.Name
			}
			if err := export.Save(output, f, b, export.Options{Title: title}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows, %d dependency lines)\n", output, len(b.Rows), len(b.Paths))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.svg, .png or .json)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Format; inferred from the file extension when omitted")
	cmd.Flags().StringVar(&title, "title", "", "Chart title (default: project name)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
