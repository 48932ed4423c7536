package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/export"
	"uia-atlas/atlas-portal/pkg/catalog"
)

func newAdminExportCmd(rt *runtime) *cobra.Command {
	var (
		format string
		output string
		status string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every project as CSV, Excel or PDF",
		Example: `  atlas admin export
  atlas admin export -o approved.xlsx --status approved
  atlas admin export --format pdf -o -  > catalog.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" && output != "-" {
				format = filepath.Ext(output)
			}
			if format == "" {
				format = string(export.FormatCSV)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			ws := catalog.WorkflowStatus(status)
			if ws != "" && !ws.Valid() {
				return fmt.Errorf("unknown workflow status %q", status)
			}

			projects, err := export.Collect(cmd.Context(), rt.client, ws)
			if err != nil {
				return describe(err)
			}

			now := time.Now()
			title := "UIA Project Catalog"
			if ws != "" {
				title += " (" + string(ws) + ")"
			}
			var buf bytes.Buffer
			if err := export.Write(&buf, f, projects, export.Options{Title: title, GeneratedAt: now}); err != nil {
				return fmt.Errorf("failed to render export: %w", err)
			}

			if output == "-" {
				_, err := rt.streams.Out.Write(buf.Bytes())
				return err
			}
			if output == "" {
				output = f.FileName(now)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			rt.logger.Debug("export written", zap.String("path", output), zap.Int("projects", len(projects)))
			fmt.Fprintf(rt.streams.Out, "Exported %d projects to %s\n", len(projects), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv, xlsx or pdf (default from the output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout")
	cmd.Flags().StringVar(&status, "status", "", "Only this workflow status")
	return cmd
}
