package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"uia-atlas/atlas-portal/internal/views"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

func newAdminCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Reviewer dashboard",
	}
	cmd.AddCommand(
		newAdminListCmd(rt, views.TabPending),
		newAdminListCmd(rt, views.TabAll),
		newAdminShowCmd(rt),
		newAdminEditCmd(rt),
		newAdminExportCmd(rt),
	)
	return cmd
}

func newAdminListCmd(rt *runtime, tab views.AdminTab) *cobra.Command {
	var (
		page   int
		status string
	)
	cmd := &cobra.Command{
		Use:   string(tab),
		Short: "List projects waiting for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := views.NewAdminListController(rt.client, rt.nav, rt.logger)
			err := a.SetTab(cmd.Context(), tab)
			if err == nil && status != "" {
				ws := catalog.WorkflowStatus(status)
				if !ws.Valid() {
					return fmt.Errorf("unknown workflow status %q", status)
				}
				err = a.SetStatusFilter(cmd.Context(), ws)
			}
			if err == nil && page > 1 {
				err = a.GoToPage(cmd.Context(), page)
			}
			if err != nil {
				return describe(err)
			}
			st := a.State()
			printProjects(rt.streams.Out, rt.style, &st.Projects, true)
			return nil
		},
	}
	if tab == views.TabAll {
		cmd.Short = "List every submitted project"
		cmd.Flags().StringVar(&status, "status", "", "Only this workflow status")
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}

func newAdminShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project with its review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := views.NewReviewController(rt.client, workflows.Default(), rt.nav, rt.logger)
			if err := r.Load(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			st := r.State()
			printProject(rt.streams.Out, rt.style, st.Project)
			printHistory(rt.streams.Out, rt.style, st.History)
			printActions(rt.streams.Out, rt.style, st.Actions)
			return nil
		},
	}
}

func newAdminEditCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <project-id>",
		Short: "Apply a partial edit read from a YAML file",
		Example: `  cat > patch.yaml <<EOF
  funding_spent: 25000
  reviewer_notes: Checked against the city report
  EOF
  atlas admin edit 0b7e... -f patch.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var patch catalog.ProjectPatch
			if err := yaml.Unmarshal(data, &patch); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}

			r := views.NewReviewController(rt.client, workflows.Default(), rt.nav, rt.logger)
			if err := r.Load(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			if err := r.Save(cmd.Context(), patch); err != nil {
				return describe(err)
			}
			printProject(rt.streams.Out, rt.style, r.State().Project)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the fields to change")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReviewCmd(rt *runtime) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "review <action> <project-id>",
		Short: "Approve, reject, request changes, unpublish or start reviewing a project",
		Example: `  atlas review approve 0b7e...
  atlas review reject 0b7e... --note "Outside the programme scope"
  atlas review request-changes 0b7e... --note "add more photos"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := workflows.ParseAction(args[0])
			if err != nil {
				return err
			}
			action := workflows.ReviewAction{Kind: kind, Note: note}

			r := views.NewReviewController(rt.client, workflows.Default(), rt.nav, rt.logger)
			if err := r.Load(cmd.Context(), args[1]); err != nil {
				return describe(err)
			}
			if err := r.Perform(cmd.Context(), action); err != nil {
				if views.Classify(err) == views.ErrorValidation {
					return fmt.Errorf("%s needs --note: %w", kind.Label(), err)
				}
				return describe(err)
			}

			p, err := rt.client.AdminGetProject(cmd.Context(), args[1])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(rt.streams.Out, "%s: %s is now %s\n", kind.Label(), p.ProjectName, rt.style.workflow(p.WorkflowStatus))
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "Rejection reason or change request")
	return cmd
}
