package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"uia-atlas/atlas-portal/internal/apiclient"
	"uia-atlas/atlas-portal/internal/views"
	"uia-atlas/atlas-portal/pkg/catalog"
)

func readYAML(rt *runtime, file string, into any) error {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(rt.streams.In)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

// printFieldErrors lists per-field validation messages before returning
// the error.
func (rt *runtime) printFieldErrors(err error) error {
	if views.Classify(err) != views.ErrorValidation {
		return describe(err)
	}
	var fields map[string]string
	var apiErr *apiclient.ValidationError
	var local catalog.ValidationErrors
	switch {
	case errors.As(err, &apiErr):
		fields = apiErr.Fields
	case errors.As(err, &local):
		fields = local
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(rt.streams.Err, "  %s: %s\n", k, fields[k])
	}
	return errors.New("the submission was not accepted")
}

func newSubmitCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new project from a YAML file",
		Long: `Submit a new project. The file uses the same fields as 'atlas fetch'
prints, for example:

  project_name: Green Roofs Lisbon
  organization_name: Atelier Verde
  contact_person: Ana Costa
  contact_email: ana@example.org
  project_status: In Progress
  uia_region: Section I - Western Europe
  city: Lisbon
  country: Portugal
  location: {lat: 38.72, lng: -9.14}
  brief_description: Retrofitting social housing roofs
  sdgs: [11, 13]
  gdpr_consent: true

Keep the printed edit token: it is the only way to change the submission.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var form catalog.Submission
			if err := readYAML(rt, file, &form); err != nil {
				return err
			}
			s := views.NewSubmissionController(rt.client, rt.nav, rt.logger)
			p, err := s.Submit(cmd.Context(), form)
			if err != nil {
				return rt.printFieldErrors(err)
			}
			fmt.Fprintf(rt.streams.Out, "Submitted %s (%s)\n", p.ProjectName, p.ID)
			fmt.Fprintf(rt.streams.Out, "Edit token: %s\n", s.State().Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Submission YAML file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newEditCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <edit-token>",
		Short: "Change and resubmit a project using its edit token",
		Long: `Fields present in the file replace the stored ones; fields left out keep
their current values. The project goes back to the review queue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := views.NewSubmissionController(rt.client, rt.nav, rt.logger)
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			form := s.Draft()
			if err := readYAML(rt, file, &form); err != nil {
				return err
			}
			p, err := s.Submit(cmd.Context(), form)
			if err != nil {
				return rt.printFieldErrors(err)
			}
			fmt.Fprintf(rt.streams.Out, "Resubmitted %s, now %s\n", p.ProjectName, rt.style.workflow(p.WorkflowStatus))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the fields to change, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newFetchCmd(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fetch <edit-token>",
		Short: "Print a submission as YAML, ready to edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := views.NewSubmissionController(rt.client, rt.nav, rt.logger)
			if err := s.Open(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			data, err := yaml.Marshal(s.Draft())
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0o600)
			}
			_, err = rt.streams.Out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
