package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

var (
	colorApproved = lipgloss.Color("#95E1A3")
	colorPending  = lipgloss.Color("#FFE66D")
	colorRejected = lipgloss.Color("#FF6B6B")
	colorChanges  = lipgloss.Color("#FFB347")
	colorMuted    = lipgloss.Color("#888888")
	colorPrimary  = lipgloss.Color("#4ECDC4")
)

// styles render for one output stream; plain text when it is not a
// terminal.
type styles struct {
	header lipgloss.Style
	muted  lipgloss.Style
	status map[catalog.WorkflowStatus]lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		header: r.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:  r.NewStyle().Foreground(colorMuted),
		status: map[catalog.WorkflowStatus]lipgloss.Style{
			catalog.StatusApproved:         r.NewStyle().Foreground(colorApproved),
			catalog.StatusSubmitted:        r.NewStyle().Foreground(colorPending),
			catalog.StatusInReview:         r.NewStyle().Foreground(colorPending),
			catalog.StatusRejected:         r.NewStyle().Foreground(colorRejected),
			catalog.StatusChangesRequested: r.NewStyle().Foreground(colorChanges),
		},
	}
}

func (s *styles) workflow(st catalog.WorkflowStatus) string {
	if style, ok := s.status[st]; ok {
		return style.Render(string(st))
	}
	return string(st)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(v float64) string {
	return fmt.Sprintf("€%.0f", v)
}

func printProjects(w io.Writer, s *styles, page *catalog.ProjectPage, withWorkflow bool) {
	if len(page.Projects) == 0 {
		fmt.Fprintln(w, s.muted.Render("No projects found."))
		return
	}
	tw := newTable(w)
	if withWorkflow {
		fmt.Fprintln(tw, "ID\tNAME\tCITY\tCOUNTRY\tWORKFLOW\tSUBMITTED")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tCITY\tCOUNTRY\tSTATUS\tFUNDING NEEDED")
	}
	for _, p := range page.Projects {
		if withWorkflow {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.ProjectName, p.City, p.Country,
				s.workflow(p.WorkflowStatus), p.CreatedAt.Format("2006-01-02"))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.ProjectName, p.City, p.Country,
			p.ProjectStatus, money(p.FundingNeeded))
	}
	tw.Flush()
	fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("Page %d of %d, %d projects",
		page.Page, catalog.PageCount(page.Total, page.PageSize), page.Total)))
}

func printProject(w io.Writer, s *styles, p *catalog.Project) {
	fmt.Fprintln(w, s.header.Render(p.ProjectName))
	tw := newTable(w)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", k, v)
		}
	}
	row("ID", p.ID)
	row("Organization", p.OrganizationName)
	row("Contact", fmt.Sprintf("%s <%s>", p.ContactPerson, p.ContactEmail))
	row("Place", fmt.Sprintf("%s, %s", p.City, p.Country))
	row("Region", string(p.Region))
	if p.Location != nil {
		row("Location", fmt.Sprintf("%.4f, %.4f", p.Location.Lat, p.Location.Lng))
	}
	row("Status", string(p.ProjectStatus))
	row("Workflow", s.workflow(p.WorkflowStatus))
	row("Funding", fmt.Sprintf("%s needed, %s spent", money(p.FundingNeeded), money(p.FundingSpent)))
	var goals []string
	for _, n := range p.SDGs {
		goals = append(goals, catalog.SDGLabel(n))
	}
	row("SDGs", strings.Join(goals, ", "))
	row("Typologies", strings.Join(p.Typologies, ", "))
	row("Funded by", strings.Join(p.FundingRequirements, ", "))
	row("Summary", p.BriefDescription)
	row("Rejection reason", p.RejectionReason)
	row("Reviewer notes", p.ReviewerNotes)
	tw.Flush()
}

func printHistory(w io.Writer, s *styles, events []catalog.ReviewEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w, s.header.Render("History"))
	tw := newTable(w)
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04"),
			e.Action, e.From, e.To, e.Actor, e.Note)
	}
	tw.Flush()
}

func printActions(w io.Writer, s *styles, actions []workflows.Action) {
	if len(actions) == 0 {
		return
	}
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label()
	}
	fmt.Fprintln(w, s.muted.Render("Available actions: "+strings.Join(labels, ", ")))
}
