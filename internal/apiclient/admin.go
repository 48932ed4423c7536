package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

func pageQuery(page, pageSize int) url.Values {
	opts := catalog.ListOptions{Page: page, PageSize: pageSize}.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("page_size", strconv.Itoa(opts.PageSize))
	return q
}

func adminProjectPath(id string, suffix string) string {
	return "/api/admin/projects/" + url.PathEscape(id) + suffix
}

// AdminListPending lists submissions waiting for review, newest first.
func (c *Client) AdminListPending(ctx context.Context, page, pageSize int) (*catalog.ProjectPage, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/pending-projects", query: pageQuery(page, pageSize), auth: true})
	if err != nil {
		return nil, err
	}
	return decodeInto(pageSchema, data)
}

// AdminListAll lists every project, optionally restricted to one status.
func (c *Client) AdminListAll(ctx context.Context, page, pageSize int, status catalog.WorkflowStatus) (*catalog.ProjectPage, error) {
	q := pageQuery(page, pageSize)
	if status != "" {
		q.Set("workflow_status", string(status))
	}
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/all-projects", query: q, auth: true})
	if err != nil {
		return nil, err
	}
	return decodeInto(pageSchema, data)
}

func (c *Client) AdminGetProject(ctx context.Context, id string) (*catalog.Project, error) {
	return c.adminProject(ctx, http.MethodGet, adminProjectPath(id, ""), nil, nil)
}

// AdminUpdateProject applies a partial edit.
func (c *Client) AdminUpdateProject(ctx context.Context, id string, patch catalog.ProjectPatch) (*catalog.Project, error) {
	return c.adminProject(ctx, http.MethodPatch, adminProjectPath(id, ""), nil, patchSchema.encode(&patch))
}

func (c *Client) AdminApprove(ctx context.Context, id string) (*catalog.Project, error) {
	return c.adminProject(ctx, http.MethodPost, adminProjectPath(id, "/approve"), nil, nil)
}

func (c *Client) AdminReject(ctx context.Context, id, reason string) (*catalog.Project, error) {
	if err := workflows.Reject(reason).Validate(); err != nil {
		return nil, noteError(err, "reason")
	}
	return c.adminProject(ctx, http.MethodPost, adminProjectPath(id, "/reject"), url.Values{"reason": {reason}}, nil)
}

func (c *Client) AdminRequestChanges(ctx context.Context, id, message string) (*catalog.Project, error) {
	if err := workflows.RequestChanges(message).Validate(); err != nil {
		return nil, noteError(err, "message")
	}
	return c.adminProject(ctx, http.MethodPost, adminProjectPath(id, "/request-changes"), url.Values{"message": {message}}, nil)
}

// AdminUnpublish returns an approved project to submitted.
func (c *Client) AdminUnpublish(ctx context.Context, id string) (*catalog.Project, error) {
	status := catalog.StatusSubmitted
	return c.AdminUpdateProject(ctx, id, catalog.ProjectPatch{WorkflowStatus: &status})
}

func (c *Client) AdminStartReview(ctx context.Context, id string) (*catalog.Project, error) {
	return c.adminProject(ctx, http.MethodPost, adminProjectPath(id, "/start-review"), nil, nil)
}

// AdminHistory lists the review events of a project, oldest first.
func (c *Client) AdminHistory(ctx context.Context, id string) ([]catalog.ReviewEvent, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: adminProjectPath(id, "/history"), auth: true})
	if err != nil {
		return nil, err
	}
	return reviewEventSchema.decodeList(data)
}

// Review dispatches a reviewer action. Blank notes are refused before any
// request is made.
func (c *Client) Review(ctx context.Context, id string, action workflows.ReviewAction) (*catalog.Project, error) {
	switch action.Kind {
	case workflows.ActionApprove:
		return c.AdminApprove(ctx, id)
	case workflows.ActionReject:
		return c.AdminReject(ctx, id, action.Note)
	case workflows.ActionRequestChanges:
		return c.AdminRequestChanges(ctx, id, action.Note)
	case workflows.ActionUnpublish:
		return c.AdminUnpublish(ctx, id)
	case workflows.ActionStartReview:
		return c.AdminStartReview(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", workflows.ErrUnknownAction, action.Kind)
}

func (c *Client) adminProject(ctx context.Context, method, path string, q url.Values, body any) (*catalog.Project, error) {
	data, err := c.do(ctx, request{method: method, path: path, query: q, body: body, auth: true})
	if err != nil {
		return nil, err
	}
	return decodeInto(projectSchema, data)
}

func noteError(err error, field string) error {
	return &ValidationError{Message: err.Error(), Fields: map[string]string{field: "is required"}}
}
