package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// SubmitProject files a new public submission. The returned project carries
// the edit token the submitter needs for later changes.
func (c *Client) SubmitProject(ctx context.Context, s catalog.Submission) (*catalog.Project, error) {
	data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/projects/submit",
		body:   submissionSchema.encode(&s),
	})
	if err != nil {
		return nil, err
	}
	return decodeInto(projectSchema, data)
}

// GetProjectByToken loads a submission through its edit token.
func (c *Client) GetProjectByToken(ctx context.Context, token string) (*catalog.Project, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/projects/edit/" + url.PathEscape(token)})
	if err != nil {
		return nil, err
	}
	return decodeInto(projectSchema, data)
}

// UpdateProjectByToken resubmits a project. The server resets its workflow
// status to submitted.
func (c *Client) UpdateProjectByToken(ctx context.Context, token string, s catalog.Submission) (*catalog.Project, error) {
	data, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/projects/edit/" + url.PathEscape(token),
		body:   submissionSchema.encode(&s),
	})
	if err != nil {
		return nil, err
	}
	return decodeInto(projectSchema, data)
}
