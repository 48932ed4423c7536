package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/internal/session"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/workflows"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *session.Session, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sess, err := session.Create(session.NewMemoryStore())
	require.NoError(t, err)
	c, err := New(srv.URL, sess, opts...)
	require.NoError(t, err)
	return c, sess, &calls
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("localhost:8080", nil)
	assert.Error(t, err)
}

func TestListProjectsQuery(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dashboard/projects", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("page_size"))
		assert.Equal(t, "project_name", q.Get("sort_by"))
		assert.Equal(t, "asc", q.Get("sort_order"))
		assert.Equal(t, "5", q.Get("sdg"))
		assert.False(t, q.Has("region"))
		assert.Empty(t, r.Header.Get("Authorization"))

		fmt.Fprint(w, `{"total": 25, "page": 2, "page_size": 20, "projects": [{"id": "p21", "project_name": "Twenty One"}]}`)
	})

	f := filters.Merge(filters.Clear(), filters.Patch{SDG: filters.Ref(5)})
	page, err := c.ListProjects(context.Background(), f, catalog.ListOptions{Page: 2, SortBy: catalog.SortByName, SortOrder: catalog.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "Twenty One", page.Projects[0].ProjectName)
}

func TestAnalyticsDropOwnDimension(t *testing.T) {
	seen := map[string]string{}
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = r.URL.RawQuery
		fmt.Fprint(w, `[]`)
	})
	f := filters.Set{Region: catalog.RegionAmericas, SDG: 3, City: "Lima"}
	ctx := context.Background()

	_, err := c.GetSDGDistribution(ctx, f)
	require.NoError(t, err)
	_, err = c.GetRegionalDistribution(ctx, f)
	require.NoError(t, err)
	_, err = c.GetTypologyDistribution(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, "city=Lima&region=Section+V+-+Americas", seen["/api/dashboard/analytics/sdg-distribution"])
	assert.Equal(t, "city=Lima&sdg=3", seen["/api/dashboard/analytics/regional-distribution"])
	assert.Equal(t, "region=Section+V+-+Americas&sdg=3", seen["/api/dashboard/analytics/typology-distribution"])
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	var redirected int32
	c, sess, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer expired-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "token expired"}`)
	}, WithUnauthorizedHandler(func() { atomic.AddInt32(&redirected, 1) }))

	require.NoError(t, sess.SignIn("expired-token", catalog.User{Email: "a@b.c"}))

	_, err := c.AdminListPending(context.Background(), 1, 20)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, sess.Authenticated())
	assert.Equal(t, int32(1), atomic.LoadInt32(&redirected))
}

func TestAdminCallWithoutTokenFailsLocally(t *testing.T) {
	c, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.AdminGetProject(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestBlankReasonIsNeverSent(t *testing.T) {
	c, sess, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	require.NoError(t, sess.SignIn("tok", catalog.User{}))
	ctx := context.Background()

	_, err := c.AdminReject(ctx, "p1", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.Review(ctx, "p1", workflows.RequestChanges("   "))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusNotFound, `{"error":"Project not found"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{http.StatusUnprocessableEntity, `{"error":"validation failed","fields":{"sdgs":"SDG numbers must be between 1 and 17"}}`, func(t *testing.T, err error) {
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "sdgs")
		}},
		{http.StatusConflict, `{"error":"invalid status transition"}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.ErrorIs(t, err, ErrConflict)
			assert.True(t, apiErr.Retryable())
		}},
		{http.StatusInternalServerError, `oops`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		}},
		{http.StatusNotFound, `{"detail":"Project not found"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "Project not found")
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := c.GetProject(context.Background(), "missing")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.GetKPIs(context.Background(), filters.Clear())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
}

func TestUnpublishPatchesWorkflowStatus(t *testing.T) {
	c, sess, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/admin/projects/p9", r.URL.Path)
		fmt.Fprint(w, `{"id":"p9","workflow_status":"submitted"}`)
	})
	require.NoError(t, sess.SignIn("tok", catalog.User{}))

	p, err := c.AdminUnpublish(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusSubmitted, p.WorkflowStatus)
}

func TestLoginSignsSessionIn(t *testing.T) {
	c, sess, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		fmt.Fprint(w, `{"access_token":"jwt","token_type":"bearer","user":{"id":"u1","email":"admin@uia.org","role":"admin","created_at":"2025-01-01T00:00:00Z"}}`)
	})

	creds, err := c.Login(context.Background(), "admin@uia.org", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", creds.AccessToken)
	assert.Equal(t, "jwt", sess.Token())

	user, err := sess.User()
	require.NoError(t, err)
	assert.Equal(t, catalog.RoleAdmin, user.Role)

	require.NoError(t, c.Logout())
	assert.False(t, sess.Authenticated())
}
