package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/config"
	"uia-atlas/atlas-portal/internal/server"
	"uia-atlas/atlas-portal/pkg/catalog"
)

const submissionYAML = `project_name: Green Roofs Lisbon
organization_name: Atelier Verde
contact_person: Ana Costa
contact_email: ana@example.org
project_status: In Progress
funding_needed: 120000
uia_region: Section I - Western Europe
city: Lisbon
country: Portugal
location: {lat: 38.72, lng: -9.14}
brief_description: Retrofitting social housing roofs
typologies: [Housing]
funding_requirements: [EU Funds]
sdgs: [11, 13]
gdpr_consent: true
`

type testCLI struct {
	url  string
	home string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.AdminEmail = "admin@example.org"
	cfg.Security.AdminPassword = "pw"
	cfg.Dashboard.CacheTTL = 0

	app, err := server.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return &testCLI{url: srv.URL, home: t.TempDir()}
}

func (c *testCLI) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	cmd.SetArgs(append([]string{"--home", c.home, "--api-url", c.url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (c *testCLI) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(c.home, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

var submittedLine = regexp.MustCompile(`Submitted .* \(([0-9a-f-]+)\)\nEdit token: ([0-9a-f]+)`)

func TestSubmitReviewAndBrowse(t *testing.T) {
	c := newTestCLI(t)

	out, _, err := c.run("", "submit", "-f", c.write(t, "project.yaml", submissionYAML))
	require.NoError(t, err)
	m := submittedLine.FindStringSubmatch(out)
	require.Len(t, m, 3, out)
	id, token := m[1], m[2]

	out, _, err = c.run("admin@example.org\npw\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin@example.org (admin)")

	out, _, err = c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@example.org")

	out, _, err = c.run("", "admin", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Green Roofs Lisbon")
	assert.Contains(t, out, "submitted")

	_, _, err = c.run("", "review", "reject", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs --note")

	out, _, err = c.run("", "review", "request-changes", id, "--note", "add more photos")
	require.NoError(t, err)
	assert.Contains(t, out, "is now changes_requested")

	out, _, err = c.run("", "fetch", token)
	require.NoError(t, err)
	assert.Contains(t, out, "project_name: Green Roofs Lisbon")

	out, _, err = c.run("", "edit", token, "-f", c.write(t, "patch.yaml", "funding_needed: 5000\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "now submitted")

	out, _, err = c.run("", "review", "approve", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now approved")

	out, _, err = c.run("", "admin", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "€5000 needed")
	assert.Contains(t, out, "History")
	assert.Contains(t, out, "Available actions: Unpublish")

	out, _, err = c.run("", "projects", "--sdg", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "Green Roofs Lisbon")
	assert.Contains(t, out, "Page 1 of 1, 1 projects")

	out, _, err = c.run("", "kpis", "--region", string(catalog.RegionWesternEurope))
	require.NoError(t, err)
	assert.Regexp(t, `Projects\s+1`, out)

	out, _, err = c.run("", "markers", "--near", "38.7,-9.1", "--radius", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "1 markers")

	out, _, err = c.run("", "search", "Lisb")
	require.NoError(t, err)
	assert.Contains(t, out, "city")

	out, _, err = c.run("", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Lisbon, Portugal")

	out, _, err = c.run("", "analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "Housing")
}

func TestInvalidSubmissionListsFields(t *testing.T) {
	c := newTestCLI(t)
	bad := strings.Replace(submissionYAML, "gdpr_consent: true", "gdpr_consent: false", 1)

	_, errOut, err := c.run("", "submit", "-f", c.write(t, "bad.yaml", bad))
	require.Error(t, err)
	assert.Contains(t, errOut, "gdprConsent")
}

func TestAdminWithoutSession(t *testing.T) {
	c := newTestCLI(t)

	_, errOut, err := c.run("", "admin", "pending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
	assert.Contains(t, errOut, "atlas login")

	_, _, err = c.run("admin@example.org\nwrong\n", "login")
	require.Error(t, err)

	out, _, err := c.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
}

func TestEmptyFilteredList(t *testing.T) {
	c := newTestCLI(t)
	out, _, err := c.run("", "projects", "--sdg", "5", "--city", "Porto")
	require.NoError(t, err)
	assert.Contains(t, out, "Filters:")
	assert.Contains(t, out, "Porto")
	assert.Contains(t, out, "No projects found.")
}

func TestParseLatLng(t *testing.T) {
	loc, err := parseLatLng("38.72, -9.14")
	require.NoError(t, err)
	assert.Equal(t, catalog.Location{Lat: 38.72, Lng: -9.14}, loc)

	_, err = parseLatLng("38.72")
	assert.Error(t, err)
	_, err = parseLatLng("120,0")
	assert.Error(t, err)
}

func TestAdminExport(t *testing.T) {
	c := newTestCLI(t)

	_, _, err := c.run("", "submit", "-f", c.write(t, "project.yaml", submissionYAML))
	require.NoError(t, err)
	_, _, err = c.run("admin@example.org\npw\n", "login")
	require.NoError(t, err)

	path := filepath.Join(c.home, "projects.csv")
	out, _, err := c.run("", "admin", "export", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 projects to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Project ID,Project Name,Organization"))
	assert.Contains(t, string(data), "Green Roofs Lisbon")
	assert.Contains(t, string(data), "\"11, 13\"")

	out, _, err = c.run("", "admin", "export", "--format", "pdf", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF-"))

	out, _, err = c.run("", "admin", "export", "--status", "approved", "-o", filepath.Join(c.home, "none.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 projects")

	_, _, err = c.run("", "admin", "export", "--format", "docx")
	assert.ErrorContains(t, err, "unsupported export format")
}
