package apiclient

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// jsonNames lists the canonical json names of a struct, skipping "-".
func jsonNames(v any) []string {
	t := reflect.TypeOf(v)
	var names []string
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func TestSchemasCoverEveryCanonicalField(t *testing.T) {
	cases := []struct {
		name  string
		value any
		names []string
	}{
		{"project", catalog.Project{}, projectSchema.canonicalNames()},
		{"submission", catalog.Submission{}, submissionSchema.canonicalNames()},
		{"patch", catalog.ProjectPatch{}, patchSchema.canonicalNames()},
		{"page", catalog.ProjectPage{}, pageSchema.canonicalNames()},
		{"kpis", catalog.KPIs{}, kpiSchema.canonicalNames()},
		{"marker", catalog.MapMarker{}, markerSchema.canonicalNames()},
		{"sdg", catalog.SDGCount{}, sdgCountSchema.canonicalNames()},
		{"region", catalog.RegionCount{}, regionCountSchema.canonicalNames()},
		{"typology", catalog.TypologyCount{}, typologyCountSchema.canonicalNames()},
		{"options", catalog.FilterOptions{}, filterOptionsSchema.canonicalNames()},
		{"user", catalog.User{}, userSchema.canonicalNames()},
		{"credentials", catalog.Credentials{}, credentialsSchema.canonicalNames()},
		{"event", catalog.ReviewEvent{}, reviewEventSchema.canonicalNames()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, jsonNames(tc.value), tc.names)
		})
	}
}

const wireProject = `{
	"id": "5b0e6c1e-8f1f-4a4e-9d3e-0c6f0f6b9a11",
	"project_name": "Harbour Commons",
	"organization_name": "Studio Norte",
	"contact_person": "Ines Ortega",
	"contact_email": "ines@norte.example",
	"project_status": "In Progress",
	"workflow_status": "approved",
	"funding_needed": 250000,
	"funding_spent": 40000.5,
	"uia_region": "Section V - Americas",
	"city": "Valparaíso",
	"country": "Chile",
	"latitude": -33.047,
	"longitude": -71.612,
	"brief_description": "Waterfront public space",
	"detailed_description": "Long text",
	"success_factors": "Community workshops",
	"typologies": ["Public Spaces", "Urban Regeneration"],
	"funding_requirements": ["Grant"],
	"government_requirements": [],
	"other_requirements": ["Media Coverage"],
	"other_requirement_text": "",
	"sdgs": [11, 14],
	"image_urls": ["https://img.example/1.jpg"],
	"gdpr_consent": true,
	"rejection_reason": "",
	"reviewer_notes": "looks good",
	"created_at": "2025-03-01T10:00:00Z",
	"updated_at": "2025-03-02T12:30:00Z",
	"co2_savings_tonnes": 12.5,
	"featured": true
}`

func TestProjectDecode(t *testing.T) {
	var p catalog.Project
	require.NoError(t, projectSchema.decode([]byte(wireProject), &p))

	assert.Equal(t, "Harbour Commons", p.ProjectName)
	assert.Equal(t, catalog.StatusApproved, p.WorkflowStatus)
	assert.Equal(t, catalog.RegionAmericas, p.Region)
	require.NotNil(t, p.Location)
	assert.Equal(t, -33.047, p.Location.Lat)
	assert.Equal(t, []int{11, 14}, p.SDGs)
	assert.Equal(t, 2025, p.CreatedAt.Year())

	require.Len(t, p.Extra, 2)
	assert.JSONEq(t, "12.5", string(p.Extra["co2_savings_tonnes"]))
}

func TestProjectRoundTripIsLossless(t *testing.T) {
	var p catalog.Project
	require.NoError(t, projectSchema.decode([]byte(wireProject), &p))

	out, err := json.Marshal(projectSchema.encode(&p))
	require.NoError(t, err)
	assert.JSONEq(t, wireProject, string(out))
}

func TestHalfLocationKeepsRawCoordinates(t *testing.T) {
	var p catalog.Project
	require.NoError(t, projectSchema.decode([]byte(`{"id": "p1", "latitude": 48.8, "longitude": null}`), &p))
	assert.Nil(t, p.Location)
	require.Len(t, p.Extra, 2)
	assert.JSONEq(t, "48.8", string(p.Extra["latitude"]))

	out, err := json.Marshal(projectSchema.encode(&p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude": 48.8, "longitude": null}`, pick(t, out, "latitude", "longitude"))

	p.Location = &catalog.Location{Lat: 1, Lng: 2}
	out, err = json.Marshal(projectSchema.encode(&p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude": 1, "longitude": 2}`, pick(t, out, "latitude", "longitude"))
}

func TestMarkerHalfLocationKeepsRawCoordinates(t *testing.T) {
	var m catalog.MapMarker
	require.NoError(t, markerSchema.decode([]byte(`{"id": "m1", "longitude": 2.35}`), &m))
	assert.Equal(t, catalog.Location{}, m.Location)

	out, err := json.Marshal(markerSchema.encode(&m))
	require.NoError(t, err)
	assert.JSONEq(t, `{"longitude": 2.35}`, pick(t, out, "latitude", "longitude"))
}

func TestUnknownFieldsSurviveOnEveryEntity(t *testing.T) {
	t.Run("marker", func(t *testing.T) {
		in := `{"id": "m1", "project_name": "Harbour Commons", "city": "Lima", "country": "Peru",
			"latitude": -12.04, "longitude": -77.04, "region": "Section V - Americas",
			"status": "Completed", "image_url": "https://img.example/1.png", "cluster_weight": 7}`
		var m catalog.MapMarker
		require.NoError(t, markerSchema.decode([]byte(in), &m))
		assert.Equal(t, catalog.Location{Lat: -12.04, Lng: -77.04}, m.Location)
		assert.JSONEq(t, "7", string(m.Extra["cluster_weight"]))

		out, err := json.Marshal(markerSchema.encode(&m))
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	})

	t.Run("kpis", func(t *testing.T) {
		in := `{"total_projects": 4, "cities_engaged": 3, "countries_represented": 2,
			"total_funding_needed": 900000, "total_funding_spent": 120000, "average_funding": 5}`
		var k catalog.KPIs
		require.NoError(t, kpiSchema.decode([]byte(in), &k))
		assert.Equal(t, 4, k.TotalProjects)
		assert.JSONEq(t, "5", string(k.Extra["average_funding"]))

		out, err := json.Marshal(kpiSchema.encode(&k))
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	})

	t.Run("nested user", func(t *testing.T) {
		in := `{"access_token": "jwt", "token_type": "bearer", "expires_in": 3600,
			"user": {"id": "u1", "email": "a@b.example", "role": "admin",
				"created_at": "2026-01-02T03:04:05Z", "last_login": "yesterday"}}`
		var c catalog.Credentials
		require.NoError(t, credentialsSchema.decode([]byte(in), &c))
		assert.Contains(t, c.Extra, "expires_in")
		assert.Contains(t, c.User.Extra, "last_login")

		out, err := json.Marshal(credentialsSchema.encode(&c))
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	})
}

// pick re-encodes only the named keys of a JSON object.
func pick(t *testing.T, data []byte, keys ...string) string {
	t.Helper()
	var all map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &all))
	sub := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			sub[k] = v
		}
	}
	out, err := json.Marshal(sub)
	require.NoError(t, err)
	return string(out)
}

func TestPatchEncodesOnlySetFields(t *testing.T) {
	status := catalog.StatusSubmitted
	notes := "check budget"
	patch := catalog.ProjectPatch{
		WorkflowStatus: &status,
		ReviewerNotes:  &notes,
		Location:       &catalog.Location{Lat: 1, Lng: 2},
	}

	out, err := json.Marshal(patchSchema.encode(&patch))
	require.NoError(t, err)
	assert.JSONEq(t, `{"workflow_status":"submitted","reviewer_notes":"check budget","latitude":1,"longitude":2}`, string(out))
}

func TestSubmissionEncodesEmptyLists(t *testing.T) {
	s := catalog.Submission{ProjectName: "x"}
	out := submissionSchema.encode(&s)
	assert.Equal(t, []string{}, out["typologies"])
	assert.Equal(t, []int{}, out["sdgs"])
	_, hasCaptcha := out["captcha_token"]
	assert.False(t, hasCaptcha)
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	var p catalog.Project
	err := projectSchema.decode([]byte(`{"sdgs": "eleven"}`), &p)
	assert.Error(t, err)
}
