package apiclient

import (
	"encoding/json"
	"time"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Field tables between the snake_case wire format and the canonical types.

var projectSchema = &schema[catalog.Project]{
	entity: "project",
	fields: []field[catalog.Project]{
		mapped("id", "id", func(p *catalog.Project) *string { return &p.ID }),
		mapped("project_name", "projectName", func(p *catalog.Project) *string { return &p.ProjectName }),
		mapped("organization_name", "organizationName", func(p *catalog.Project) *string { return &p.OrganizationName }),
		mapped("contact_person", "contactPerson", func(p *catalog.Project) *string { return &p.ContactPerson }),
		mapped("contact_email", "contactEmail", func(p *catalog.Project) *string { return &p.ContactEmail }),
		mapped("project_status", "projectStatus", func(p *catalog.Project) *catalog.ProjectStatus { return &p.ProjectStatus }),
		mapped("workflow_status", "workflowStatus", func(p *catalog.Project) *catalog.WorkflowStatus { return &p.WorkflowStatus }),
		mapped("funding_needed", "fundingNeeded", func(p *catalog.Project) *float64 { return &p.FundingNeeded }),
		mapped("funding_spent", "fundingSpent", func(p *catalog.Project) *float64 { return &p.FundingSpent }),
		mapped("uia_region", "uiaRegion", func(p *catalog.Project) *catalog.Region { return &p.Region }),
		mapped("city", "city", func(p *catalog.Project) *string { return &p.City }),
		mapped("country", "country", func(p *catalog.Project) *string { return &p.Country }),
		optionalLocation(func(p *catalog.Project) **catalog.Location { return &p.Location }),
		mapped("brief_description", "briefDescription", func(p *catalog.Project) *string { return &p.BriefDescription }),
		mapped("detailed_description", "detailedDescription", func(p *catalog.Project) *string { return &p.DetailedDescription }),
		mapped("success_factors", "successFactors", func(p *catalog.Project) *string { return &p.SuccessFactors }),
		mapped("typologies", "typologies", func(p *catalog.Project) *[]string { return &p.Typologies }),
		mapped("funding_requirements", "fundingRequirements", func(p *catalog.Project) *[]string { return &p.FundingRequirements }),
		mapped("government_requirements", "governmentRequirements", func(p *catalog.Project) *[]string { return &p.GovernmentRequirements }),
		mapped("other_requirements", "otherRequirements", func(p *catalog.Project) *[]string { return &p.OtherRequirements }),
		mapped("other_requirement_text", "otherRequirementText", func(p *catalog.Project) *string { return &p.OtherRequirementText }),
		mapped("sdgs", "sdgs", func(p *catalog.Project) *[]int { return &p.SDGs }),
		mapped("image_urls", "imageUrls", func(p *catalog.Project) *[]string { return &p.ImageURLs }),
		mapped("gdpr_consent", "gdprConsent", func(p *catalog.Project) *bool { return &p.GDPRConsent }),
		mapped("rejection_reason", "rejectionReason", func(p *catalog.Project) *string { return &p.RejectionReason }),
		mapped("reviewer_notes", "reviewerNotes", func(p *catalog.Project) *string { return &p.ReviewerNotes }),
		optionalString("edit_token", "editToken", func(p *catalog.Project) *string { return &p.EditToken }),
		mapped("created_at", "createdAt", func(p *catalog.Project) *time.Time { return &p.CreatedAt }),
		mapped("updated_at", "updatedAt", func(p *catalog.Project) *time.Time { return &p.UpdatedAt }),
	},
	extra: func(p *catalog.Project) *map[string]json.RawMessage { return &p.Extra },
}

var submissionSchema = &schema[catalog.Submission]{
	entity: "submission",
	fields: []field[catalog.Submission]{
		mapped("project_name", "projectName", func(s *catalog.Submission) *string { return &s.ProjectName }),
		mapped("organization_name", "organizationName", func(s *catalog.Submission) *string { return &s.OrganizationName }),
		mapped("contact_person", "contactPerson", func(s *catalog.Submission) *string { return &s.ContactPerson }),
		mapped("contact_email", "contactEmail", func(s *catalog.Submission) *string { return &s.ContactEmail }),
		mapped("project_status", "projectStatus", func(s *catalog.Submission) *catalog.ProjectStatus { return &s.ProjectStatus }),
		mapped("funding_needed", "fundingNeeded", func(s *catalog.Submission) *float64 { return &s.FundingNeeded }),
		mapped("uia_region", "uiaRegion", func(s *catalog.Submission) *catalog.Region { return &s.Region }),
		mapped("city", "city", func(s *catalog.Submission) *string { return &s.City }),
		mapped("country", "country", func(s *catalog.Submission) *string { return &s.Country }),
		optionalLocation(func(s *catalog.Submission) **catalog.Location { return &s.Location }),
		mapped("brief_description", "briefDescription", func(s *catalog.Submission) *string { return &s.BriefDescription }),
		mapped("detailed_description", "detailedDescription", func(s *catalog.Submission) *string { return &s.DetailedDescription }),
		mapped("success_factors", "successFactors", func(s *catalog.Submission) *string { return &s.SuccessFactors }),
		stringList("typologies", "typologies", func(s *catalog.Submission) *[]string { return &s.Typologies }),
		stringList("funding_requirements", "fundingRequirements", func(s *catalog.Submission) *[]string { return &s.FundingRequirements }),
		stringList("government_requirements", "governmentRequirements", func(s *catalog.Submission) *[]string { return &s.GovernmentRequirements }),
		stringList("other_requirements", "otherRequirements", func(s *catalog.Submission) *[]string { return &s.OtherRequirements }),
		mapped("other_requirement_text", "otherRequirementText", func(s *catalog.Submission) *string { return &s.OtherRequirementText }),
		intList("sdgs", "sdgs", func(s *catalog.Submission) *[]int { return &s.SDGs }),
		stringList("image_urls", "imageUrls", func(s *catalog.Submission) *[]string { return &s.ImageURLs }),
		mapped("gdpr_consent", "gdprConsent", func(s *catalog.Submission) *bool { return &s.GDPRConsent }),
		optionalString("captcha_token", "captchaToken", func(s *catalog.Submission) *string { return &s.CaptchaToken }),
	},
}

var patchSchema = &schema[catalog.ProjectPatch]{
	entity: "project patch",
	fields: []field[catalog.ProjectPatch]{
		optional("project_name", "projectName", func(p *catalog.ProjectPatch) **string { return &p.ProjectName }),
		optional("organization_name", "organizationName", func(p *catalog.ProjectPatch) **string { return &p.OrganizationName }),
		optional("contact_person", "contactPerson", func(p *catalog.ProjectPatch) **string { return &p.ContactPerson }),
		optional("contact_email", "contactEmail", func(p *catalog.ProjectPatch) **string { return &p.ContactEmail }),
		optional("project_status", "projectStatus", func(p *catalog.ProjectPatch) **catalog.ProjectStatus { return &p.ProjectStatus }),
		optional("workflow_status", "workflowStatus", func(p *catalog.ProjectPatch) **catalog.WorkflowStatus { return &p.WorkflowStatus }),
		optional("funding_needed", "fundingNeeded", func(p *catalog.ProjectPatch) **float64 { return &p.FundingNeeded }),
		optional("funding_spent", "fundingSpent", func(p *catalog.ProjectPatch) **float64 { return &p.FundingSpent }),
		optional("uia_region", "uiaRegion", func(p *catalog.ProjectPatch) **catalog.Region { return &p.Region }),
		optional("city", "city", func(p *catalog.ProjectPatch) **string { return &p.City }),
		optional("country", "country", func(p *catalog.ProjectPatch) **string { return &p.Country }),
		patchLocation(func(p *catalog.ProjectPatch) **catalog.Location { return &p.Location }),
		optional("brief_description", "briefDescription", func(p *catalog.ProjectPatch) **string { return &p.BriefDescription }),
		optional("detailed_description", "detailedDescription", func(p *catalog.ProjectPatch) **string { return &p.DetailedDescription }),
		optional("success_factors", "successFactors", func(p *catalog.ProjectPatch) **string { return &p.SuccessFactors }),
		list("typologies", "typologies", func(p *catalog.ProjectPatch) *[]string { return &p.Typologies }),
		list("funding_requirements", "fundingRequirements", func(p *catalog.ProjectPatch) *[]string { return &p.FundingRequirements }),
		list("government_requirements", "governmentRequirements", func(p *catalog.ProjectPatch) *[]string { return &p.GovernmentRequirements }),
		list("other_requirements", "otherRequirements", func(p *catalog.ProjectPatch) *[]string { return &p.OtherRequirements }),
		optional("other_requirement_text", "otherRequirementText", func(p *catalog.ProjectPatch) **string { return &p.OtherRequirementText }),
		list("sdgs", "sdgs", func(p *catalog.ProjectPatch) *[]int { return &p.SDGs }),
		list("image_urls", "imageUrls", func(p *catalog.ProjectPatch) *[]string { return &p.ImageURLs }),
		optional("rejection_reason", "rejectionReason", func(p *catalog.ProjectPatch) **string { return &p.RejectionReason }),
		optional("reviewer_notes", "reviewerNotes", func(p *catalog.ProjectPatch) **string { return &p.ReviewerNotes }),
	},
}

var pageSchema = &schema[catalog.ProjectPage]{
	entity: "project page",
	fields: []field[catalog.ProjectPage]{
		mapped("total", "total", func(p *catalog.ProjectPage) *int { return &p.Total }),
		mapped("page", "page", func(p *catalog.ProjectPage) *int { return &p.Page }),
		mapped("page_size", "pageSize", func(p *catalog.ProjectPage) *int { return &p.PageSize }),
		nestedList("projects", "projects", projectSchema, func(p *catalog.ProjectPage) *[]catalog.Project { return &p.Projects }),
	},
	extra: func(p *catalog.ProjectPage) *map[string]json.RawMessage { return &p.Extra },
}

var kpiSchema = &schema[catalog.KPIs]{
	entity: "kpis",
	fields: []field[catalog.KPIs]{
		mapped("total_projects", "totalProjects", func(k *catalog.KPIs) *int { return &k.TotalProjects }),
		mapped("cities_engaged", "citiesEngaged", func(k *catalog.KPIs) *int { return &k.CitiesEngaged }),
		mapped("countries_represented", "countriesRepresented", func(k *catalog.KPIs) *int { return &k.CountriesRepresented }),
		mapped("total_funding_needed", "totalFundingNeeded", func(k *catalog.KPIs) *float64 { return &k.TotalFundingNeeded }),
		mapped("total_funding_spent", "totalFundingSpent", func(k *catalog.KPIs) *float64 { return &k.TotalFundingSpent }),
	},
	extra: func(k *catalog.KPIs) *map[string]json.RawMessage { return &k.Extra },
}

var markerSchema = &schema[catalog.MapMarker]{
	entity: "map marker",
	fields: []field[catalog.MapMarker]{
		mapped("id", "id", func(m *catalog.MapMarker) *string { return &m.ID }),
		mapped("project_name", "projectName", func(m *catalog.MapMarker) *string { return &m.ProjectName }),
		mapped("city", "city", func(m *catalog.MapMarker) *string { return &m.City }),
		mapped("country", "country", func(m *catalog.MapMarker) *string { return &m.Country }),
		location(func(m *catalog.MapMarker) *catalog.Location { return &m.Location }),
		mapped("region", "region", func(m *catalog.MapMarker) *catalog.Region { return &m.Region }),
		mapped("status", "status", func(m *catalog.MapMarker) *catalog.ProjectStatus { return &m.Status }),
		optionalString("image_url", "imageUrl", func(m *catalog.MapMarker) *string { return &m.ImageURL }),
	},
	extra: func(m *catalog.MapMarker) *map[string]json.RawMessage { return &m.Extra },
}

var sdgCountSchema = &schema[catalog.SDGCount]{
	entity: "sdg distribution",
	fields: []field[catalog.SDGCount]{
		mapped("sdg", "sdg", func(c *catalog.SDGCount) *int { return &c.SDG }),
		mapped("count", "count", func(c *catalog.SDGCount) *int { return &c.Count }),
	},
	extra: func(c *catalog.SDGCount) *map[string]json.RawMessage { return &c.Extra },
}

var regionCountSchema = &schema[catalog.RegionCount]{
	entity: "regional distribution",
	fields: []field[catalog.RegionCount]{
		mapped("region", "region", func(c *catalog.RegionCount) *catalog.Region { return &c.Region }),
		mapped("project_count", "projectCount", func(c *catalog.RegionCount) *int { return &c.ProjectCount }),
		mapped("funding_needed", "fundingNeeded", func(c *catalog.RegionCount) *float64 { return &c.FundingNeeded }),
	},
	extra: func(c *catalog.RegionCount) *map[string]json.RawMessage { return &c.Extra },
}

var typologyCountSchema = &schema[catalog.TypologyCount]{
	entity: "typology distribution",
	fields: []field[catalog.TypologyCount]{
		mapped("typology", "typology", func(c *catalog.TypologyCount) *string { return &c.Typology }),
		mapped("count", "count", func(c *catalog.TypologyCount) *int { return &c.Count }),
	},
	extra: func(c *catalog.TypologyCount) *map[string]json.RawMessage { return &c.Extra },
}

var filterOptionsSchema = &schema[catalog.FilterOptions]{
	entity: "filter options",
	fields: []field[catalog.FilterOptions]{
		mapped("cities", "cities", func(o *catalog.FilterOptions) *[]string { return &o.Cities }),
		mapped("funding_sources", "fundingSources", func(o *catalog.FilterOptions) *[]string { return &o.FundingSources }),
	},
	extra: func(o *catalog.FilterOptions) *map[string]json.RawMessage { return &o.Extra },
}

var userSchema = &schema[catalog.User]{
	entity: "user",
	fields: []field[catalog.User]{
		mapped("id", "id", func(u *catalog.User) *string { return &u.ID }),
		mapped("email", "email", func(u *catalog.User) *string { return &u.Email }),
		mapped("role", "role", func(u *catalog.User) *catalog.Role { return &u.Role }),
		mapped("created_at", "createdAt", func(u *catalog.User) *time.Time { return &u.CreatedAt }),
	},
	extra: func(u *catalog.User) *map[string]json.RawMessage { return &u.Extra },
}

var credentialsSchema = &schema[catalog.Credentials]{
	entity: "credentials",
	fields: []field[catalog.Credentials]{
		mapped("access_token", "accessToken", func(c *catalog.Credentials) *string { return &c.AccessToken }),
		mapped("token_type", "tokenType", func(c *catalog.Credentials) *string { return &c.TokenType }),
		nested("user", "user", userSchema, func(c *catalog.Credentials) *catalog.User { return &c.User }),
	},
	extra: func(c *catalog.Credentials) *map[string]json.RawMessage { return &c.Extra },
}

var reviewEventSchema = &schema[catalog.ReviewEvent]{
	entity: "review event",
	fields: []field[catalog.ReviewEvent]{
		mapped("id", "id", func(e *catalog.ReviewEvent) *string { return &e.ID }),
		mapped("project_id", "projectId", func(e *catalog.ReviewEvent) *string { return &e.ProjectID }),
		mapped("action", "action", func(e *catalog.ReviewEvent) *string { return &e.Action }),
		mapped("from_status", "fromStatus", func(e *catalog.ReviewEvent) *catalog.WorkflowStatus { return &e.From }),
		mapped("to_status", "toStatus", func(e *catalog.ReviewEvent) *catalog.WorkflowStatus { return &e.To }),
		mapped("actor", "actor", func(e *catalog.ReviewEvent) *string { return &e.Actor }),
		mapped("note", "note", func(e *catalog.ReviewEvent) *string { return &e.Note }),
		mapped("changes", "changes", func(e *catalog.ReviewEvent) *map[string]json.RawMessage { return &e.Changes }),
		mapped("created_at", "createdAt", func(e *catalog.ReviewEvent) *time.Time { return &e.CreatedAt }),
	},
	extra: func(e *catalog.ReviewEvent) *map[string]json.RawMessage { return &e.Extra },
}

// optionalString omits an empty string on the way out.
func optionalString[T any](wire, canonical string, ref func(*T) *string) field[T] {
	f := mapped(wire, canonical, ref)
	f.encode = func(t *T, out map[string]any) {
		if v := *ref(t); v != "" {
			out[wire] = v
		}
	}
	return f
}

// stringList and intList always send an array, never null.
func stringList[T any](wire, canonical string, ref func(*T) *[]string) field[T] {
	f := mapped(wire, canonical, ref)
	f.encode = func(t *T, out map[string]any) {
		v := *ref(t)
		if v == nil {
			v = []string{}
		}
		out[wire] = v
	}
	return f
}

func intList[T any](wire, canonical string, ref func(*T) *[]int) field[T] {
	f := mapped(wire, canonical, ref)
	f.encode = func(t *T, out map[string]any) {
		v := *ref(t)
		if v == nil {
			v = []int{}
		}
		out[wire] = v
	}
	return f
}
