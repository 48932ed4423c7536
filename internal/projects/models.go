package projects

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Project is a catalog entry as stored and served by the API.
type Project struct {
	ID                     uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectName            string                 `gorm:"size:255;not null" json:"project_name"`
	OrganizationName       string                 `gorm:"size:255;not null" json:"organization_name"`
	ContactPerson          string                 `gorm:"size:255;not null" json:"contact_person"`
	ContactEmail           string                 `gorm:"size:255;not null" json:"contact_email"`
	ProjectStatus          catalog.ProjectStatus  `gorm:"size:32;not null" json:"project_status"`
	WorkflowStatus         catalog.WorkflowStatus `gorm:"size:32;not null;default:'submitted';index" json:"workflow_status"`
	FundingNeeded          float64                `gorm:"not null;default:0" json:"funding_needed"`
	FundingSpent           float64                `gorm:"not null;default:0" json:"funding_spent"`
	Region                 catalog.Region         `gorm:"column:uia_region;size:64;not null;index" json:"uia_region"`
	City                   string                 `gorm:"size:255;not null;index" json:"city"`
	Country                string                 `gorm:"size:255;not null" json:"country"`
	Latitude               *float64               `json:"latitude"`
	Longitude              *float64               `json:"longitude"`
	BriefDescription       string                 `gorm:"type:text" json:"brief_description"`
	DetailedDescription    string                 `gorm:"type:text" json:"detailed_description"`
	SuccessFactors         string                 `gorm:"type:text" json:"success_factors"`
	Typologies             pq.StringArray         `gorm:"type:text[]" json:"typologies"`
	FundingRequirements    pq.StringArray         `gorm:"type:text[]" json:"funding_requirements"`
	GovernmentRequirements pq.StringArray         `gorm:"type:text[]" json:"government_requirements"`
	OtherRequirements      pq.StringArray         `gorm:"type:text[]" json:"other_requirements"`
	OtherRequirementText   string                 `gorm:"type:text" json:"other_requirement_text"`
	SDGs                   pq.Int64Array          `gorm:"column:sdgs;type:integer[]" json:"sdgs"`
	ImageURLs              pq.StringArray         `gorm:"column:image_urls;type:text[]" json:"image_urls"`
	GDPRConsent            bool                   `gorm:"column:gdpr_consent;not null;default:false" json:"gdpr_consent"`
	RejectionReason        string                 `gorm:"type:text" json:"rejection_reason"`
	ReviewerNotes          string                 `gorm:"type:text" json:"reviewer_notes"`
	EditToken              string                 `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// Location returns the coordinate pair, nil unless both halves are set.
func (p *Project) Location() *catalog.Location {
	return catalog.NewLocation(p.Latitude, p.Longitude)
}

func (p *Project) setLocation(loc *catalog.Location) {
	if loc == nil {
		p.Latitude, p.Longitude = nil, nil
		return
	}
	lat, lng := loc.Lat, loc.Lng
	p.Latitude, p.Longitude = &lat, &lng
}

// HasSDG reports whether the project is tagged with goal n.
func (p *Project) HasSDG(n int) bool {
	for _, s := range p.SDGs {
		if int(s) == n {
			return true
		}
	}
	return false
}

// CoverImage is the first image, or "".
func (p *Project) CoverImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// WithToken is the response shape for the submitter: the project plus the
// edit token that is otherwise never serialized.
type WithToken struct {
	*Project
	EditToken string `json:"edit_token"`
}

// ReviewEvent records a transition or an admin edit.
type ReviewEvent struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID              `gorm:"type:uuid;not null;index" json:"project_id"`
	Action    string                 `gorm:"size:32;not null" json:"action"`
	From      catalog.WorkflowStatus `gorm:"column:from_status;size:32" json:"from_status"`
	To        catalog.WorkflowStatus `gorm:"column:to_status;size:32" json:"to_status"`
	Actor     string                 `gorm:"size:255" json:"actor"`
	Note      string                 `gorm:"type:text" json:"note"`
	Changes   datatypes.JSON         `gorm:"type:jsonb" json:"changes,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Event actions that are not workflow transitions.
const (
	EventSubmitted = "submitted"
	EventEdited    = "edited"
)

func changesJSON(changes map[string]any) datatypes.JSON {
	if len(changes) == 0 {
		return nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// Requests

// SubmitRequest is the public submission body. It also serves the edit-token
// resubmission.
type SubmitRequest struct {
	ProjectName            string                `json:"project_name"`
	OrganizationName       string                `json:"organization_name"`
	ContactPerson          string                `json:"contact_person"`
	ContactEmail           string                `json:"contact_email"`
	ProjectStatus          catalog.ProjectStatus `json:"project_status"`
	FundingNeeded          float64               `json:"funding_needed"`
	Region                 catalog.Region        `json:"uia_region"`
	City                   string                `json:"city"`
	Country                string                `json:"country"`
	Latitude               *float64              `json:"latitude"`
	Longitude              *float64              `json:"longitude"`
	BriefDescription       string                `json:"brief_description"`
	DetailedDescription    string                `json:"detailed_description"`
	SuccessFactors         string                `json:"success_factors"`
	Typologies             []string              `json:"typologies"`
	FundingRequirements    []string              `json:"funding_requirements"`
	GovernmentRequirements []string              `json:"government_requirements"`
	OtherRequirements      []string              `json:"other_requirements"`
	OtherRequirementText   string                `json:"other_requirement_text"`
	SDGs                   []int                 `json:"sdgs"`
	ImageURLs              []string              `json:"image_urls"`
	GDPRConsent            bool                  `json:"gdpr_consent"`
	CaptchaToken           string                `json:"captcha_token"`
}

func (r *SubmitRequest) submission() catalog.Submission {
	return catalog.Submission{
		ProjectName:            r.ProjectName,
		OrganizationName:       r.OrganizationName,
		ContactPerson:          r.ContactPerson,
		ContactEmail:           r.ContactEmail,
		ProjectStatus:          r.ProjectStatus,
		FundingNeeded:          r.FundingNeeded,
		Region:                 r.Region,
		City:                   r.City,
		Country:                r.Country,
		Location:               catalog.NewLocation(r.Latitude, r.Longitude),
		BriefDescription:       r.BriefDescription,
		DetailedDescription:    r.DetailedDescription,
		SuccessFactors:         r.SuccessFactors,
		Typologies:             r.Typologies,
		FundingRequirements:    r.FundingRequirements,
		GovernmentRequirements: r.GovernmentRequirements,
		OtherRequirements:      r.OtherRequirements,
		OtherRequirementText:   r.OtherRequirementText,
		SDGs:                   r.SDGs,
		ImageURLs:              r.ImageURLs,
		GDPRConsent:            r.GDPRConsent,
		CaptchaToken:           r.CaptchaToken,
	}
}

// validate applies the shared submission rules plus the pair rule for
// coordinates, which the canonical form cannot express.
func (r *SubmitRequest) validate() error {
	s := r.submission()
	err := s.Validate()
	if (r.Latitude == nil) != (r.Longitude == nil) {
		verrs, _ := err.(catalog.ValidationErrors)
		if verrs == nil {
			verrs = catalog.ValidationErrors{}
		}
		verrs["location"] = "latitude and longitude must be given together"
		return verrs
	}
	return err
}

// apply copies submitter-owned fields onto p.
func (r *SubmitRequest) apply(p *Project) {
	p.ProjectName = r.ProjectName
	p.OrganizationName = r.OrganizationName
	p.ContactPerson = r.ContactPerson
	p.ContactEmail = r.ContactEmail
	p.ProjectStatus = r.ProjectStatus
	p.FundingNeeded = r.FundingNeeded
	p.Region = r.Region
	p.City = r.City
	p.Country = r.Country
	p.setLocation(catalog.NewLocation(r.Latitude, r.Longitude))
	p.BriefDescription = r.BriefDescription
	p.DetailedDescription = r.DetailedDescription
	p.SuccessFactors = r.SuccessFactors
	p.Typologies = stringArray(r.Typologies)
	p.FundingRequirements = stringArray(r.FundingRequirements)
	p.GovernmentRequirements = stringArray(r.GovernmentRequirements)
	p.OtherRequirements = stringArray(r.OtherRequirements)
	p.OtherRequirementText = r.OtherRequirementText
	p.SDGs = intArray(r.SDGs)
	p.ImageURLs = stringArray(r.ImageURLs)
	p.GDPRConsent = r.GDPRConsent
}

// UpdateRequest is an admin PATCH. Nil fields are left alone.
type UpdateRequest struct {
	ProjectName            *string                 `json:"project_name"`
	OrganizationName       *string                 `json:"organization_name"`
	ContactPerson          *string                 `json:"contact_person"`
	ContactEmail           *string                 `json:"contact_email"`
	ProjectStatus          *catalog.ProjectStatus  `json:"project_status"`
	WorkflowStatus         *catalog.WorkflowStatus `json:"workflow_status"`
	FundingNeeded          *float64                `json:"funding_needed"`
	FundingSpent           *float64                `json:"funding_spent"`
	Region                 *catalog.Region         `json:"uia_region"`
	City                   *string                 `json:"city"`
	Country                *string                 `json:"country"`
	Latitude               *float64                `json:"latitude"`
	Longitude              *float64                `json:"longitude"`
	BriefDescription       *string                 `json:"brief_description"`
	DetailedDescription    *string                 `json:"detailed_description"`
	SuccessFactors         *string                 `json:"success_factors"`
	Typologies             []string                `json:"typologies"`
	FundingRequirements    []string                `json:"funding_requirements"`
	GovernmentRequirements []string                `json:"government_requirements"`
	OtherRequirements      []string                `json:"other_requirements"`
	OtherRequirementText   *string                 `json:"other_requirement_text"`
	SDGs                   []int                   `json:"sdgs"`
	ImageURLs              []string                `json:"image_urls"`
	RejectionReason        *string                 `json:"rejection_reason"`
	ReviewerNotes          *string                 `json:"reviewer_notes"`
}

func (r *UpdateRequest) patch() catalog.ProjectPatch {
	return catalog.ProjectPatch{
		ProjectName:            r.ProjectName,
		OrganizationName:       r.OrganizationName,
		ContactPerson:          r.ContactPerson,
		ContactEmail:           r.ContactEmail,
		ProjectStatus:          r.ProjectStatus,
		WorkflowStatus:         r.WorkflowStatus,
		FundingNeeded:          r.FundingNeeded,
		FundingSpent:           r.FundingSpent,
		Region:                 r.Region,
		City:                   r.City,
		Country:                r.Country,
		Location:               catalog.NewLocation(r.Latitude, r.Longitude),
		BriefDescription:       r.BriefDescription,
		DetailedDescription:    r.DetailedDescription,
		SuccessFactors:         r.SuccessFactors,
		Typologies:             r.Typologies,
		FundingRequirements:    r.FundingRequirements,
		GovernmentRequirements: r.GovernmentRequirements,
		OtherRequirements:      r.OtherRequirements,
		OtherRequirementText:   r.OtherRequirementText,
		SDGs:                   r.SDGs,
		ImageURLs:              r.ImageURLs,
		RejectionReason:        r.RejectionReason,
		ReviewerNotes:          r.ReviewerNotes,
	}
}

// applyPatch writes the set fields of patch onto p and returns the old
// values of the fields that changed, keyed by wire name. Workflow status is
// handled by the caller.
func applyPatch(p *Project, patch catalog.ProjectPatch) map[string]any {
	changes := map[string]any{}
	setString := func(key string, dst *string, v *string) {
		if v != nil && *dst != *v {
			changes[key] = *dst
			*dst = *v
		}
	}
	setFloat := func(key string, dst *float64, v *float64) {
		if v != nil && *dst != *v {
			changes[key] = *dst
			*dst = *v
		}
	}
	setList := func(key string, dst *pq.StringArray, v []string) {
		if v != nil && !equalStrings(*dst, v) {
			changes[key] = []string(*dst)
			*dst = stringArray(v)
		}
	}

	setString("project_name", &p.ProjectName, patch.ProjectName)
	setString("organization_name", &p.OrganizationName, patch.OrganizationName)
	setString("contact_person", &p.ContactPerson, patch.ContactPerson)
	setString("contact_email", &p.ContactEmail, patch.ContactEmail)
	if patch.ProjectStatus != nil && p.ProjectStatus != *patch.ProjectStatus {
		changes["project_status"] = p.ProjectStatus
		p.ProjectStatus = *patch.ProjectStatus
	}
	setFloat("funding_needed", &p.FundingNeeded, patch.FundingNeeded)
	setFloat("funding_spent", &p.FundingSpent, patch.FundingSpent)
	if patch.Region != nil && p.Region != *patch.Region {
		changes["uia_region"] = p.Region
		p.Region = *patch.Region
	}
	setString("city", &p.City, patch.City)
	setString("country", &p.Country, patch.Country)
	if patch.Location != nil {
		old := p.Location()
		if old == nil || *old != *patch.Location {
			changes["location"] = old
			p.setLocation(patch.Location)
		}
	}
	setString("brief_description", &p.BriefDescription, patch.BriefDescription)
	setString("detailed_description", &p.DetailedDescription, patch.DetailedDescription)
	setString("success_factors", &p.SuccessFactors, patch.SuccessFactors)
	setList("typologies", &p.Typologies, patch.Typologies)
	setList("funding_requirements", &p.FundingRequirements, patch.FundingRequirements)
	setList("government_requirements", &p.GovernmentRequirements, patch.GovernmentRequirements)
	setList("other_requirements", &p.OtherRequirements, patch.OtherRequirements)
	setString("other_requirement_text", &p.OtherRequirementText, patch.OtherRequirementText)
	if patch.SDGs != nil && !equalInts(p.SDGs, patch.SDGs) {
		changes["sdgs"] = []int64(p.SDGs)
		p.SDGs = intArray(patch.SDGs)
	}
	setList("image_urls", &p.ImageURLs, patch.ImageURLs)
	setString("rejection_reason", &p.RejectionReason, patch.RejectionReason)
	setString("reviewer_notes", &p.ReviewerNotes, patch.ReviewerNotes)

	return changes
}

func stringArray(in []string) pq.StringArray {
	if in == nil {
		return pq.StringArray{}
	}
	return append(pq.StringArray{}, in...)
}

func intArray(in []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(in))
	for _, n := range in {
		out = append(out, int64(n))
	}
	return out
}

func equalStrings(a pq.StringArray, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a pq.Int64Array, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != int64(b[i]) {
			return false
		}
	}
	return true
}
