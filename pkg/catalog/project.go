package catalog

import (
	"encoding/json"
	"time"
)

// Location is a WGS84 point. A project either has one or has none; the pair
// never exists half-set.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// NewLocation builds a location from two optional coordinates. It returns nil
// unless both are present.
func NewLocation(lat, lng *float64) *Location {
	if lat == nil || lng == nil {
		return nil
	}
	return &Location{Lat: *lat, Lng: *lng}
}

// Project is the canonical representation of a catalog entry.
type Project struct {
	ID                     string         `json:"id"`
	ProjectName            string         `json:"projectName"`
	OrganizationName       string         `json:"organizationName"`
	ContactPerson          string         `json:"contactPerson"`
	ContactEmail           string         `json:"contactEmail"`
	ProjectStatus          ProjectStatus  `json:"projectStatus"`
	WorkflowStatus         WorkflowStatus `json:"workflowStatus"`
	FundingNeeded          float64        `json:"fundingNeeded"`
	FundingSpent           float64        `json:"fundingSpent"`
	Region                 Region         `json:"uiaRegion"`
	City                   string         `json:"city"`
	Country                string         `json:"country"`
	Location               *Location      `json:"location,omitempty"`
	BriefDescription       string         `json:"briefDescription"`
	DetailedDescription    string         `json:"detailedDescription"`
	SuccessFactors         string         `json:"successFactors"`
	Typologies             []string       `json:"typologies"`
	FundingRequirements    []string       `json:"fundingRequirements"`
	GovernmentRequirements []string       `json:"governmentRequirements"`
	OtherRequirements      []string       `json:"otherRequirements"`
	OtherRequirementText   string         `json:"otherRequirementText"`
	SDGs                   []int          `json:"sdgs"`
	ImageURLs              []string       `json:"imageUrls"`
	GDPRConsent            bool           `json:"gdprConsent"`
	RejectionReason        string         `json:"rejectionReason"`
	ReviewerNotes          string         `json:"reviewerNotes"`
	EditToken              string         `json:"editToken,omitempty"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`

	// Extra holds wire fields this version does not model, keyed by their
	// wire name, so that a decoded record can be re-encoded without loss.
	Extra map[string]json.RawMessage `json:"-"`
}

// Public reports whether the project is visible on the public dashboard.
func (p *Project) Public() bool {
	return p.WorkflowStatus == StatusApproved
}

// Submission extracts the submitter-owned fields of p.
func (p *Project) Submission() Submission {
	s := Submission{
		ProjectName:            p.ProjectName,
		OrganizationName:       p.OrganizationName,
		ContactPerson:          p.ContactPerson,
		ContactEmail:           p.ContactEmail,
		ProjectStatus:          p.ProjectStatus,
		FundingNeeded:          p.FundingNeeded,
		Region:                 p.Region,
		City:                   p.City,
		Country:                p.Country,
		BriefDescription:       p.BriefDescription,
		DetailedDescription:    p.DetailedDescription,
		SuccessFactors:         p.SuccessFactors,
		Typologies:             cloneStrings(p.Typologies),
		FundingRequirements:    cloneStrings(p.FundingRequirements),
		GovernmentRequirements: cloneStrings(p.GovernmentRequirements),
		OtherRequirements:      cloneStrings(p.OtherRequirements),
		OtherRequirementText:   p.OtherRequirementText,
		SDGs:                   append([]int(nil), p.SDGs...),
		ImageURLs:              cloneStrings(p.ImageURLs),
		GDPRConsent:            p.GDPRConsent,
	}
	if p.Location != nil {
		loc := *p.Location
		s.Location = &loc
	}
	return s
}

// Submission is the payload of the public submission form. It is also used
// by the edit-token flow to resubmit a project.
type Submission struct {
	ProjectName            string        `json:"projectName" yaml:"project_name"`
	OrganizationName       string        `json:"organizationName" yaml:"organization_name"`
	ContactPerson          string        `json:"contactPerson" yaml:"contact_person"`
	ContactEmail           string        `json:"contactEmail" yaml:"contact_email"`
	ProjectStatus          ProjectStatus `json:"projectStatus" yaml:"project_status"`
	FundingNeeded          float64       `json:"fundingNeeded" yaml:"funding_needed"`
	Region                 Region        `json:"uiaRegion" yaml:"uia_region"`
	City                   string        `json:"city" yaml:"city"`
	Country                string        `json:"country" yaml:"country"`
	Location               *Location     `json:"location,omitempty" yaml:"location,omitempty"`
	BriefDescription       string        `json:"briefDescription" yaml:"brief_description"`
	DetailedDescription    string        `json:"detailedDescription" yaml:"detailed_description"`
	SuccessFactors         string        `json:"successFactors" yaml:"success_factors"`
	Typologies             []string      `json:"typologies" yaml:"typologies"`
	FundingRequirements    []string      `json:"fundingRequirements" yaml:"funding_requirements"`
	GovernmentRequirements []string      `json:"governmentRequirements" yaml:"government_requirements"`
	OtherRequirements      []string      `json:"otherRequirements" yaml:"other_requirements"`
	OtherRequirementText   string        `json:"otherRequirementText" yaml:"other_requirement_text"`
	SDGs                   []int         `json:"sdgs" yaml:"sdgs"`
	ImageURLs              []string      `json:"imageUrls" yaml:"image_urls"`
	GDPRConsent            bool          `json:"gdprConsent" yaml:"gdpr_consent"`
	CaptchaToken           string        `json:"captchaToken,omitempty" yaml:"captcha_token,omitempty"`
}

// ProjectPatch is a partial admin edit. Nil fields are left untouched.
type ProjectPatch struct {
	ProjectName            *string         `json:"projectName,omitempty" yaml:"project_name,omitempty"`
	OrganizationName       *string         `json:"organizationName,omitempty" yaml:"organization_name,omitempty"`
	ContactPerson          *string         `json:"contactPerson,omitempty" yaml:"contact_person,omitempty"`
	ContactEmail           *string         `json:"contactEmail,omitempty" yaml:"contact_email,omitempty"`
	ProjectStatus          *ProjectStatus  `json:"projectStatus,omitempty" yaml:"project_status,omitempty"`
	WorkflowStatus         *WorkflowStatus `json:"workflowStatus,omitempty" yaml:"workflow_status,omitempty"`
	FundingNeeded          *float64        `json:"fundingNeeded,omitempty" yaml:"funding_needed,omitempty"`
	FundingSpent           *float64        `json:"fundingSpent,omitempty" yaml:"funding_spent,omitempty"`
	Region                 *Region         `json:"uiaRegion,omitempty" yaml:"uia_region,omitempty"`
	City                   *string         `json:"city,omitempty" yaml:"city,omitempty"`
	Country                *string         `json:"country,omitempty" yaml:"country,omitempty"`
	Location               *Location       `json:"location,omitempty" yaml:"location,omitempty"`
	BriefDescription       *string         `json:"briefDescription,omitempty" yaml:"brief_description,omitempty"`
	DetailedDescription    *string         `json:"detailedDescription,omitempty" yaml:"detailed_description,omitempty"`
	SuccessFactors         *string         `json:"successFactors,omitempty" yaml:"success_factors,omitempty"`
	Typologies             []string        `json:"typologies,omitempty" yaml:"typologies,omitempty"`
	FundingRequirements    []string        `json:"fundingRequirements,omitempty" yaml:"funding_requirements,omitempty"`
	GovernmentRequirements []string        `json:"governmentRequirements,omitempty" yaml:"government_requirements,omitempty"`
	OtherRequirements      []string        `json:"otherRequirements,omitempty" yaml:"other_requirements,omitempty"`
	OtherRequirementText   *string         `json:"otherRequirementText,omitempty" yaml:"other_requirement_text,omitempty"`
	SDGs                   []int           `json:"sdgs,omitempty" yaml:"sdgs,omitempty"`
	ImageURLs              []string        `json:"imageUrls,omitempty" yaml:"image_urls,omitempty"`
	RejectionReason        *string         `json:"rejectionReason,omitempty" yaml:"rejection_reason,omitempty"`
	ReviewerNotes          *string         `json:"reviewerNotes,omitempty" yaml:"reviewer_notes,omitempty"`
}

// ReviewEvent is one entry of a project's review history.
type ReviewEvent struct {
	ID        string                     `json:"id"`
	ProjectID string                     `json:"projectId"`
	Action    string                     `json:"action"`
	From      WorkflowStatus             `json:"fromStatus"`
	To        WorkflowStatus             `json:"toStatus"`
	Actor     string                     `json:"actor"`
	Note      string                     `json:"note"`
	Changes   map[string]json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time                  `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
