package catalog

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// ErrInvalid is matched by every ValidationErrors value.
var ErrInvalid = errors.New("validation failed")

// ValidationErrors maps a canonical field name to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

func (v ValidationErrors) add(field, msg string) {
	if _, exists := v[field]; !exists {
		v[field] = msg
	}
}

func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Validate checks a latitude/longitude pair.
func (l Location) Validate() error {
	errs := ValidationErrors{}
	l.check(errs)
	return errs.err()
}

func (l Location) check(errs ValidationErrors) {
	if l.Lat < -90 || l.Lat > 90 {
		errs.add("location.lat", "latitude must be between -90 and 90")
	}
	if l.Lng < -180 || l.Lng > 180 {
		errs.add("location.lng", "longitude must be between -180 and 180")
	}
}

// ValidateSDGs checks that every goal is in range and appears once.
func ValidateSDGs(sdgs []int) error {
	errs := ValidationErrors{}
	checkSDGs(sdgs, errs)
	return errs.err()
}

func checkSDGs(sdgs []int, errs ValidationErrors) {
	seen := make(map[int]bool, len(sdgs))
	for _, n := range sdgs {
		if !ValidSDG(n) {
			errs.add("sdgs", "SDG numbers must be between 1 and 17")
			return
		}
		if seen[n] {
			errs.add("sdgs", fmt.Sprintf("SDG %d listed twice", n))
			return
		}
		seen[n] = true
	}
}

func required(errs ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
	}
}

func checkEmail(errs ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		errs.add(field, "is not a valid e-mail address")
	}
}

// Validate applies the submission form rules.
func (s *Submission) Validate() error {
	errs := ValidationErrors{}

	required(errs, "projectName", s.ProjectName)
	required(errs, "organizationName", s.OrganizationName)
	required(errs, "contactPerson", s.ContactPerson)
	checkEmail(errs, "contactEmail", s.ContactEmail)
	required(errs, "city", s.City)
	required(errs, "country", s.Country)
	required(errs, "briefDescription", s.BriefDescription)

	if !s.ProjectStatus.Valid() {
		errs.add("projectStatus", "must be Planned, In Progress or Implemented")
	}
	if !s.Region.Valid() {
		errs.add("uiaRegion", "unknown UIA region")
	}
	if s.FundingNeeded < 0 {
		errs.add("fundingNeeded", "funding needed cannot be negative")
	}
	if s.Location != nil {
		s.Location.check(errs)
	}
	checkSDGs(s.SDGs, errs)
	if !s.GDPRConsent {
		errs.add("gdprConsent", "GDPR consent is required to submit a project")
	}

	return errs.err()
}

// Validate checks the fields present in the patch.
func (p *ProjectPatch) Validate() error {
	errs := ValidationErrors{}

	if p.ProjectName != nil {
		required(errs, "projectName", *p.ProjectName)
	}
	if p.ContactEmail != nil {
		checkEmail(errs, "contactEmail", *p.ContactEmail)
	}
	if p.ProjectStatus != nil && !p.ProjectStatus.Valid() {
		errs.add("projectStatus", "must be Planned, In Progress or Implemented")
	}
	if p.WorkflowStatus != nil && !p.WorkflowStatus.Valid() {
		errs.add("workflowStatus", "unknown workflow status")
	}
	if p.Region != nil && !p.Region.Valid() {
		errs.add("uiaRegion", "unknown UIA region")
	}
	if p.FundingNeeded != nil && *p.FundingNeeded < 0 {
		errs.add("fundingNeeded", "funding needed cannot be negative")
	}
	if p.FundingSpent != nil && *p.FundingSpent < 0 {
		errs.add("fundingSpent", "funding spent cannot be negative")
	}
	if p.Location != nil {
		p.Location.check(errs)
	}
	if p.SDGs != nil {
		checkSDGs(p.SDGs, errs)
	}

	return errs.err()
}

// Empty reports whether the patch changes nothing.
func (p *ProjectPatch) Empty() bool {
	return p.ProjectName == nil && p.OrganizationName == nil && p.ContactPerson == nil &&
		p.ContactEmail == nil && p.ProjectStatus == nil && p.WorkflowStatus == nil &&
		p.FundingNeeded == nil && p.FundingSpent == nil && p.Region == nil &&
		p.City == nil && p.Country == nil && p.Location == nil &&
		p.BriefDescription == nil && p.DetailedDescription == nil && p.SuccessFactors == nil &&
		p.Typologies == nil && p.FundingRequirements == nil && p.GovernmentRequirements == nil &&
		p.OtherRequirements == nil && p.OtherRequirementText == nil && p.SDGs == nil &&
		p.ImageURLs == nil && p.RejectionReason == nil && p.ReviewerNotes == nil
}
