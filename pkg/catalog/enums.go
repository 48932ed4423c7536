package catalog

// Region is one of the five UIA geographic sections.
type Region string

const (
	RegionWesternEurope  Region = "Section I - Western Europe"
	RegionEasternEurope  Region = "Section II - Eastern Europe & Central Asia"
	RegionMiddleEastAfri Region = "Section III - Middle East & Africa"
	RegionAsiaPacific    Region = "Section IV - Asia & Pacific"
	RegionAmericas       Region = "Section V - Americas"
)

// Regions lists the sections in display order.
var Regions = []Region{
	RegionWesternEurope,
	RegionEasternEurope,
	RegionMiddleEastAfri,
	RegionAsiaPacific,
	RegionAmericas,
}

func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

// ProjectStatus is the self-reported delivery stage of a project.
type ProjectStatus string

const (
	ProjectPlanned     ProjectStatus = "Planned"
	ProjectInProgress  ProjectStatus = "In Progress"
	ProjectImplemented ProjectStatus = "Implemented"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanned, ProjectInProgress, ProjectImplemented}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectInProgress, ProjectImplemented:
		return true
	}
	return false
}

// WorkflowStatus is the review lifecycle state of a submission.
type WorkflowStatus string

const (
	StatusSubmitted        WorkflowStatus = "submitted"
	StatusInReview         WorkflowStatus = "in_review"
	StatusApproved         WorkflowStatus = "approved"
	StatusRejected         WorkflowStatus = "rejected"
	StatusChangesRequested WorkflowStatus = "changes_requested"
)

var WorkflowStatuses = []WorkflowStatus{
	StatusSubmitted,
	StatusInReview,
	StatusApproved,
	StatusRejected,
	StatusChangesRequested,
}

func (s WorkflowStatus) Valid() bool {
	for _, known := range WorkflowStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Pending reports whether the status still waits on a reviewer.
func (s WorkflowStatus) Pending() bool {
	return s == StatusSubmitted || s == StatusInReview
}

// Typologies offered on the submission form. The catalog accepts other values.
var Typologies = []string{
	"Affordable Housing",
	"Urban Regeneration",
	"Public Spaces",
	"Educational Facilities",
	"Healthcare Infrastructure",
	"Cultural Centers",
	"Green Infrastructure",
	"Transportation Hubs",
	"Heritage Conservation",
	"Disaster Resilience",
}

var FundingRequirements = []string{
	"Seed Funding",
	"Grant",
	"Loan",
	"Equity Investment",
	"Crowdfunding",
}

var GovernmentRequirements = []string{
	"Policy Support",
	"Land Allocation",
	"Permits & Zoning",
	"Tax Incentives",
	"Public-Private Partnership",
}

var OtherRequirements = []string{
	"Technical Expertise",
	"Community Volunteers",
	"Material Donations",
	"Media Coverage",
}

// Role of an authenticated back-office user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleManager  Role = "manager"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleReviewer || r == RoleManager
}
