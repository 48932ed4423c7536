package notifications

// Kind identifies a notification template.
type Kind string

const (
	KindSubmitted        Kind = "submitted"
	KindApproved         Kind = "approved"
	KindRejected         Kind = "rejected"
	KindChangesRequested Kind = "changes_requested"
	KindDigest           Kind = "digest"
)

// Message is one outgoing e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Links are the frontend URLs embedded in mail.
type Links struct {
	BaseURL string
}

func (l Links) Review(projectID string) string {
	return l.BaseURL + "/admin/projects/" + projectID + "/review"
}

func (l Links) Public(projectID string) string {
	return l.BaseURL + "/?project=" + projectID
}

func (l Links) Edit(token string) string {
	return l.BaseURL + "/submit?token=" + token
}

func (l Links) AdminDashboard() string {
	return l.BaseURL + "/admin/dashboard"
}
