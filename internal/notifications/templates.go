package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// Subjects are plain text; bodies are HTML-escaped.
type mailTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

// TemplateManager renders notification mail.
type TemplateManager struct {
	templates map[Kind]mailTemplate
}

var layouts = map[Kind][2]string{
	KindSubmitted: {
		`New Project Submission: {{.ProjectName}}`,
		`<h2>New Submission</h2>
<p>A new project <strong>{{.ProjectName}}</strong> from {{.City}}, {{.Country}} has been submitted.</p>
<p><a href="{{.Link}}">Review Submission</a></p>`,
	},
	KindApproved: {
		`Your project {{.ProjectName}} has been published!`,
		`<h2>Congratulations!</h2>
<p>Your project <strong>{{.ProjectName}}</strong> has been approved and published on the UIA SDG Atlas.</p>
<p><a href="{{.Link}}">View Project</a></p>`,
	},
	KindRejected: {
		`Update on your submission for {{.ProjectName}}`,
		`<h2>Project Submission Update</h2>
<p>Thank you for submitting <strong>{{.ProjectName}}</strong> to the UIA SDG Atlas.</p>
<p>After careful review, we are unable to publish your project at this time.</p>
<p><strong>Reason:</strong> {{.Note}}</p>`,
	},
	KindChangesRequested: {
		`Action Required: Update your submission for {{.ProjectName}}`,
		`<h2>Updates Requested for {{.ProjectName}}</h2>
<p>Our review team has requested some changes before we can publish your project.</p>
<blockquote>{{.Note}}</blockquote>
<p>Use this link to edit and resubmit your project: <a href="{{.Link}}">Edit Project</a></p>
<p><small>{{.Link}}</small></p>`,
	},
	KindDigest: {
		`{{len .Pending}} project(s) waiting for review`,
		`<h2>Pending review</h2>
<ul>
{{range .Pending}}<li><a href="{{.Link}}">{{.ProjectName}}</a> ({{.City}}, {{.Status}}, submitted {{.SubmittedAt.Format "2006-01-02"}})</li>
{{end}}</ul>
<p><a href="{{.Link}}">Open the admin dashboard</a></p>`,
	},
}

func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[Kind]mailTemplate, len(layouts))}
	for kind, layout := range layouts {
		subject, err := texttemplate.New(string(kind) + ".subject").Parse(layout[0])
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", kind, err)
		}
		body, err := template.New(string(kind) + ".body").Parse(layout[1])
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", kind, err)
		}
		tm.templates[kind] = mailTemplate{subject: subject, body: body}
	}
	return tm, nil
}

// Render returns the subject and HTML body for kind.
func (tm *TemplateManager) Render(kind Kind, data any) (string, string, error) {
	t, ok := tm.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %q", kind)
	}
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return subject.String(), body.String(), nil
}
