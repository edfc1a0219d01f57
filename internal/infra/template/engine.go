package template

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"crimewatch/internal/domain/mailer"
)

var _ mailer.Renderer = (*Engine)(nil)

// templateMeta holds the subject template source and fragment name for each
// event kind.
type templateMeta struct {
	Subject      string
	TemplateName string
}

// registry maps event kinds to their metadata. Subjects are text templates
// executed against the same view the fragment receives.
var registry = map[mailer.EventKind]templateMeta{
	mailer.EventBlogPublished:         {Subject: "New Blog Post: {{.Title}}", TemplateName: "blog_notification"},
	mailer.EventCaseUpdate:            {Subject: "Case Update: {{.TrackingID}}", TemplateName: "case_update"},
	mailer.EventOfficerAssignment:     {Subject: "New Case Assignment: {{.TrackingID}}", TemplateName: "officer_assignment"},
	mailer.EventOCSNotify:             {Subject: "Case Assignment Notification: {{.TrackingID}}", TemplateName: "ocs_notification"},
	mailer.EventSubscriptionConfirmed: {Subject: "Welcome to Crime Report Kenya Newsletter", TemplateName: "subscription_confirmation"},
	mailer.EventContactForm:           {Subject: "New Contact Form Submission", TemplateName: "contact_form"},
	mailer.EventAdminAlert:            {Subject: "ALERT: {{.Type}}", TemplateName: "admin_alert"},
	mailer.EventAssignmentReport:      {Subject: "{{if .Urgent}}[URGENT] {{end}}New Case Assignment - Crime Report", TemplateName: "assignment_report"},
}

const layoutName = "layout.html"

// layoutData is what the shared page shell receives: the event fragment plus
// footer fields.
type layoutData struct {
	Content htmltemplate.HTML
	Year    int
}

// Engine renders notification emails: each event fragment is rendered with
// html/template and wrapped in the shared page shell for consistent
// header/footer/branding.
type Engine struct {
	templates *htmltemplate.Template
	subjects  map[mailer.EventKind]*texttemplate.Template
}

// NewEngine creates a new template engine by loading all templates from the
// given directory.
func NewEngine(templatesDir string) (*Engine, error) {
	tmpl, err := htmltemplate.ParseGlob(templatesDir + "/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates from %s: %w", templatesDir, err)
	}

	subjects := make(map[mailer.EventKind]*texttemplate.Template, len(registry))
	for kind, meta := range registry {
		st, err := texttemplate.New(string(kind)).Parse(meta.Subject)
		if err != nil {
			return nil, fmt.Errorf("parsing subject for %s: %w", kind, err)
		}
		subjects[kind] = st
	}

	return &Engine{templates: tmpl, subjects: subjects}, nil
}

// Render produces a subject line and a full HTML document for the given
// event kind. Rendering is pure string templating with no external
// dependency.
func (e *Engine) Render(kind mailer.EventKind, data any) (subject, html string, err error) {
	meta, ok := registry[kind]
	if !ok {
		return "", "", fmt.Errorf("no template registered for event: %s", kind)
	}

	var subjBuf bytes.Buffer
	if err := e.subjects[kind].Execute(&subjBuf, data); err != nil {
		return "", "", fmt.Errorf("executing subject for %s: %w", kind, err)
	}

	var fragBuf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&fragBuf, meta.TemplateName+".html", data); err != nil {
		return "", "", fmt.Errorf("executing template %s: %w", meta.TemplateName, err)
	}

	var docBuf bytes.Buffer
	err = e.templates.ExecuteTemplate(&docBuf, layoutName, layoutData{
		Content: htmltemplate.HTML(fragBuf.String()),
		Year:    time.Now().Year(),
	})
	if err != nil {
		return "", "", fmt.Errorf("executing layout: %w", err)
	}

	return subjBuf.String(), docBuf.String(), nil
}
