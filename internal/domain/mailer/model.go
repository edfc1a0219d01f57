package mailer

// EventKind identifies a notification template.
type EventKind string

const (
	EventBlogPublished         EventKind = "blog_published"
	EventCaseUpdate            EventKind = "case_update"
	EventOfficerAssignment     EventKind = "officer_assignment"
	EventOCSNotify             EventKind = "ocs_notification"
	EventSubscriptionConfirmed EventKind = "subscription_confirmation"
	EventContactForm           EventKind = "contact_form"
	EventAdminAlert            EventKind = "admin_alert"
	EventAssignmentReport      EventKind = "assignment_report"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// ServiceStatus is a live readiness projection of the mail transport.
type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

const (
	StatusReady = "ready"
	StatusError = "error"
)

// FanOutResult summarizes a multi-recipient dispatch. Per-recipient failures
// are settled independently; one bad address never fails the batch.
type FanOutResult struct {
	Sent   int
	Failed int
}

// Blog is the payload for a blog-published notification.
type Blog struct {
	ID             string `json:"id" binding:"required"`
	Title          string `json:"title" binding:"required"`
	Content        string `json:"content"`
	SEODescription string `json:"seoDescription"`
}

// CaseDetails carries the case fields referenced by the assignment and
// status-update templates.
type CaseDetails struct {
	TrackingID   string `json:"trackingId" binding:"required"`
	Status       string `json:"status"`
	StatusNotes  string `json:"statusNotes"`
	Location     string `json:"location"`
	IncidentType string `json:"incidentType"`
	Priority     string `json:"priority"`
	Description  string `json:"description"`
}

// OfficerDetails identifies the officer assigned to a case. Station is the
// officer's station id, used to look up the OCS contact for the secondary
// notification.
type OfficerDetails struct {
	Name        string `json:"name" binding:"required"`
	BadgeNumber string `json:"badgeNumber"`
	Station     string `json:"station"`
}

// ContactForm is a visitor contact-form submission.
type ContactForm struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// AdminAlert is a generic alert fanned out to all configured administrators.
type AdminAlert struct {
	Type    string `json:"type" binding:"required"`
	Message string `json:"message" binding:"required"`
	Link    string `json:"link"`
}

// ReportDetails is the payload of the legacy send-assignment path. Timestamps
// arrive as ISO-8601 strings and are reformatted for display.
type ReportDetails struct {
	Status          string `json:"status"`
	IncidentType    string `json:"incidentType"`
	Location        string `json:"location"`
	County          string `json:"county"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Description     string `json:"description"`
	EvidenceURL     string `json:"evidenceUrl"`
	AdditionalNotes string `json:"additionalNotes"`
	AssignedAt      string `json:"assignedAt"`
	LastUpdated     string `json:"lastUpdated"`
}

// Template view models. Field names are what the HTML fragments reference.

type BlogView struct {
	Title   string
	Excerpt string
	URL     string
}

type CaseUpdateView struct {
	TrackingID string
	Status     string
	UpdatedOn  string
	Notes      string
	TrackURL   string
}

type OfficerAssignmentView struct {
	TrackingID   string
	Location     string
	IncidentType string
	Priority     string
	Description  string
	CaseURL      string
}

type OCSNotifyView struct {
	OfficerName  string
	BadgeNumber  string
	TrackingID   string
	Location     string
	IncidentType string
	Priority     string
	ReviewURL    string
}

type SubscriptionView struct {
	UnsubscribeURL string
}

type ContactFormView struct {
	Name    string
	Email   string
	Message string
}

type AdminAlertView struct {
	Type    string
	Message string
	Time    string
	Link    string
}

type AssignmentReportView struct {
	Urgent          bool
	Status          string
	IncidentType    string
	Location        string
	County          string
	Date            string
	Time            string
	Description     string
	EvidenceURL     string
	AdditionalNotes string
	AssignedAt      string
	LastUpdated     string
}
