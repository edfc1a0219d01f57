package template

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"crimewatch/internal/domain/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("templates")
	require.NoError(t, err)
	return e
}

func TestRenderWrapsFragmentInPageShell(t *testing.T) {
	e := newTestEngine(t)

	_, html, err := e.Render(mailer.EventCaseUpdate, mailer.CaseUpdateView{
		TrackingID: "CR-1042",
		Status:     "resolved",
		UpdatedOn:  "June 1, 2024",
		Notes:      "Case closed after arrest",
		TrackURL:   "https://crimewatch.example.com/track-report",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Crime Report Kenya")
	assert.Contains(t, html, "CR-1042")
	assert.Contains(t, html, strconv.Itoa(time.Now().Year()))
	assert.Contains(t, html, "All rights reserved")
}

func TestRenderSubscriptionConfirmation(t *testing.T) {
	e := newTestEngine(t)

	subject, html, err := e.Render(mailer.EventSubscriptionConfirmed, mailer.SubscriptionView{
		UnsubscribeURL: "https://crimewatch.example.com/unsubscribe?email=a%40b.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Crime Report Kenya Newsletter", subject)
	assert.Contains(t, html, "Thank you for subscribing!")
	assert.Contains(t, html, "a%40b.com")
}

func TestRenderBlogSubjectIncludesTitle(t *testing.T) {
	e := newTestEngine(t)

	subject, html, err := e.Render(mailer.EventBlogPublished, mailer.BlogView{
		Title:   "Staying Safe After Dark",
		Excerpt: "Practical tips for the evening commute.",
		URL:     "https://crimewatch.example.com/blog/b1",
	})
	require.NoError(t, err)

	assert.Equal(t, "New Blog Post: Staying Safe After Dark", subject)
	assert.Contains(t, html, "Read More")
	assert.Contains(t, html, "https://crimewatch.example.com/blog/b1")
}

func TestRenderAssignmentReportUrgentSubject(t *testing.T) {
	e := newTestEngine(t)

	view := mailer.AssignmentReportView{Urgent: true, Status: "URGENT", IncidentType: "Assault"}
	subject, _, err := e.Render(mailer.EventAssignmentReport, view)
	require.NoError(t, err)
	assert.Equal(t, "[URGENT] New Case Assignment - Crime Report", subject)

	view.Urgent = false
	subject, _, err = e.Render(mailer.EventAssignmentReport, view)
	require.NoError(t, err)
	assert.Equal(t, "New Case Assignment - Crime Report", subject)
}

func TestRenderAssignmentReportOptionalSections(t *testing.T) {
	e := newTestEngine(t)

	_, html, err := e.Render(mailer.EventAssignmentReport, mailer.AssignmentReportView{
		Status:       "PENDING",
		IncidentType: "Theft",
		Location:     "CBD",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "View Evidence")
	assert.NotContains(t, html, "Additional Notes")

	_, html, err = e.Render(mailer.EventAssignmentReport, mailer.AssignmentReportView{
		Status:          "PENDING",
		IncidentType:    "Theft",
		EvidenceURL:     "https://storage.example.com/e1.jpg",
		AdditionalNotes: "Witness available",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "View Evidence")
	assert.Contains(t, html, "Witness available")
}

func TestRenderAdminAlertLinkIsOptional(t *testing.T) {
	e := newTestEngine(t)

	view := mailer.AdminAlertView{Type: "report_backlog", Message: "30 unassigned reports", Time: "now"}
	subject, html, err := e.Render(mailer.EventAdminAlert, view)
	require.NoError(t, err)
	assert.Equal(t, "ALERT: report_backlog", subject)
	assert.NotContains(t, html, "View Details")

	view.Link = "https://crimewatch.example.com/admin"
	_, html, err = e.Render(mailer.EventAdminAlert, view)
	require.NoError(t, err)
	assert.Contains(t, html, "View Details")
}

func TestRenderEscapesUserContent(t *testing.T) {
	e := newTestEngine(t)

	_, html, err := e.Render(mailer.EventContactForm, mailer.ContactFormView{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderUnknownEventFails(t *testing.T) {
	e := newTestEngine(t)

	_, _, err := e.Render(mailer.EventKind("bogus"), nil)
	require.Error(t, err)
}
