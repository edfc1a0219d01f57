package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"crimewatch/internal/common"
)

// Options holds the dispatcher's static configuration.
type Options struct {
	// AdminEmail is the single administrator address used as the contact-form
	// target and the OCS fallback.
	AdminEmail string

	// AdminEmails is the fan-out list for admin alerts.
	AdminEmails []string

	// BaseURL is the public front-end URL used to build links in emails.
	BaseURL string

	// SendTimeout bounds each transport call so a stalled SMTP connection
	// cannot accumulate unbounded in-flight sends.
	SendTimeout time.Duration
}

// Service turns domain events into delivered emails. It verifies the
// transport handshake once at construction and fails every send fast while
// the transport is unavailable, instead of incurring per-send timeouts.
//
// Notification delivery is best-effort and at-most-once: the caller's data
// mutation is already committed by the time a send is requested, so a
// delivery failure surfaces as a distinct lower-severity outcome, never as a
// rollback.
type Service struct {
	transport Transport
	renderer  Renderer
	directory Directory
	limiter   RecipientRateLimiter
	opts      Options

	mu    sync.RWMutex
	ready bool
}

// NewService creates the dispatcher and runs the one-time transport
// handshake. A failed handshake does not abort construction; the service
// starts in the unavailable state and ServiceStatus can re-verify later.
func NewService(transport Transport, renderer Renderer, directory Directory, limiter RecipientRateLimiter, opts Options) *Service {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}

	s := &Service{
		transport: transport,
		renderer:  renderer,
		directory: directory,
		limiter:   limiter,
		opts:      opts,
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.SendTimeout)
	defer cancel()

	status := s.verify(ctx)
	if status.Status == StatusReady {
		slog.Info("email service ready")
	} else {
		slog.Error("email service unavailable", "details", status.Details)
	}

	return s
}

// verify runs the transport handshake and refreshes the readiness flag.
func (s *Service) verify(ctx context.Context) ServiceStatus {
	err := s.transport.Verify(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.ready = false
		return ServiceStatus{
			Status:  StatusError,
			Message: "Email service configuration error",
			Details: err.Error(),
		}
	}

	s.ready = true
	return ServiceStatus{
		Status:  StatusReady,
		Message: "Email service is configured and ready",
	}
}

// ServiceStatus re-runs the transport handshake synchronously and returns the
// result. Health-check callers get a live answer, and a transport that has
// recovered flips the service back to ready.
func (s *Service) ServiceStatus(ctx context.Context) ServiceStatus {
	return s.verify(ctx)
}

func (s *Service) checkReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return common.NewUnavailableError("")
	}
	return nil
}

// deliver performs a single bounded transport send.
func (s *Service) deliver(ctx context.Context, operation string, msg *Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
	defer cancel()

	if err := s.transport.Send(sendCtx, msg); err != nil {
		return common.NewTransportError(operation, err.Error())
	}
	return nil
}

// send renders an event and delivers it to a single recipient.
func (s *Service) send(ctx context.Context, operation string, kind EventKind, data any, to, replyTo string) error {
	subject, html, err := s.renderer.Render(kind, data)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", kind, err)
	}
	return s.deliver(ctx, operation, &Message{To: to, ReplyTo: replyTo, Subject: subject, HTML: html})
}

// fanOut dispatches the same rendered message to every recipient
// concurrently and settles all outcomes. Individual failures are logged and
// counted, not propagated.
func (s *Service) fanOut(ctx context.Context, operation, subject, html string, recipients []string) *FanOutResult {
	res := &FanOutResult{}
	if len(recipients) == 0 {
		return res
	}

	errs := make([]error, len(recipients))
	var wg sync.WaitGroup
	for i, to := range recipients {
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			errs[i] = s.deliver(ctx, operation, &Message{To: to, Subject: subject, HTML: html})
		}(i, to)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			res.Failed++
			slog.Error("recipient send failed", "operation", operation, "to", recipients[i], "error", err)
		} else {
			res.Sent++
		}
	}
	return res
}

// SendBlogNotification resolves the active subscriber list at send time and
// fans the post announcement out to it. Zero subscribers is a successful
// no-op. The operation fails only when every attempted send failed.
func (s *Service) SendBlogNotification(ctx context.Context, blog *Blog) (*FanOutResult, error) {
	const op = "sendBlogNotification"

	if err := s.checkReady(); err != nil {
		return nil, err
	}

	recipients, err := s.directory.ActiveSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active subscribers: %w", err)
	}

	view := BlogView{
		Title:   blog.Title,
		Excerpt: blogExcerpt(blog),
		URL:     s.opts.BaseURL + "/blog/" + url.PathEscape(blog.ID),
	}

	subject, html, err := s.renderer.Render(EventBlogPublished, view)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", EventBlogPublished, err)
	}

	res := s.fanOut(ctx, op, subject, html, recipients)
	slog.Info("blog notification dispatched",
		"blog_id", blog.ID,
		"sent", res.Sent,
		"failed", res.Failed,
	)

	if res.Sent == 0 && res.Failed > 0 {
		return res, common.NewTransportError(op, fmt.Sprintf("all %d recipient sends failed", res.Failed))
	}
	return res, nil
}

// SendCaseUpdate notifies the reporting citizen that their case status changed.
func (s *Service) SendCaseUpdate(ctx context.Context, details *CaseDetails, userEmail string) error {
	const op = "sendCaseUpdateNotification"

	if err := s.checkReady(); err != nil {
		return err
	}

	notes := details.StatusNotes
	if notes == "" {
		notes = "No additional notes"
	}

	view := CaseUpdateView{
		TrackingID: details.TrackingID,
		Status:     details.Status,
		UpdatedOn:  time.Now().Format("January 2, 2006"),
		Notes:      notes,
		TrackURL:   s.opts.BaseURL + "/track-report",
	}

	return s.send(ctx, op, EventCaseUpdate, view, userEmail, "")
}

// SendOfficerAssignment notifies the assigned officer, then attempts a
// secondary, independent notification to the officer's station OCS contact
// (falling back to the configured admin address). The primary send is
// load-bearing; the secondary is advisory and its failure is only logged.
func (s *Service) SendOfficerAssignment(ctx context.Context, details *CaseDetails, officerEmail string, officer *OfficerDetails) error {
	const op = "sendOfficerAssignmentNotification"

	if err := s.checkReady(); err != nil {
		return err
	}

	view := OfficerAssignmentView{
		TrackingID:   details.TrackingID,
		Location:     details.Location,
		IncidentType: details.IncidentType,
		Priority:     details.Priority,
		Description:  details.Description,
		CaseURL:      s.opts.BaseURL + "/admin",
	}

	if err := s.send(ctx, op, EventOfficerAssignment, view, officerEmail, ""); err != nil {
		return err
	}

	s.notifyOCS(ctx, details, officer)

	return nil
}

// notifyOCS sends the advisory station notification. Lookup and transport
// failures are demoted to log lines so they never fail the assignment.
func (s *Service) notifyOCS(ctx context.Context, details *CaseDetails, officer *OfficerDetails) {
	const op = "sendOCSNotification"

	to := ""
	if officer.Station != "" {
		addr, err := s.directory.StationOCSEmail(ctx, officer.Station)
		if err != nil {
			slog.Error("ocs contact lookup failed",
				"operation", op,
				"station", officer.Station,
				"error", err,
			)
		} else {
			to = addr
		}
	}
	if to == "" {
		to = s.opts.AdminEmail
	}
	if to == "" {
		slog.Warn("no OCS contact or admin fallback configured, skipping secondary notification",
			"tracking_id", details.TrackingID,
		)
		return
	}

	view := OCSNotifyView{
		OfficerName:  officer.Name,
		BadgeNumber:  officer.BadgeNumber,
		TrackingID:   details.TrackingID,
		Location:     details.Location,
		IncidentType: details.IncidentType,
		Priority:     details.Priority,
		ReviewURL:    s.opts.BaseURL + "/admin",
	}

	if err := s.send(ctx, op, EventOCSNotify, view, to, ""); err != nil {
		slog.Error("ocs notification failed",
			"operation", op,
			"tracking_id", details.TrackingID,
			"to", to,
			"error", err,
		)
	}
}

// SendSubscriptionConfirmation sends the newsletter welcome email.
func (s *Service) SendSubscriptionConfirmation(ctx context.Context, email string) error {
	const op = "sendSubscriptionConfirmation"

	if err := s.checkReady(); err != nil {
		return err
	}

	if err := s.allowRecipient(ctx, email); err != nil {
		return err
	}

	view := SubscriptionView{
		UnsubscribeURL: s.opts.BaseURL + "/unsubscribe?email=" + url.QueryEscape(email),
	}

	return s.send(ctx, op, EventSubscriptionConfirmed, view, email, "")
}

// SendContactForm forwards a contact-form submission to the administrator
// with Reply-To set to the submitter.
func (s *Service) SendContactForm(ctx context.Context, form *ContactForm) error {
	const op = "sendContactFormSubmission"

	if err := s.checkReady(); err != nil {
		return err
	}

	if s.opts.AdminEmail == "" {
		return fmt.Errorf("%s: no administrator contact address configured", op)
	}

	if err := s.allowRecipient(ctx, form.Email); err != nil {
		return err
	}

	view := ContactFormView{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
	}

	return s.send(ctx, op, EventContactForm, view, s.opts.AdminEmail, form.Email)
}

// SendAdminAlert fans the alert out to the configured administrator list with
// the same settle-all semantics as blog notifications.
func (s *Service) SendAdminAlert(ctx context.Context, alert *AdminAlert) (*FanOutResult, error) {
	const op = "sendAdminAlert"

	if err := s.checkReady(); err != nil {
		return nil, err
	}

	if len(s.opts.AdminEmails) == 0 {
		return nil, common.NewValidationError("no administrator addresses configured")
	}

	view := AdminAlertView{
		Type:    alert.Type,
		Message: alert.Message,
		Time:    time.Now().Format(time.RFC1123),
		Link:    alert.Link,
	}

	subject, html, err := s.renderer.Render(EventAdminAlert, view)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", EventAdminAlert, err)
	}

	res := s.fanOut(ctx, op, subject, html, s.opts.AdminEmails)
	if res.Sent == 0 && res.Failed > 0 {
		return res, common.NewTransportError(op, fmt.Sprintf("all %d recipient sends failed", res.Failed))
	}
	return res, nil
}

// SendAssignmentReport is the legacy assignment path with the section-based
// report template. Subject gains an [URGENT] prefix for urgent cases.
func (s *Service) SendAssignmentReport(ctx context.Context, officerEmail string, details *ReportDetails) error {
	const op = "sendAssignmentEmail"

	if err := s.checkReady(); err != nil {
		return err
	}

	view := AssignmentReportView{
		Urgent:          strings.EqualFold(details.Status, "urgent"),
		Status:          strings.ToUpper(details.Status),
		IncidentType:    capitalize(details.IncidentType),
		Location:        details.Location,
		County:          details.County,
		Date:            details.Date,
		Time:            details.Time,
		Description:     details.Description,
		EvidenceURL:     details.EvidenceURL,
		AdditionalNotes: details.AdditionalNotes,
		AssignedAt:      formatTimestamp(details.AssignedAt),
		LastUpdated:     formatTimestamp(details.LastUpdated),
	}

	return s.send(ctx, op, EventAssignmentReport, view, officerEmail, "")
}

// allowRecipient applies the per-recipient rate limit on public endpoints.
// Fails open when the limiter backend is down.
func (s *Service) allowRecipient(ctx context.Context, recipient string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, recipient)
	if err != nil {
		slog.Error("rate limit check failed, proceeding without limit", "recipient", recipient, "error", err)
		return nil
	}
	if !allowed {
		return common.NewValidationError(fmt.Sprintf("rate limit exceeded for recipient: %s", recipient))
	}
	return nil
}

// blogExcerpt prefers the SEO description and falls back to a content preview.
func blogExcerpt(blog *Blog) string {
	if blog.SEODescription != "" {
		return blog.SEODescription
	}
	content := blog.Content
	if len(content) > 150 {
		content = content[:150]
	}
	return content + "..."
}

// formatTimestamp renders an ISO-8601 timestamp in a readable long form,
// passing the raw value through when it does not parse.
func formatTimestamp(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("Monday, January 2, 2006 at 3:04 PM MST")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
