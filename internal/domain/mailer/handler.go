package mailer

import (
	"fmt"
	"log/slog"
	"net/http"

	"crimewatch/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the email API.
type Handler struct {
	service *Service
}

// NewHandler creates a new mailer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type blogNotificationRequest struct {
	Blog Blog `json:"blog" binding:"required"`
}

type caseUpdateRequest struct {
	CaseDetails CaseDetails `json:"caseDetails" binding:"required"`
	UserEmail   string      `json:"userEmail" binding:"required,email"`
}

type officerAssignmentRequest struct {
	CaseDetails    CaseDetails    `json:"caseDetails" binding:"required"`
	OfficerEmail   string         `json:"officerEmail" binding:"required,email"`
	OfficerDetails OfficerDetails `json:"officerDetails" binding:"required"`
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type sendAssignmentRequest struct {
	OfficerEmail  string        `json:"officerEmail" binding:"required,email"`
	ReportDetails ReportDetails `json:"reportDetails" binding:"required"`
}

// Status handles GET /api/email/status.
// Re-runs the transport handshake and reports the live result.
func (h *Handler) Status(c *gin.Context) {
	status := h.service.ServiceStatus(c.Request.Context())
	c.JSON(http.StatusOK, status)
}

// BlogNotification handles POST /api/email/blog-notification.
func (h *Handler) BlogNotification(c *gin.Context) {
	var req blogNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.service.SendBlogNotification(c.Request.Context(), &req.Blog)
	if err != nil {
		slog.Error("blog notification failed", "blog_id", req.Blog.ID, "error", err)
		common.HandleError(c, err)
		return
	}

	msg := "Blog notification sent successfully"
	if res.Failed > 0 {
		msg = fmt.Sprintf("Blog notification sent to %d of %d subscribers", res.Sent, res.Sent+res.Failed)
	}
	common.Success(c, http.StatusOK, msg)
}

// CaseUpdate handles POST /api/email/case-update.
func (h *Handler) CaseUpdate(c *gin.Context) {
	var req caseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.SendCaseUpdate(c.Request.Context(), &req.CaseDetails, req.UserEmail); err != nil {
		slog.Error("case update notification failed",
			"tracking_id", req.CaseDetails.TrackingID,
			"error", err,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, "Case update notification sent successfully")
}

// OfficerAssignment handles POST /api/email/officer-assignment.
// Success reflects the primary officer send only; the secondary OCS
// notification is advisory.
func (h *Handler) OfficerAssignment(c *gin.Context) {
	var req officerAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.service.SendOfficerAssignment(c.Request.Context(), &req.CaseDetails, req.OfficerEmail, &req.OfficerDetails)
	if err != nil {
		slog.Error("officer assignment notification failed",
			"tracking_id", req.CaseDetails.TrackingID,
			"officer", req.OfficerEmail,
			"error", err,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, "Officer notification sent successfully")
}

// Subscribe handles POST /api/email/subscribe.
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.SendSubscriptionConfirmation(c.Request.Context(), req.Email); err != nil {
		slog.Error("subscription confirmation failed", "email", req.Email, "error", err)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, "Subscription confirmation sent successfully")
}

// Contact handles POST /api/email/contact.
func (h *Handler) Contact(c *gin.Context) {
	var req ContactForm
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.SendContactForm(c.Request.Context(), &req); err != nil {
		slog.Error("contact form submission failed", "from", req.Email, "error", err)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, "Contact form submission sent successfully")
}

// AdminAlert handles POST /api/email/admin-alert.
func (h *Handler) AdminAlert(c *gin.Context) {
	var req AdminAlert
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.service.SendAdminAlert(c.Request.Context(), &req)
	if err != nil {
		slog.Error("admin alert failed", "type", req.Type, "error", err)
		common.HandleError(c, err)
		return
	}

	msg := "Admin alert sent successfully"
	if res.Failed > 0 {
		msg = fmt.Sprintf("Admin alert sent to %d of %d administrators", res.Sent, res.Sent+res.Failed)
	}
	common.Success(c, http.StatusOK, msg)
}

// SendAssignment handles POST /api/email/send-assignment, the legacy
// alternate assignment path. Its callers expect the raw error string on
// failure, so it bypasses the standard error mapping.
func (h *Handler) SendAssignment(c *gin.Context) {
	var req sendAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorWithDetail(c, http.StatusBadRequest, "Officer email and report details are required", err)
		return
	}

	if err := h.service.SendAssignmentReport(c.Request.Context(), req.OfficerEmail, &req.ReportDetails); err != nil {
		slog.Error("assignment email failed", "officer", req.OfficerEmail, "error", err)
		common.ErrorWithDetail(c, http.StatusInternalServerError, "Failed to send assignment email", err)
		return
	}

	common.Success(c, http.StatusOK, "Assignment email sent successfully")
}

// RegisterRoutes registers the email API routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.Status)
	rg.POST("/blog-notification", h.BlogNotification)
	rg.POST("/case-update", h.CaseUpdate)
	rg.POST("/officer-assignment", h.OfficerAssignment)
	rg.POST("/subscribe", h.Subscribe)
	rg.POST("/contact", h.Contact)
	rg.POST("/admin-alert", h.AdminAlert)
	rg.POST("/send-assignment", h.SendAssignment)
}
