package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crimewatch/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/email"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubscribeEndpoint(t *testing.T) {
	tr := &fakeTransport{}
	r := setupRouter(newTestService(tr, &fakeDirectory{}, Options{}))

	w := postJSON(t, r, "/api/email/subscribe", gin.H{"email": "a@b.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a@b.com"}, tr.recipients())
}

func TestSubscribeEndpointRejectsInvalidEmail(t *testing.T) {
	tr := &fakeTransport{}
	r := setupRouter(newTestService(tr, &fakeDirectory{}, Options{}))

	w := postJSON(t, r, "/api/email/subscribe", gin.H{"email": "not-an-address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
	assert.Empty(t, tr.attempts())
}

func TestStatusEndpointReady(t *testing.T) {
	r := setupRouter(newTestService(&fakeTransport{}, &fakeDirectory{}, Options{}))

	req := httptest.NewRequest(http.MethodGet, "/api/email/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status ServiceStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, StatusReady, status.Status)
}

func TestStatusEndpointError(t *testing.T) {
	tr := &fakeTransport{verifyErr: errors.New("invalid credentials")}
	r := setupRouter(newTestService(tr, &fakeDirectory{}, Options{}))

	req := httptest.NewRequest(http.MethodGet, "/api/email/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var status ServiceStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, StatusError, status.Status)
	assert.Contains(t, status.Details, "invalid credentials")
}

func TestCaseUpdateWhileTransportUnavailable(t *testing.T) {
	tr := &fakeTransport{verifyErr: errors.New("handshake failed")}
	r := setupRouter(newTestService(tr, &fakeDirectory{}, Options{}))

	w := postJSON(t, r, "/api/email/case-update", gin.H{
		"caseDetails": gin.H{"trackingId": "CR-1042", "status": "resolved"},
		"userEmail":   "citizen@example.com",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestOfficerAssignmentEndpoint(t *testing.T) {
	tr := &fakeTransport{}
	dir := &fakeDirectory{ocs: map[string]string{"st-westlands": "ocs@police.example.com"}}
	r := setupRouter(newTestService(tr, dir, Options{AdminEmail: "admin@example.com"}))

	w := postJSON(t, r, "/api/email/officer-assignment", gin.H{
		"caseDetails": gin.H{
			"trackingId":   "CR-1042",
			"location":     "Westlands, Nairobi",
			"incidentType": "robbery",
			"priority":     "high",
			"description":  "Reported robbery",
		},
		"officerEmail": "officer@police.example.com",
		"officerDetails": gin.H{
			"name":        "J. Mwangi",
			"badgeNumber": "4471",
			"station":     "st-westlands",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	assert.Len(t, tr.attempts(), 2)
}

func TestSendAssignmentFailureIncludesErrorDetail(t *testing.T) {
	tr := &fakeTransport{sendErr: func(to string) error {
		return errors.New("connection reset")
	}}
	r := setupRouter(newTestService(tr, &fakeDirectory{}, Options{}))

	w := postJSON(t, r, "/api/email/send-assignment", gin.H{
		"officerEmail": "officer@police.example.com",
		"reportDetails": gin.H{
			"status":       "urgent",
			"incidentType": "assault",
			"location":     "CBD",
			"county":       "Nairobi",
			"date":         "2024-06-01",
			"time":         "22:15",
			"description":  "Assault reported near bus stop",
			"assignedAt":   "2024-06-02T08:00:00Z",
		},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to send assignment email", resp.Message)
	assert.Contains(t, resp.Error, "connection reset")
}

func TestBlogNotificationEndpointReportsPartialSuccess(t *testing.T) {
	tr := &fakeTransport{sendErr: func(to string) error {
		if to == "bad@example.com" {
			return errors.New("rejected recipient")
		}
		return nil
	}}
	dir := &fakeDirectory{subscribers: []string{"a@example.com", "bad@example.com"}}
	r := setupRouter(newTestService(tr, dir, Options{BaseURL: "https://crimewatch.example.com"}))

	w := postJSON(t, r, "/api/email/blog-notification", gin.H{
		"blog": gin.H{"id": "b1", "title": "Staying Safe", "content": "Practical tips."},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "1 of 2")
}
