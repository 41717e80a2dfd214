package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticore/internal/common"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	dispatcher *Dispatcher
	logs       LogStore
}

// NewHandler creates a new notification handler.
func NewHandler(dispatcher *Dispatcher, logs LogStore) *Handler {
	return &Handler{dispatcher: dispatcher, logs: logs}
}

// DispatchRequest is the API payload for POST /dispatch.
type DispatchRequest struct {
	Trigger    string         `json:"trigger" binding:"required"`
	Data       map[string]any `json:"data"`
	EmailOnly  bool           `json:"email_only"`
	SMSOnly    bool           `json:"sms_only"`
	ForceEmail string         `json:"force_email"`
	ForcePhone string         `json:"force_phone"`
}

// Dispatch handles POST /api/v1/dispatch. The dispatcher never errors —
// per-channel failures come back inside the result — so this always
// responds 200 with both outcomes.
func (h *Handler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result := h.dispatcher.Dispatch(
		c.Request.Context(),
		Trigger(req.Trigger),
		DataFromJSON(req.Data),
		Options{
			EmailOnly:  req.EmailOnly,
			SMSOnly:    req.SMSOnly,
			ForceEmail: req.ForceEmail,
			ForcePhone: req.ForcePhone,
		},
	)

	common.Success(c, http.StatusOK, result)
}

// TestSendRequest is the API payload for POST /templates/:id/test.
type TestSendRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// TestSend handles POST /api/v1/templates/:id/test. It renders the template
// against sample data and sends it with a [TEST] marker.
func (h *Handler) TestSend(c *gin.Context) {
	var req TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome := h.dispatcher.SendTest(c.Request.Context(), c.Param("id"), req.Recipient)
	common.Success(c, http.StatusOK, outcome)
}

// GetLog handles GET /api/v1/logs/:id.
func (h *Handler) GetLog(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.logs.GetLogByID(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	if entry == nil {
		common.HandleError(c, common.NewNotFoundError("delivery log", id))
		return
	}

	common.Success(c, http.StatusOK, entry)
}

// ListLogs handles GET /api/v1/logs.
func (h *Handler) ListLogs(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	logs, total, err := h.logs.ListLogs(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	common.Success(c, http.StatusOK, &ListResponse{
		Logs:     logs,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/dispatch", h.Dispatch)
	rg.POST("/templates/:id/test", h.TestSend)
	rg.GET("/logs", h.ListLogs)
	rg.GET("/logs/:id", h.GetLog)
}
