package meetings

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchlms/backend/pkg/response"
)

// Handler handles meeting HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a meetings handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

type createMeetingBody struct {
	Date string `json:"date"` // 2006-01-02, optional
	Time string `json:"time"` // 15:04, optional
}

// Create handles POST /api/zoom/:batchId/:day/:session. The optional body
// carries an explicit start date/time; without it the meeting starts now.
func (h *Handler) Create(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		response.BadRequest(c, "invalid day")
		return
	}
	session, err := strconv.Atoi(c.Param("session"))
	if err != nil {
		response.BadRequest(c, "invalid session")
		return
	}

	var body createMeetingBody
	_ = c.ShouldBindJSON(&body) // body is optional

	result, err := h.service.Create(c.Request.Context(), batchID, day, session, body.Date, body.Time)
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			response.NotFound(c, "Batch not found")
			return
		}
		h.logger.Error("create meeting failed", zap.Error(err), zap.String("batch_id", batchID.String()))
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, result)
}

// Delete handles DELETE /api/zoom/:id (local meeting id).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrMeetingNotFound) {
			response.NotFound(c, "Meeting not found")
			return
		}
		h.logger.Error("delete meeting failed", zap.Error(err), zap.String("meeting_id", id.String()))
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, gin.H{"success": true})
}

// ListRecordings handles GET /api/zoom/recordings/:meetingId (provider
// meeting id). Proxies the Zoom recordings listing.
func (h *Handler) ListRecordings(c *gin.Context) {
	recs, err := h.service.ListProviderRecordings(c.Request.Context(), c.Param("meetingId"))
	if err != nil {
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, recs)
}

// DeleteRecordings handles DELETE /api/zoom/recordings/:meetingId (provider
// meeting id). Deletes Zoom cloud recordings, then local rows best-effort.
func (h *Handler) DeleteRecordings(c *gin.Context) {
	meetingID := c.Param("meetingId")
	if meetingID == "" {
		response.BadRequest(c, "MeetingId missing")
		return
	}
	if err := h.service.DeleteRecordings(c.Request.Context(), meetingID); err != nil {
		h.logger.Error("delete recordings failed", zap.Error(err), zap.String("meeting_id", meetingID))
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, gin.H{"success": true})
}
