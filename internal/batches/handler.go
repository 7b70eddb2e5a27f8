package batches

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/pkg/response"
)

// MeetingLister returns a batch's meetings for the nested listing endpoint.
type MeetingLister interface {
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Meeting, error)
}

// RecordingLister returns recordings for one meeting.
type RecordingLister interface {
	ListByMeeting(ctx context.Context, meetingID uuid.UUID, providerMeetingID string) ([]models.Recording, error)
}

// Handler handles batch HTTP endpoints.
type Handler struct {
	repo       *Repository
	deleter    *Deleter
	meetings   MeetingLister
	recordings RecordingLister
	logger     *zap.Logger
}

// NewHandler creates a batches handler.
func NewHandler(repo *Repository, deleter *Deleter, meetings MeetingLister, recordings RecordingLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, deleter: deleter, meetings: meetings, recordings: recordings, logger: logger}
}

// List handles GET /api/batch.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list batches failed", zap.Error(err))
		response.Internal(c, "failed to list batches")
		return
	}
	response.OK(c, list)
}

type createBatchBody struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Client   string `json:"client"`
	Mode     string `json:"mode"`
	Trainer  string `json:"trainer"`
	Admin    string `json:"admin"`
	Location string `json:"location"`
	Timing   string `json:"timing"`
}

// Create handles POST /api/batch. Name and code are required; they are the
// tokens later used to match catalog videos.
func (h *Handler) Create(c *gin.Context) {
	var body createBatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if body.Name == "" || body.Code == "" {
		response.BadRequest(c, "Name and Code are required")
		return
	}

	b := &models.Batch{
		Name:     body.Name,
		Code:     body.Code,
		Client:   body.Client,
		Mode:     body.Mode,
		Trainer:  body.Trainer,
		Admin:    body.Admin,
		Location: body.Location,
		Timing:   body.Timing,
	}
	if err := h.repo.Create(c.Request.Context(), b); err != nil {
		h.logger.Error("create batch failed", zap.Error(err))
		response.Internal(c, "failed to create batch")
		return
	}
	response.Created(c, b)
}

// ListMeetings handles GET /api/batch/:batchId/meetings. Each meeting comes
// with its recordings, matched by local ownership or shared provider id.
func (h *Handler) ListMeetings(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	meetings, err := h.meetings.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("list batch meetings failed", zap.Error(err), zap.String("batch_id", batchID.String()))
		response.Internal(c, "failed to list meetings")
		return
	}
	for i := range meetings {
		recs, err := h.recordings.ListByMeeting(c.Request.Context(), meetings[i].ID, meetings[i].ProviderMeetingID)
		if err != nil {
			h.logger.Error("list meeting recordings failed", zap.Error(err), zap.String("meeting_id", meetings[i].ID.String()))
			recs = []models.Recording{}
		}
		meetings[i].Recordings = recs
	}
	response.OK(c, meetings)
}

// Delete handles DELETE /api/batch/:id. Runs the full cascade and reports
// per-video outcomes alongside the local result.
func (h *Handler) Delete(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	report, err := h.deleter.Delete(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			response.NotFound(c, "Batch not found")
			return
		}
		h.logger.Error("delete batch failed", zap.Error(err), zap.String("batch_id", batchID.String()))
		response.Internal(c, err.Error())
		return
	}
	response.OK(c, report)
}
