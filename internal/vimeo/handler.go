package vimeo

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/batchlms/backend/pkg/response"
)

// Handler handles Vimeo catalog HTTP endpoints.
type Handler struct {
	client *Client
	logger *zap.Logger
}

// NewHandler creates a Vimeo handler.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, logger: logger}
}

// List handles GET /api/vimeo. Returns the account's videos with the numeric
// id extracted from each URI.
func (h *Handler) List(c *gin.Context) {
	videos, err := h.client.ListVideos(c.Request.Context())
	if err != nil {
		response.Internal(c, err.Error())
		return
	}
	out := make([]Video, 0, len(videos))
	for _, v := range videos {
		v.ID = v.VideoID()
		out = append(out, v)
	}
	response.OK(c, out)
}

// Delete handles DELETE /api/vimeo/:videoId.
func (h *Handler) Delete(c *gin.Context) {
	videoID := c.Param("videoId")
	if err := h.client.DeleteVideo(c.Request.Context(), videoID); err != nil {
		response.Internal(c, err.Error())
		return
	}
	h.logger.Info("vimeo video deleted", zap.String("video_id", videoID))
	response.OK(c, gin.H{"message": "Video deleted successfully"})
}
