package enrollments

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atena-events/backend/pkg/response"
)

// RateRequest is the body for PUT /activity/:activityId/rate/:userId.
type RateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// Handler handles enrollment HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an enrollments handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func pathIDs(c *gin.Context) (activityID, userID uuid.UUID, ok bool) {
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return uuid.Nil, uuid.Nil, false
	}
	return activityID, userID, true
}

// Enroll handles POST /activity/registry/:activityId/:userId.
func (h *Handler) Enroll(c *gin.Context) {
	activityID, userID, ok := pathIDs(c)
	if !ok {
		return
	}
	reg, err := h.service.Enroll(c.Request.Context(), userID, activityID, time.Now())
	if err != nil {
		h.logger.Info("enrollment rejected",
			zap.String("activity_id", activityID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		response.Domain(c, err, "failed to enroll")
		return
	}
	response.Created(c, reg)
}

// Cancel handles DELETE /activity/registry/:activityId/:userId.
func (h *Handler) Cancel(c *gin.Context) {
	activityID, userID, ok := pathIDs(c)
	if !ok {
		return
	}
	count, err := h.service.Cancel(c.Request.Context(), userID, activityID)
	if err != nil {
		response.Domain(c, err, "failed to cancel enrollment")
		return
	}
	response.OK(c, gin.H{"deleted": count})
}

// Rate handles PUT /activity/:activityId/rate/:userId.
func (h *Handler) Rate(c *gin.Context) {
	activityID, userID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.service.Rate(c.Request.Context(), userID, activityID, req.Rating); err != nil {
		response.Domain(c, err, "failed to rate activity")
		return
	}
	response.OK(c, gin.H{"rating": req.Rating})
}
