package presence

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atena-events/backend/pkg/response"
)

// Handler handles presence HTTP endpoints.
type Handler struct {
	tracker *Tracker
}

// NewHandler creates a presence handler.
func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// Record handles POST /registration/:registrationId/presence/:scheduleId.
func (h *Handler) Record(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("registrationId"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	p, err := h.tracker.Record(c.Request.Context(), registrationID, scheduleID, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to record presence")
		return
	}
	response.Created(c, p)
}

// List handles GET /registration/:registrationId/presence.
func (h *Handler) List(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("registrationId"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	list, err := h.tracker.List(c.Request.Context(), registrationID)
	if err != nil {
		response.Domain(c, err, "failed to list presences")
		return
	}
	response.OK(c, gin.H{"presences": list})
}
