package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atena-events/backend/internal/middleware"
	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type eventRequest struct {
	Name              string     `json:"name" binding:"required"`
	Description       string     `json:"description"`
	StartDate         time.Time  `json:"start_date" binding:"required"`
	EndDate           *time.Time `json:"end_date"`
	RegistryStartDate time.Time  `json:"registry_start_date" binding:"required"`
	RegistryEndDate   time.Time  `json:"registry_end_date" binding:"required"`
	StatusActive      bool       `json:"status_active"`
	StatusVisible     bool       `json:"status_visible"`
}

func (req *eventRequest) validate() string {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return "end date before start date"
	}
	if req.RegistryEndDate.Before(req.RegistryStartDate) {
		return "registry window ends before it starts"
	}
	return ""
}

// Create handles POST /event.
func (h *Handler) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	e, err := h.repo.Create(c.Request.Context(), &models.Event{
		Name:              req.Name,
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		RegistryStartDate: req.RegistryStartDate,
		RegistryEndDate:   req.RegistryEndDate,
		StatusActive:      req.StatusActive,
		StatusVisible:     req.StatusVisible,
	})
	if err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Domain(c, err, "failed to create event")
		return
	}
	response.Created(c, e)
}

// Get handles GET /event/:eventId.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load event")
		return
	}
	organizers, err := h.repo.Organizers(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load event")
		return
	}
	response.OK(c, gin.H{"event": e, "organizers": organizers})
}

// List handles GET /event.
func (h *Handler) List(c *gin.Context) {
	includeHidden := c.GetString(middleware.ContextUserRole) == string(models.RoleAdmin)
	list, err := h.repo.List(c.Request.Context(), includeHidden)
	if err != nil {
		response.Domain(c, err, "failed to list events")
		return
	}
	response.OK(c, gin.H{"events": list})
}

// Update handles PUT /event/:eventId.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	e, err := h.repo.Update(c.Request.Context(), &models.Event{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		RegistryStartDate: req.RegistryStartDate,
		RegistryEndDate:   req.RegistryEndDate,
		StatusActive:      req.StatusActive,
		StatusVisible:     req.StatusVisible,
	})
	if err != nil {
		response.Domain(c, err, "failed to update event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /event/:eventId.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Domain(c, err, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// AddOrganizer handles POST /event/:eventId/organizer/:userId.
func (h *Handler) AddOrganizer(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.AddOrganizer(c.Request.Context(), eventID, userID); err != nil {
		response.Domain(c, err, "failed to add organizer")
		return
	}
	response.Created(c, gin.H{"event_id": eventID, "user_id": userID})
}

// RemoveOrganizer handles DELETE /event/:eventId/organizer/:userId.
func (h *Handler) RemoveOrganizer(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveOrganizer(c.Request.Context(), eventID, userID); err != nil {
		response.Domain(c, err, "failed to remove organizer")
		return
	}
	response.NoContent(c)
}
