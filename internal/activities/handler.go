package activities

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/response"
)

// Handler handles activity HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an activity handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type activityRequest struct {
	Name              string    `json:"name" binding:"required"`
	Description       string    `json:"description"`
	Vacancy           int       `json:"vacancy" binding:"required,min=1"`
	WorkloadInMinutes int       `json:"workload_in_minutes" binding:"min=0"`
	CategoryID        uuid.UUID `json:"category_id" binding:"required"`
}

// Create handles POST /event/:eventId/activity.
func (h *Handler) Create(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid activity payload")
		return
	}
	a, err := h.repo.Create(c.Request.Context(), &models.Activity{
		EventID:           eventID,
		Name:              req.Name,
		Description:       req.Description,
		Vacancy:           req.Vacancy,
		WorkloadInMinutes: req.WorkloadInMinutes,
		CategoryID:        req.CategoryID,
	})
	if err != nil {
		h.logger.Error("create activity", zap.Error(err))
		response.Domain(c, err, "failed to create activity")
		return
	}
	response.Created(c, a)
}

// Get handles GET /activity/:activityId with schedules and staff.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	a, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load activity")
		return
	}
	schedules, err := h.repo.ListSchedules(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load activity")
		return
	}
	staff, err := h.repo.Staff(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load activity")
		return
	}
	response.OK(c, gin.H{"activity": a, "schedules": schedules, "staff": staff})
}

// ListByEvent handles GET /event/:eventId/activity.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Domain(c, err, "failed to list activities")
		return
	}
	response.OK(c, gin.H{"activities": list})
}

// Update handles PUT /activity/:activityId.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid activity payload")
		return
	}
	a, err := h.repo.Update(c.Request.Context(), &models.Activity{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		Vacancy:           req.Vacancy,
		WorkloadInMinutes: req.WorkloadInMinutes,
		CategoryID:        req.CategoryID,
	})
	if err != nil {
		response.Domain(c, err, "failed to update activity")
		return
	}
	response.OK(c, a)
}

// Delete handles DELETE /activity/:activityId.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Domain(c, err, "failed to delete activity")
		return
	}
	response.NoContent(c)
}

type scheduleRequest struct {
	StartDate         time.Time  `json:"start_date" binding:"required"`
	DurationInMinutes int        `json:"duration_in_minutes" binding:"required,min=1"`
	RoomID            *uuid.UUID `json:"room_id"`
	URL               *string    `json:"url"`
}

// AddSchedule handles POST /activity/:activityId/schedule.
func (h *Handler) AddSchedule(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid schedule payload")
		return
	}
	s, err := h.repo.AddSchedule(c.Request.Context(), &models.Schedule{
		ActivityID:        activityID,
		StartDate:         req.StartDate,
		DurationInMinutes: req.DurationInMinutes,
		RoomID:            req.RoomID,
		URL:               req.URL,
	})
	if err != nil {
		response.Domain(c, err, "failed to add schedule")
		return
	}
	response.Created(c, s)
}

// RemoveSchedule handles DELETE /schedule/:scheduleId.
func (h *Handler) RemoveSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	if err := h.repo.RemoveSchedule(c.Request.Context(), id); err != nil {
		response.Domain(c, err, "failed to remove schedule")
		return
	}
	response.NoContent(c)
}

type staffRequest struct {
	Role models.ActivityUserRole `json:"role" binding:"required"`
}

// SetStaff handles PUT /activity/:activityId/user/:userId.
func (h *Handler) SetStaff(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid staff payload")
		return
	}
	if err := h.repo.SetStaff(c.Request.Context(), activityID, userID, req.Role); err != nil {
		response.Domain(c, err, "failed to assign staff")
		return
	}
	response.OK(c, gin.H{"activity_id": activityID, "user_id": userID, "role": req.Role})
}

// RemoveStaff handles DELETE /activity/:activityId/user/:userId.
func (h *Handler) RemoveStaff(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveStaff(c.Request.Context(), activityID, userID); err != nil {
		response.Domain(c, err, "failed to remove staff")
		return
	}
	response.NoContent(c)
}

// CreateCategory handles POST /category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var cat models.ActivityCategory
	if err := c.ShouldBindJSON(&cat); err != nil || cat.Name == "" {
		response.BadRequest(c, "invalid category payload")
		return
	}
	out, err := h.repo.CreateCategory(c.Request.Context(), &cat)
	if err != nil {
		response.Domain(c, err, "failed to create category")
		return
	}
	response.Created(c, out)
}

// ListCategories handles GET /category.
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.repo.ListCategories(c.Request.Context())
	if err != nil {
		response.Domain(c, err, "failed to list categories")
		return
	}
	response.OK(c, gin.H{"categories": list})
}

// CreateRoom handles POST /room.
func (h *Handler) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil || room.Name == "" {
		response.BadRequest(c, "invalid room payload")
		return
	}
	out, err := h.repo.CreateRoom(c.Request.Context(), &room)
	if err != nil {
		response.Domain(c, err, "failed to create room")
		return
	}
	response.Created(c, out)
}

// ListRooms handles GET /room.
func (h *Handler) ListRooms(c *gin.Context) {
	list, err := h.repo.ListRooms(c.Request.Context())
	if err != nil {
		response.Domain(c, err, "failed to list rooms")
		return
	}
	response.OK(c, gin.H{"rooms": list})
}
