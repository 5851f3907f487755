package users

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/middleware"
	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/response"
)

// Handler handles user HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a user handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /user/:userId.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Domain(c, err, "failed to load user")
		return
	}
	profile := u.ToProfile()
	response.OK(c, profile)
}

// List handles GET /user. Admin callers get the full projection; other
// staff get name and document only.
func (h *Handler) List(c *gin.Context) {
	role := c.GetString(middleware.ContextUserRole)
	if role == string(models.RoleAdmin) {
		profiles, err := h.service.ListProfiles(c.Request.Context())
		if err != nil {
			response.Domain(c, err, "failed to list users")
			return
		}
		response.OK(c, gin.H{"users": profiles})
		return
	}
	summaries, err := h.service.ListSummaries(c.Request.Context())
	if err != nil {
		response.Domain(c, err, "failed to list users")
		return
	}
	response.OK(c, gin.H{"users": summaries})
}

// Deactivate handles DELETE /user/:userId. Success answers 201 with the
// affected-row count; older API clients depend on that status code, so
// it stays. A user with pending duties gets a conflict naming the event.
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	count, err := h.service.Deactivate(c.Request.Context(), id, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to deactivate user")
		return
	}
	response.Created(c, gin.H{"deleted": count})
}
