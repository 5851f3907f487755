package responsibilities

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atena-events/backend/pkg/response"
)

// Handler handles responsibility HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a responsibilities handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type query struct {
	userID uuid.UUID
	window Window
	page   Page
}

func parseQuery(c *gin.Context) (query, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return query{}, false
	}
	old, _ := strconv.ParseBool(c.DefaultQuery("old", "false"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return query{
		userID: userID,
		window: WindowFromOld(old),
		page:   Page{Page: page, Limit: limit},
	}, true
}

// Find handles GET /user/responsibility/:userId. The x-total-count
// header carries the combined total across both partitions.
func (h *Handler) Find(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	summary, err := h.service.Find(c.Request.Context(), q.userID, q.window, q.page, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to load responsibilities")
		return
	}
	response.Paginated(c, summary, summary.TotalCount)
}

// FindEvents handles GET /user/responsibility/:userId/event.
func (h *Handler) FindEvents(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	events, total, err := h.service.FindEvents(c.Request.Context(), q.userID, q.window, q.page, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to load organized events")
		return
	}
	response.Paginated(c, gin.H{"events": events}, total)
}

// FindActivities handles GET /user/responsibility/:userId/activity.
func (h *Handler) FindActivities(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	activities, total, err := h.service.FindActivities(c.Request.Context(), q.userID, q.window, q.page, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to load responsible activities")
		return
	}
	response.Paginated(c, gin.H{"activities": activities}, total)
}

// FindTeaching handles GET /user/:userId/teaching.
func (h *Handler) FindTeaching(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}
	activities, total, err := h.service.FindTeaching(c.Request.Context(), q.userID, q.window, q.page, time.Now())
	if err != nil {
		response.Domain(c, err, "failed to load teaching activities")
		return
	}
	response.Paginated(c, gin.H{"activities": activities}, total)
}
