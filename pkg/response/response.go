package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atena-events/backend/pkg/domain"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Entity  string      `json:"entity,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends a 200 JSON response with data and the x-total-count
// header carrying the total independent of slicing.
func Paginated(c *gin.Context, data interface{}, totalCount int) {
	c.Header("x-total-count", strconv.Itoa(totalCount))
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Domain maps a typed business-rule error onto its HTTP status and sends
// the structured detail (kind + offending entity) alongside the message.
// Non-domain errors fall through to 500 with the fallback message.
func Domain(c *gin.Context, err error, fallback string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		Internal(c, fallback)
		return
	}
	body := Body{Success: false, Error: de.Message, Kind: string(de.Kind), Entity: de.Entity}
	switch de.Kind {
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, body)
	case domain.KindDuplicateRegistration, domain.KindScheduleConflict,
		domain.KindCapacityExceeded, domain.KindUserCannotBeDisabled:
		c.JSON(http.StatusConflict, body)
	case domain.KindSelfEnrollment, domain.KindInvalid:
		c.JSON(http.StatusBadRequest, body)
	default:
		c.JSON(http.StatusInternalServerError, body)
	}
}
