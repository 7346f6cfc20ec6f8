// Package handler implements the HTTP endpoints of the dashboard API.
package handler

import (
	"errors"
	"net/http"

	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError renders a domain error with its mapped HTTP status. The
// no-data condition is not an HTTP failure: it renders as 200 with the
// message the user should see, since the fix is to widen the selection.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		if de.Code == shared.ErrNoData.Code {
			c.JSON(http.StatusOK, dto.NewErrorResponse(de.Code, de.Message))
			return
		}
		c.JSON(dto.GetHTTPStatus(de.Code), dto.NewErrorResponse(de.Code, de.Message))
		return
	}
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred"))
}
