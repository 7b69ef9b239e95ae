package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/infrastructure/http/v1/dto"
)

// BaseHandler holds the request/response helpers shared by all
// handlers. Errors are registered on the gin context and rendered by
// middleware.ErrorHandler, never written inline.
type BaseHandler struct{}

// NewBaseHandler creates a base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// Error registers the error and aborts the handler chain.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// BindJSON binds the request body into obj, reporting a validation
// error on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	return h.bind(c, obj, c.ShouldBindJSON, "invalid request body")
}

// BindQuery binds the query string into obj, reporting a validation
// error on failure.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	return h.bind(c, obj, c.ShouldBindQuery, "invalid query parameters")
}

func (h *BaseHandler) bind(c *gin.Context, obj any, bindFn func(any) error, msg string) bool {
	if err := bindFn(obj); err != nil {
		h.Error(c, apperror.NewValidation(msg).WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParseInt64Param parses an integer path parameter.
func (h *BaseHandler) ParseInt64Param(c *gin.Context, key string) (int64, bool) {
	val, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid path parameter").WithDetail("param", key))
		return 0, false
	}
	return val, true
}

// Created answers 201 with the new resource ID.
func (h *BaseHandler) Created(c *gin.Context, id int64) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK answers 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent answers 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success answers 200 with a plain acknowledgement.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
