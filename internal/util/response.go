package util

import (
	"net/http"

	"healmymind_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int64       `json:"totalPages"`
}

func NewPage(list interface{}, total int64, page, limit int) PageResponse {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageResponse{List: list, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

func respond(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{Code: code, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", data)
}

// Paged wraps one page of a listing in the envelope.
func Paged(c *gin.Context, list interface{}, total int64, page, limit int) {
	Success(c, NewPage(list, total, page, limit))
}

func Created(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, "created", data)
}

func Error(c *gin.Context, code int, message string) {
	respond(c, code, message, nil)
}

// ErrorWithData is Error plus a diagnostic payload.
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	respond(c, code, message, data)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// LogInternalError logs err with the request route and caller, attaches it
// to the gin context for the tracing middleware, and answers 500 without
// leaking details.
func LogInternalError(c *gin.Context, err error) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}
	if claims := CurrentUser(c); claims != nil {
		fields = append(fields, zap.Uint("userId", claims.UserID))
	}
	logger.Log.Error("Internal server error", fields...)
	_ = c.Error(err)
	InternalServerError(c)
}
