package util

import (
	"errors"
	"net/http"

	"sheet_lms_backend/internal/sheet"
	"sheet_lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{CurrentPage: page, TotalPages: pages, TotalItems: total, ItemsPerPage: limit}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Success: false, Message: message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Authentication required")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "You do not have permission to perform this action")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func ValidationFailed(c *gin.Context, message string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message, Errors: fields})
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError 按错误分类输出响应。远程存储和未知错误只记录日志，不向调用方暴露细节。
// fallback 为 500 时返回给前端的提示，例如 "Failed to submit quiz"。
func HandleError(c *gin.Context, err error, fallback string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation, KindNoQuestions:
			ValidationFailed(c, appErr.Message, appErr.Fields)
			return
		case KindNotFound:
			NotFound(c, appErr.Message)
			return
		case KindForbidden:
			Error(c, http.StatusForbidden, appErr.Message)
			return
		case KindUnauthorized:
			Error(c, http.StatusUnauthorized, appErr.Message)
			return
		case KindConflict:
			Error(c, http.StatusConflict, appErr.Message)
			return
		}
	}

	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	}
	if errors.Is(err, sheet.ErrRemoteUnavailable) {
		logger.Log.Error("row store unavailable", fields...)
	} else {
		logger.Log.Error("Internal server error", fields...)
	}
	InternalServerError(c, fallback)
}
