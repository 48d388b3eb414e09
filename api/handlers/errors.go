package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/service/document"
	"github.com/feichai0017/document-analyzer/pkg/logger"
	"github.com/feichai0017/document-analyzer/pkg/queue"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Error   string              `json:"error,omitempty"`
	Session *models.SessionView `json:"session,omitempty"`
}

// statusFor 把流程错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, models.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrAnalysisInProgress),
		errors.Is(err, models.ErrStaleResult),
		errors.Is(err, document.ErrTaskNotCompleted),
		errors.Is(err, queue.ErrTaskFinished):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyContent),
		errors.Is(err, models.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrProvider),
		errors.Is(err, models.ErrEmptyResponse),
		errors.Is(err, models.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, queue.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoFile),
		errors.Is(err, models.ErrMissingFileName):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrAsyncDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor 返回给用户看的错误信息
func messageFor(err error) string {
	switch {
	case errors.Is(err, document.ErrAsyncDisabled):
		return "background processing is not enabled"
	case errors.Is(err, document.ErrTaskNotCompleted):
		return "task is not completed yet"
	case errors.Is(err, queue.ErrTaskNotFound):
		return "task not found"
	case errors.Is(err, queue.ErrTaskFinished):
		return "task has already finished"
	default:
		return models.UserMessage(err)
	}
}

// handleError 统一错误处理; view 非空时一并返回当前会话状态
func handleError(c *gin.Context, log logger.ContextLogger, err error, view *models.SessionView) {
	status := statusFor(err)

	l := log.FromContext(c.Request.Context())
	fields := []logger.Field{
		logger.String("path", c.Request.URL.Path),
		logger.Int("status", status),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		l.Error("Request failed", fields...)
	} else {
		l.Info("Request rejected", fields...)
	}

	c.JSON(status, ErrorResponse{
		Code:    status,
		Message: messageFor(err),
		Error:   err.Error(),
		Session: view,
	})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Code: http.StatusBadRequest, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
