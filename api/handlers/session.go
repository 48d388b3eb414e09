package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/render"
	"github.com/feichai0017/document-analyzer/internal/service/document"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

type SessionHandler struct {
	service document.Pipeline
	logger  logger.ContextLogger
}

// UploadResponse 上传成功后的文件信息和提示
type UploadResponse struct {
	File    *models.FileInfo   `json:"file"`
	Notice  string             `json:"notice"`
	Session models.SessionView `json:"session"`
}

type textRequest struct {
	Text string `json:"text"`
}

func NewSessionHandler(service document.Pipeline, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.NewContextLogger(log),
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	view := h.service.CreateSession()
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": view.ID,
		"session":   view,
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.service.GetSession(c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSession(c.Param("id")); err != nil {
		handleError(c, h.logger, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Reset(c *gin.Context) {
	view, err := h.service.ResetSession(c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UploadFile 接收 multipart 字段 file, 可选字段 source 标记来源 (drop / picker)
func (h *SessionHandler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid file upload", err)
		return
	}

	view, err := h.service.AcceptFile(c.Request.Context(), c.Param("id"), header, c.PostForm("source"))
	if err != nil {
		handleError(c, h.logger, err, sessionOrNil(view))
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		File:    view.File,
		Notice:  view.Notice,
		Session: view,
	})
}

// Analyze 分析会话中已上传的文件, 请求在分析完成后返回
func (h *SessionHandler) Analyze(c *gin.Context) {
	view, err := h.service.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err, sessionOrNil(view))
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) AnalyzeText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	view, err := h.service.AnalyzeText(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		handleError(c, h.logger, err, sessionOrNil(view))
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetResult 返回分析结果; view=sections 时按固定顺序返回展示分区
func (h *SessionHandler) GetResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "no analysis result yet",
		})
		return
	}

	if c.Query("view") == "sections" {
		c.JSON(http.StatusOK, gin.H{"sections": render.Sections(result)})
		return
	}
	c.JSON(http.StatusOK, result)
}

func sessionOrNil(view models.SessionView) *models.SessionView {
	if view.ID == "" {
		return nil
	}
	return &view
}
