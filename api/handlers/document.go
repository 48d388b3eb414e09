package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/service/document"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// DocumentHandler 异步分析任务接口
type DocumentHandler struct {
	service document.DocumentProcessor
	logger  logger.ContextLogger
}

// ProcessResponse 定义处理响应结构
type ProcessResponse struct {
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	FileType  string `json:"fileType"`
	CreatedAt string `json:"createdAt"`
}

func NewDocumentHandler(service document.DocumentProcessor, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.NewContextLogger(log),
	}
}

func newProcessResponse(task *models.ProcessingTask, filename string, size int64) ProcessResponse {
	return ProcessResponse{
		TaskID:    task.ID,
		Status:    string(task.Status),
		Filename:  filename,
		FileSize:  size,
		FileType:  filepath.Ext(filename),
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
	}
}

// ProcessDocument 处理单个文档
func (h *DocumentHandler) ProcessDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid file upload", err)
		return
	}

	task, err := h.service.ProcessFile(c.Request.Context(), header)
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusAccepted, newProcessResponse(task, header.Filename, header.Size))
}

// ProcessBatch 批量处理文档
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		badRequest(c, "No files provided", nil)
		return
	}

	tasks, err := h.service.ProcessBatch(c.Request.Context(), files)
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	responses := make([]ProcessResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = newProcessResponse(task, files[i].Filename, files[i].Size)
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("Processing %d documents", len(files)),
		"tasks":   responses,
	})
}

// GetStatus 获取处理状态
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")

	task, err := h.service.GetProcessingStatus(c.Request.Context(), taskID)
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":    task.ID,
		"status":    string(task.Status),
		"progress":  task.Progress,
		"error":     task.Error,
		"metadata":  task.Metadata,
		"createdAt": task.CreatedAt.Format(time.RFC3339),
		"updatedAt": task.UpdatedAt.Format(time.RFC3339),
	})
}

// DownloadResult 下载处理结果
func (h *DocumentHandler) DownloadResult(c *gin.Context) {
	taskID := c.Param("taskId")

	result, err := h.service.GetProcessedDocument(c.Request.Context(), taskID)
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	filename := fmt.Sprintf("result_%s.json", taskID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", resultJSON)
}

// CancelTask 取消处理任务
func (h *DocumentHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		handleError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled successfully",
		"taskId":  taskID,
	})
}
