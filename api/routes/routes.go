package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/document-analyzer/api/handlers"
	"github.com/feichai0017/document-analyzer/api/middleware"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, allowOrigins []string, log logger.Logger) {
	// 全局中间件
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(allowOrigins))

	// API 版本组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequestID())
	v1.Use(middleware.AccessLog(logger.NewContextLogger(log)))

	v1.GET("/health", h.Health.Check)

	sessions := v1.Group("/sessions")
	{
		sessions.POST("", h.Session.Create)
		sessions.GET("/:id", h.Session.Get)
		sessions.DELETE("/:id", h.Session.Delete)
		sessions.POST("/:id/reset", h.Session.Reset)
		sessions.POST("/:id/file", h.Session.UploadFile)
		sessions.POST("/:id/analyze", h.Session.Analyze)
		sessions.POST("/:id/text", h.Session.AnalyzeText)
		sessions.GET("/:id/result", h.Session.GetResult)
	}

	// 后台处理路由只在启用队列时注册
	if !h.Async {
		return
	}
	docs := v1.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessDocument)
		docs.POST("/batch", h.Document.ProcessBatch)
		docs.GET("/status/:taskId", h.Document.GetStatus)
		docs.GET("/download/:taskId", h.Document.DownloadResult)
		docs.DELETE("/task/:taskId", h.Document.CancelTask)
	}
}
