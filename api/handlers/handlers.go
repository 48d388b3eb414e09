package handlers

import (
	"github.com/feichai0017/document-analyzer/internal/service/document"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// Service 是 handler 依赖的全部服务能力
type Service interface {
	document.Pipeline
	document.DocumentProcessor
	AnalyzerName() string
	AsyncEnabled() bool
}

type Handlers struct {
	Health   *HealthHandler
	Session  *SessionHandler
	Document *DocumentHandler
	Async    bool
}

func NewHandlers(service Service, log logger.Logger) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(service.AnalyzerName(), service.AsyncEnabled()),
		Session:  NewSessionHandler(service, log),
		Document: NewDocumentHandler(service, log),
		Async:    service.AsyncEnabled(),
	}
}
