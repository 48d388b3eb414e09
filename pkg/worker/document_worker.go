package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/document-analyzer/pkg/logger"
	"github.com/feichai0017/document-analyzer/pkg/queue"
)

// DefaultCleanupInterval 过期文件清理周期
const DefaultCleanupInterval = time.Hour

// TaskHandler 是 worker 需要的服务子集, DocumentService 实现了它
type TaskHandler interface {
	HandleDocument(ctx context.Context, task *queue.Task) error
	CleanupTasks(ctx context.Context) error
}

type DocumentWorker struct {
	BaseWorker
	docService      TaskHandler
	cleanupInterval time.Duration
}

func NewDocumentWorker(cfg *Config, docService TaskHandler, log logger.Logger) (*DocumentWorker, error) {
	if docService == nil {
		return nil, fmt.Errorf("document worker requires a processor")
	}

	server := asynq.NewServer(
		cfg.Redis,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			Logger:      newAsynqLogger(log),
		},
	)

	w := &DocumentWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		docService:      docService,
		cleanupInterval: DefaultCleanupInterval,
	}

	// 注册任务处理器
	w.registerHandlers()
	return w, nil
}

func (w *DocumentWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeAnalysisProcess, w.handleAnalysisProcess)
}

func (w *DocumentWorker) handleAnalysisProcess(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.Int("payloadBytes", len(t.Payload())),
		)
		// 损坏的任务重试也不会成功
		return fmt.Errorf("failed to unmarshal task: %v: %w", err, asynq.SkipRetry)
	}

	if task.ID == "" || task.Payload.FileKey == "" {
		w.logger.Error("Invalid task data",
			logger.String("taskId", task.ID),
			logger.String("fileKey", task.Payload.FileKey),
		)
		return fmt.Errorf("invalid task data: missing required fields: %w", asynq.SkipRetry)
	}

	w.logger.Info("Processing analysis task",
		logger.String("taskId", task.ID),
		logger.String("fileName", task.Payload.FileName),
		logger.String("mimeType", task.Payload.MimeType),
	)

	writeStatus(t, w.logger, map[string]interface{}{"status": "running", "progress": 0})

	if err := w.docService.HandleDocument(ctx, &task); err != nil {
		writeStatus(t, w.logger, map[string]interface{}{"status": "failed", "error": err.Error()})
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	writeStatus(t, w.logger, map[string]interface{}{"status": "completed", "progress": 100})
	return nil
}

// writeStatus 写入 asynq 的任务结果; 测试中直接构造的任务没有 ResultWriter
func writeStatus(t *asynq.Task, log logger.Logger, status map[string]interface{}) {
	rw := t.ResultWriter()
	if rw == nil {
		return
	}
	body, err := json.Marshal(status)
	if err != nil {
		return
	}
	if _, err := rw.Write(body); err != nil {
		log.Warn("Failed to write task status", logger.Error(err))
	}
}

func (w *DocumentWorker) Start(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start worker server: %w", err)
	}

	go w.cleanupLoop(ctx)

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}

// cleanupLoop 定期删除超过保留期的暂存文件
func (w *DocumentWorker) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			if err := w.docService.CleanupTasks(ctx); err != nil {
				w.logger.Warn("Cleanup failed", logger.Error(err))
			}
		}
	}
}
