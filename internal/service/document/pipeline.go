package document

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/session"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

func (s *DocumentService) CreateSession() models.SessionView {
	return s.sessions.Create().View()
}

func (s *DocumentService) GetSession(sessionID string) (models.SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	return sess.View(), nil
}

func (s *DocumentService) ResetSession(sessionID string) (models.SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	sess.Reset()
	return sess.View(), nil
}

func (s *DocumentService) DeleteSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

func (s *DocumentService) GetResult(sessionID string) (*models.AnalysisResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Result(), nil
}

// AcceptFile 校验并保存上传文件; 被拒绝时会话保持不变
func (s *DocumentService) AcceptFile(ctx context.Context, sessionID string, header *multipart.FileHeader, source string) (models.SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	log := s.ctxLogger.FromContext(ctx)

	file, err := s.validator.ValidateFile(header)
	if err != nil {
		log.Info("Upload rejected",
			logger.String("filename", header.Filename),
			logger.String("source", source),
			logger.Error(err),
		)
		return sess.View(), err
	}

	sess.AcceptFile(file)
	log.Info("File accepted",
		logger.String("filename", file.Name),
		logger.String("mimeType", file.MimeType),
		logger.Int64("size", file.Size),
		logger.String("source", source),
	)
	return sess.View(), nil
}

// Analyze 提取会话文件的文本并调用分析服务
func (s *DocumentService) Analyze(ctx context.Context, sessionID string) (models.SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}

	ticket, err := sess.Begin(true)
	if err != nil {
		return sess.View(), err
	}

	err = s.run(ctx, sess, ticket, func(ctx context.Context) (*models.AnalysisResult, error) {
		extracted, err := s.extractor.Extract(ctx, ticket.File)
		if err != nil {
			return nil, err
		}
		return s.analyzer.Analyze(ctx, extracted.Text)
	})
	return sess.View(), err
}

// AnalyzeText 分析直接粘贴的文本
func (s *DocumentService) AnalyzeText(ctx context.Context, sessionID string, text string) (models.SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}

	if strings.TrimSpace(text) == "" {
		return sess.View(), models.ErrEmptyInput
	}

	ticket, err := sess.Begin(false)
	if err != nil {
		return sess.View(), err
	}

	err = s.run(ctx, sess, ticket, func(ctx context.Context) (*models.AnalysisResult, error) {
		return s.analyzer.Analyze(ctx, text)
	})
	return sess.View(), err
}

// run executes one analysis and always settles the ticket, even on panic.
func (s *DocumentService) run(ctx context.Context, sess *session.Session, ticket session.Ticket, fn func(context.Context) (*models.AnalysisResult, error)) (err error) {
	log := s.ctxLogger.FromContext(logger.WithSessionID(ctx, sess.ID()))

	defer func() {
		if r := recover(); r != nil {
			_ = sess.Settle(ticket, nil, fmt.Errorf("analysis panicked: %v", r))
			panic(r)
		}
	}()

	result, runErr := fn(ctx)

	if settleErr := sess.Settle(ticket, result, runErr); settleErr != nil {
		log.Info("Discarded stale analysis outcome",
			logger.Uint64("requestId", ticket.RequestID),
			logger.Bool("failed", runErr != nil),
		)
		return settleErr
	}

	if runErr != nil {
		log.Warn("Analysis failed",
			logger.Uint64("requestId", ticket.RequestID),
			logger.String("message", models.UserMessage(runErr)),
			logger.Error(runErr),
		)
		return runErr
	}

	log.Info("Analysis settled", logger.Uint64("requestId", ticket.RequestID))
	return nil
}
