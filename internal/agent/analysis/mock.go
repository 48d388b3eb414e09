package analysis

import (
	"context"
	"time"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

const DefaultMockDelay = 2 * time.Second

// MockAnalyzer waits for a fixed delay and returns a canned result. It never
// leaves the process.
type MockAnalyzer struct {
	delay  time.Duration
	logger logger.Logger
}

func NewMockAnalyzer(delay time.Duration, log logger.Logger) *MockAnalyzer {
	return &MockAnalyzer{
		delay:  delay,
		logger: log.Named("analyzer"),
	}
}

func (m *MockAnalyzer) Name() string {
	return "mock"
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.logger.Info("Analysis completed",
		logger.String("provider", m.Name()),
		logger.Int("inputBytes", len(text)),
		logger.Duration("delay", m.delay),
	)
	return mockResult.Clone(), nil
}

var mockResult = &models.AnalysisResult{
	Summary: models.Summary{
		Brief: []string{
			"Advanced AI technology discussion",
			"Focus on neural networks",
			"Applications in modern computing",
		},
		Detailed: "The document provides a comprehensive overview of artificial intelligence developments, particularly focusing on neural network architectures and their practical applications in modern computing environments.",
	},
	Entities: []models.EntityGroup{
		{Category: "Technologies", Items: []string{"Neural Networks", "Deep Learning", "Machine Learning"}},
		{Category: "Organizations", Items: []string{"Google AI", "OpenAI", "DeepMind"}},
	},
	Topics: []models.Topic{
		{Name: "AI Architecture", Description: "Discussion of various neural network architectures and their implementations"},
		{Name: "Applications", Description: "Real-world applications of AI in different industries"},
	},
	QA: []models.QAPair{
		{
			Question: "What are the main AI technologies discussed?",
			Answer:   "The main technologies discussed are neural networks, deep learning, and their applications in modern computing systems.",
		},
		{
			Question: "Which organizations are mentioned?",
			Answer:   "The document mentions Google AI, OpenAI, and DeepMind as key organizations in the field.",
		},
	},
	Insights: []string{
		"Strong emphasis on practical applications",
		"Focus on scalability and performance",
		"Consideration of ethical implications",
	},
}
