package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/agent"
	"github.com/feichai0017/document-analyzer/internal/agent/analysis"
	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/session"
	"github.com/feichai0017/document-analyzer/pkg/logger"
	"github.com/feichai0017/document-analyzer/pkg/queue"
)

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

// staticProvider answers every completion with the same content.
type staticProvider struct {
	content string
	err     error
}

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return p.content, p.err
}

// gatedAnalyzer blocks each call until release is closed or sent to.
type gatedAnalyzer struct {
	started chan string
	release chan struct{}
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{started: make(chan string, 8), release: make(chan struct{})}
}

func (g *gatedAnalyzer) Name() string { return "gated" }

func (g *gatedAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	g.started <- text
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := models.NewAnalysisResult()
	r.Insights = []string{"about: " + text}
	return r, nil
}

func (g *gatedAnalyzer) waitStarted(t *testing.T) string {
	t.Helper()
	select {
	case text := <-g.started:
		return text
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
		return ""
	}
}

func newTestService(t *testing.T, analyzer analysis.Analyzer, opts ...Option) *DocumentService {
	t.Helper()
	log := logger.NewTestLogger()

	sessions, err := session.NewManager(16, log)
	require.NoError(t, err)

	cfg := defaultServiceConfig()
	cfg.MaxFileSize = 1 << 20

	return NewService(sessions, agent.NewProcessorFactory(log, agent.FactoryOptions{PDFWorkers: 2}), analyzer, log, cfg, opts...)
}

type memoryQueue struct {
	mu       sync.Mutex
	tasks    []*queue.Task
	statuses map[string]*queue.TaskStatus
	failNext error
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{statuses: map[string]*queue.TaskStatus{}}
}

func (q *memoryQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failNext != nil {
		err := q.failNext
		q.failNext = nil
		return err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *memoryQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", queue.ErrTaskNotFound, taskID)
	}
	copied := *status
	return &copied, nil
}

func (q *memoryQueue) CancelTask(ctx context.Context, taskID string) error {
	current, err := q.GetTaskStatus(ctx, taskID)
	if err != nil {
		return err
	}
	if queue.IsTerminal(current.Status) {
		return fmt.Errorf("%w: %s", queue.ErrTaskFinished, taskID)
	}
	return q.SaveFinalStatus(ctx, &queue.TaskStatus{TaskID: taskID, Status: "cancelled"})
}

func (q *memoryQueue) SaveFinalStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	copied := *status
	q.statuses[status.TaskID] = &copied
	return nil
}

func (q *memoryQueue) lastTask() *queue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	return q.tasks[len(q.tasks)-1]
}

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	cleanedAt time.Time
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Store(ctx context.Context, r io.Reader, key string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanedAt = threshold
	return nil
}

func (m *memoryStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
