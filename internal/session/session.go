// Package session keeps the per-user analyzer state: the accepted file, the
// latest result or error, and the in-flight analysis guard.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/feichai0017/document-analyzer/internal/models"
)

// Ticket identifies one analysis run started with Begin.
type Ticket struct {
	RequestID uint64
	File      *models.UploadedFile
}

type Session struct {
	mu sync.Mutex

	id        string
	file      *models.UploadedFile
	result    *models.AnalysisResult
	errMsg    string
	notice    string
	analyzing bool
	// requestID advances whenever the state an analysis was started from is
	// replaced; inflight is the id the running analysis was started with.
	requestID uint64
	inflight  uint64
	updatedAt time.Time
}

func New(id string) *Session {
	return &Session{
		id:        id,
		updatedAt: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// AcceptFile replaces the held file and clears the previous result and error.
// A result still in flight for the old file will be discarded when it settles.
func (s *Session) AcceptFile(file *models.UploadedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.result = nil
	s.errMsg = ""
	s.notice = fmt.Sprintf("File %q uploaded successfully", file.Name)
	s.requestID++
	s.touch()
}

// Begin marks an analysis as running. It fails with ErrAnalysisInProgress
// while another run is pending, and with ErrNoFile when requireFile is set
// and no file has been accepted.
func (s *Session) Begin(requireFile bool) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analyzing {
		return Ticket{}, models.ErrAnalysisInProgress
	}
	if requireFile && s.file == nil {
		return Ticket{}, models.ErrNoFile
	}

	s.analyzing = true
	s.inflight = s.requestID
	s.errMsg = ""
	s.notice = ""
	s.touch()

	return Ticket{RequestID: s.requestID, File: s.file}, nil
}

// Settle records the outcome of the run identified by t. The outcome is only
// applied when no newer file or reset happened since Begin; otherwise it is
// dropped and ErrStaleResult is returned.
func (s *Session) Settle(t Ticket, result *models.AnalysisResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analyzing && t.RequestID == s.inflight {
		s.analyzing = false
	}
	s.touch()

	if t.RequestID != s.requestID {
		return models.ErrStaleResult
	}

	if err != nil {
		s.errMsg = models.UserMessage(err)
		return nil
	}

	if result == nil {
		result = models.NewAnalysisResult()
	}
	s.result = result.Clone().Normalize()
	s.errMsg = ""
	return nil
}

// Reset drops the file, result and error. A pending run becomes stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = nil
	s.result = nil
	s.errMsg = ""
	s.notice = ""
	s.requestID++
	s.touch()
}

func (s *Session) File() *models.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

func (s *Session) Result() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.Clone()
}

func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionView{
		ID:          s.id,
		File:        s.file.Info(),
		IsAnalyzing: s.analyzing,
		Result:      s.result.Clone(),
		Error:       s.errMsg,
		Notice:      s.notice,
		UpdatedAt:   s.updatedAt,
	}
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
