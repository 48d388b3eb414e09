package models

import "time"

// SessionView is a read-only snapshot of one analyzer session.
type SessionView struct {
	ID          string          `json:"id"`
	File        *FileInfo       `json:"file"`
	IsAnalyzing bool            `json:"isAnalyzing"`
	Result      *AnalysisResult `json:"result"`
	Error       string          `json:"error,omitempty"`
	Notice      string          `json:"notice,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
