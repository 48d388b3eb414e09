package models

import (
	"time"
)

// 支持的 MIME 类型
const (
	MimeTypePDF  = "application/pdf"
	MimeTypeText = "text/plain"
)

// FileType 文件类型
type FileType string

const (
	PDF  FileType = "pdf"
	Text FileType = "text"
)

// FileTypeOf maps an accepted MIME type to its FileType.
func FileTypeOf(mimeType string) FileType {
	if mimeType == MimeTypePDF {
		return PDF
	}
	return Text
}

// UploadedFile 已接受的上传文件，接受后不可修改
type UploadedFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	Content    []byte    `json:"-"`
	Hash       string    `json:"hash"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileInfo is the content-free view of an UploadedFile returned to clients.
type FileInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	Hash       string    `json:"hash"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (f *UploadedFile) Info() *FileInfo {
	if f == nil {
		return nil
	}
	return &FileInfo{
		Name:       f.Name,
		Size:       f.Size,
		MimeType:   f.MimeType,
		Hash:       f.Hash,
		UploadedAt: f.UploadedAt,
	}
}

// ExtractedText 提取出的纯文本
type ExtractedText struct {
	Text      string `json:"text"`
	PageCount int    `json:"pageCount"`
	Source    string `json:"source"`
}

// DocumentMetadata 文档元数据
type DocumentMetadata struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Author    string                 `json:"author"`
	FileType  FileType               `json:"fileType"`
	FileSize  int64                  `json:"fileSize"`
	MimeType  string                 `json:"mimeType"`
	Pages     int                    `json:"pages"`
	CreatedAt time.Time              `json:"createdAt"`
	Hash      string                 `json:"hash"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

type ProcessingTask struct {
	ID        string            `json:"id"`
	Status    ProcessingStatus  `json:"status"`
	Type      string            `json:"type"`
	Priority  int               `json:"priority"`
	Progress  float64           `json:"progress"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusRunning   ProcessingStatus = "running"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
	StatusCancelled ProcessingStatus = "cancelled"
)
