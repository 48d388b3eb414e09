package models

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Every error returned by the acquisition, extraction
// and analysis steps wraps one of these.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrMissingFileName     = errors.New("file name is required")
	ErrEmptyContent        = errors.New("no text content")
	ErrParse               = errors.New("document could not be parsed")
	ErrEmptyResponse       = errors.New("empty response from analysis provider")
	ErrMalformedResponse   = errors.New("malformed response from analysis provider")
	ErrProvider            = errors.New("analysis provider error")
	ErrAnalysisInProgress  = errors.New("analysis already in progress")
	ErrNoFile              = errors.New("no file selected")
	ErrStaleResult         = errors.New("result discarded: session has moved on")
	ErrSessionNotFound     = errors.New("session not found")

	// ErrEmptyInput is returned for blank pasted text, before any session change.
	ErrEmptyInput = fmt.Errorf("%w: no text entered", ErrEmptyContent)
)

// ParseError carries the underlying reason a document could not be parsed.
type ParseError struct {
	Reason string
	Err    error
}

func NewParseError(err error) *ParseError {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return &ParseError{Reason: reason, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError wraps a transport or API failure from the analysis provider.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func NewProviderError(provider string, err error) *ProviderError {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &ProviderError{Provider: provider, Message: msg, Err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrProvider.Error(), e.Provider, e.Message)
}

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func (e *ProviderError) Unwrap() error { return e.Err }

// UserMessage converts a pipeline error into the single message shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var parseErr *ParseError
	var providerErr *ProviderError

	switch {
	case errors.Is(err, ErrUnsupportedFileType):
		return "unsupported file type"
	case errors.Is(err, ErrFileTooLarge):
		return "file is too large"
	case errors.Is(err, ErrMissingFileName):
		return "file name is required"
	case errors.Is(err, ErrEmptyInput):
		return "Please enter some text to analyze"
	case errors.Is(err, ErrEmptyContent):
		return "No text content found in the document"
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Failed to read document: %s", parseErr.Reason)
	case errors.Is(err, ErrEmptyResponse):
		return "The analysis service returned no content. Please try again."
	case errors.Is(err, ErrMalformedResponse):
		return "The analysis service returned an unreadable response. Please try again."
	case errors.As(err, &providerErr):
		return fmt.Sprintf("Failed to analyze document: %s", providerErr.Message)
	case errors.Is(err, ErrAnalysisInProgress):
		return "An analysis is already running"
	case errors.Is(err, ErrNoFile):
		return "Please upload a file first"
	case errors.Is(err, ErrStaleResult):
		return "The file changed while the analysis was running"
	case errors.Is(err, ErrSessionNotFound):
		return "session not found"
	default:
		return "Failed to analyze document. Please try again."
	}
}
