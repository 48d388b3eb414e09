package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("%w: image/png", ErrUnsupportedFileType), want: "unsupported file type"},
		{err: fmt.Errorf("%w: 0 pages", ErrEmptyContent), want: "No text content found in the document"},
		{err: ErrEmptyInput, want: "Please enter some text to analyze"},
		{err: NewParseError(errors.New("malformed xref table")), want: "Failed to read document: malformed xref table"},
		{err: NewProviderError("openai", errors.New("rate limit reached")), want: "Failed to analyze document: rate limit reached"},
		{err: ErrAnalysisInProgress, want: "An analysis is already running"},
		{err: ErrNoFile, want: "Please upload a file first"},
		{err: ErrMissingFileName, want: "file name is required"},
		{err: errors.New("boom"), want: "Failed to analyze document. Please try again."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("eof")
	parseErr := fmt.Errorf("extract: %w", NewParseError(cause))
	assert.ErrorIs(t, parseErr, ErrParse)
	assert.ErrorIs(t, parseErr, cause)

	providerErr := NewProviderError("ollama", cause)
	assert.ErrorIs(t, providerErr, ErrProvider)
	assert.ErrorIs(t, providerErr, cause)
	assert.NotErrorIs(t, providerErr, ErrParse)

	assert.ErrorIs(t, ErrEmptyInput, ErrEmptyContent)
}
