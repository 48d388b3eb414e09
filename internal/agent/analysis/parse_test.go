package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/models"
)

func TestParseResult_Full(t *testing.T) {
	content := `{
		"summary": {"brief": ["a", "b"], "detailed": "long form"},
		"entities": [{"category": "People", "items": ["Ada", "Alan"]}],
		"topics": [{"name": "Computing", "description": "History of computing"}],
		"qa": [{"question": "Who?", "answer": "Ada"}],
		"insights": ["x"]
	}`

	got, err := ParseResult(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Summary.Brief)
	assert.Equal(t, "long form", got.Summary.Detailed)
	assert.Equal(t, []models.EntityGroup{{Category: "People", Items: []string{"Ada", "Alan"}}}, got.Entities)
	assert.Equal(t, []models.Topic{{Name: "Computing", Description: "History of computing"}}, got.Topics)
	assert.Equal(t, []models.QAPair{{Question: "Who?", Answer: "Ada"}}, got.QA)
	assert.Equal(t, []string{"x"}, got.Insights)
}

func TestParseResult_Defensive(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, r *models.AnalysisResult)
	}{
		{
			name:    "summary only",
			content: `{"summary":{"brief":["x"],"detailed":"y"}}`,
			check: func(t *testing.T, r *models.AnalysisResult) {
				assert.Equal(t, []string{"x"}, r.Summary.Brief)
				assert.Equal(t, "y", r.Summary.Detailed)
				assert.Empty(t, r.Entities)
				assert.Empty(t, r.Topics)
				assert.Empty(t, r.QA)
				assert.Empty(t, r.Insights)
			},
		},
		{
			name:    "empty object",
			content: `{}`,
			check: func(t *testing.T, r *models.AnalysisResult) {
				assert.Equal(t, models.NewAnalysisResult(), r)
			},
		},
		{
			name:    "wrong types treated as absent",
			content: `{"summary":"text","entities":{"a":1},"topics":"none","qa":42,"insights":"one"}`,
			check: func(t *testing.T, r *models.AnalysisResult) {
				assert.Equal(t, models.NewAnalysisResult(), r)
			},
		},
		{
			name:    "non-string items dropped",
			content: `{"summary":{"brief":["a",1,null,"b"]},"insights":[true,"keep"],"entities":[{"category":"C","items":["i",{"x":1}]},"junk"]}`,
			check: func(t *testing.T, r *models.AnalysisResult) {
				assert.Equal(t, []string{"a", "b"}, r.Summary.Brief)
				assert.Equal(t, []string{"keep"}, r.Insights)
				require.Len(t, r.Entities, 1)
				assert.Equal(t, []string{"i"}, r.Entities[0].Items)
			},
		},
		{
			name:    "entity without items",
			content: `{"entities":[{"category":"Places"}]}`,
			check: func(t *testing.T, r *models.AnalysisResult) {
				require.Len(t, r.Entities, 1)
				assert.NotNil(t, r.Entities[0].Items)
				assert.Empty(t, r.Entities[0].Items)
			},
		},
		{
			name:    "fenced json",
			content: "```json\n{\"insights\":[\"fenced\"]}\n```",
			check: func(t *testing.T, r *models.AnalysisResult) {
				assert.Equal(t, []string{"fenced"}, r.Insights)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.content)
			require.NoError(t, err)
			tt.check(t, got)

			// sequences always encode as [] rather than null
			data, err := json.Marshal(got)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "null")
		})
	}
}

func TestParseResult_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: models.ErrEmptyResponse},
		{name: "whitespace", content: "  \n ", wantErr: models.ErrEmptyResponse},
		{name: "not json", content: "Sorry, I cannot help with that.", wantErr: models.ErrMalformedResponse},
		{name: "array", content: `[1,2,3]`, wantErr: models.ErrMalformedResponse},
		{name: "null", content: `null`, wantErr: models.ErrMalformedResponse},
		{name: "truncated json", content: `{"summary": {"brief": [`, wantErr: models.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
