package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/models"
)

func titles(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}

func TestSections_Order(t *testing.T) {
	r := &models.AnalysisResult{
		Summary:  models.Summary{Brief: []string{"p1", "p2"}, Detailed: "details"},
		Entities: []models.EntityGroup{{Category: "People", Items: []string{"Ada"}}, {Category: "Places", Items: []string{"London"}}},
		Topics:   []models.Topic{{Name: "T1", Description: "D1"}},
		QA:       []models.QAPair{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
		Insights: []string{"i1"},
	}

	got := Sections(r)
	assert.Equal(t, []string{TitleSummary, TitleEntities, TitleTopics, TitleQA, TitleInsights}, titles(got))

	assert.Equal(t, []string{"p1", "p2"}, got[0].Blocks[0].Items)
	assert.Equal(t, "details", got[0].Blocks[1].Text)
	assert.Equal(t, "People", got[1].Blocks[0].Heading)
	assert.Equal(t, "Places", got[1].Blocks[1].Heading)
	assert.Equal(t, "D1", got[2].Blocks[0].Text)
	assert.Equal(t, "Q2", got[3].Blocks[1].Heading)
	assert.Equal(t, "A2", got[3].Blocks[1].Text)
	assert.Equal(t, []string{"i1"}, got[4].Blocks[0].Items)
}

func TestSections_EmptyResult(t *testing.T) {
	for _, r := range []*models.AnalysisResult{nil, {}, models.NewAnalysisResult()} {
		got := Sections(r)
		require.Len(t, got, 5)
		assert.Empty(t, got[1].Blocks)
		assert.Empty(t, got[2].Blocks)
		assert.Empty(t, got[3].Blocks)
		assert.Empty(t, got[4].Blocks)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "null")
	}
}
