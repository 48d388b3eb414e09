package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResult_NormalizeNeverEncodesNull(t *testing.T) {
	r := (&AnalysisResult{Entities: []EntityGroup{{Category: "People"}}}).Normalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.JSONEq(t, `{
		"summary": {"brief": [], "detailed": ""},
		"entities": [{"category": "People", "items": []}],
		"topics": [], "qa": [], "insights": []
	}`, string(data))
}

func TestAnalysisResult_CloneIsDeep(t *testing.T) {
	r := NewAnalysisResult()
	r.Entities = append(r.Entities, EntityGroup{Category: "c", Items: []string{"a"}})
	r.Summary.Brief = append(r.Summary.Brief, "p")

	c := r.Clone()
	c.Entities[0].Items[0] = "changed"
	c.Summary.Brief[0] = "changed"

	assert.Equal(t, "a", r.Entities[0].Items[0])
	assert.Equal(t, "p", r.Summary.Brief[0])
	assert.Nil(t, (*AnalysisResult)(nil).Clone())
}
