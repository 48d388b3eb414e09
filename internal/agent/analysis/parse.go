package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feichai0017/document-analyzer/internal/models"
)

// ParseResult maps provider content onto an AnalysisResult. Each field falls
// back to its empty form when missing or of the wrong type.
func ParseResult(content string) (*models.AnalysisResult, error) {
	body := unwrapFence(strings.TrimSpace(content))
	if body == "" {
		return nil, models.ErrEmptyResponse
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", models.ErrMalformedResponse)
	}

	result := models.NewAnalysisResult()

	if summary, ok := raw["summary"].(map[string]interface{}); ok {
		result.Summary.Brief = stringList(summary["brief"])
		result.Summary.Detailed, _ = summary["detailed"].(string)
	}

	for _, obj := range objectList(raw["entities"]) {
		category, _ := obj["category"].(string)
		result.Entities = append(result.Entities, models.EntityGroup{
			Category: category,
			Items:    stringList(obj["items"]),
		})
	}

	for _, obj := range objectList(raw["topics"]) {
		name, _ := obj["name"].(string)
		description, _ := obj["description"].(string)
		result.Topics = append(result.Topics, models.Topic{Name: name, Description: description})
	}

	for _, obj := range objectList(raw["qa"]) {
		question, _ := obj["question"].(string)
		answer, _ := obj["answer"].(string)
		result.QA = append(result.QA, models.QAPair{Question: question, Answer: answer})
	}

	result.Insights = stringList(raw["insights"])

	return result, nil
}

// unwrapFence strips a surrounding markdown code fence such as ```json ... ```.
func unwrapFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

func stringList(v interface{}) []string {
	out := []string{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func objectList(v interface{}) []map[string]interface{} {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
