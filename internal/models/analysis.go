package models

// AnalysisResult is the structured record produced by one successful analysis run.
// Every sequence is non-nil so that it encodes as [] rather than null.
type AnalysisResult struct {
	Summary  Summary       `json:"summary"`
	Entities []EntityGroup `json:"entities"`
	Topics   []Topic       `json:"topics"`
	QA       []QAPair      `json:"qa"`
	Insights []string      `json:"insights"`
}

type Summary struct {
	Brief    []string `json:"brief"`
	Detailed string   `json:"detailed"`
}

type EntityGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type Topic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewAnalysisResult returns a result with every sequence set to its empty form.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Summary:  Summary{Brief: []string{}},
		Entities: []EntityGroup{},
		Topics:   []Topic{},
		QA:       []QAPair{},
		Insights: []string{},
	}
}

// Normalize replaces nil sequences with empty ones, including nested item lists.
func (r *AnalysisResult) Normalize() *AnalysisResult {
	if r.Summary.Brief == nil {
		r.Summary.Brief = []string{}
	}
	if r.Entities == nil {
		r.Entities = []EntityGroup{}
	}
	for i := range r.Entities {
		if r.Entities[i].Items == nil {
			r.Entities[i].Items = []string{}
		}
	}
	if r.Topics == nil {
		r.Topics = []Topic{}
	}
	if r.QA == nil {
		r.QA = []QAPair{}
	}
	if r.Insights == nil {
		r.Insights = []string{}
	}
	return r
}

// Clone returns a deep copy so callers cannot mutate a published result.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := &AnalysisResult{
		Summary: Summary{
			Brief:    append([]string{}, r.Summary.Brief...),
			Detailed: r.Summary.Detailed,
		},
		Entities: make([]EntityGroup, len(r.Entities)),
		Topics:   append([]Topic{}, r.Topics...),
		QA:       append([]QAPair{}, r.QA...),
		Insights: append([]string{}, r.Insights...),
	}
	for i, g := range r.Entities {
		out.Entities[i] = EntityGroup{
			Category: g.Category,
			Items:    append([]string{}, g.Items...),
		}
	}
	return out
}
