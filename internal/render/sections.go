// Package render lays an AnalysisResult out as the ordered sections a client displays.
package render

import "github.com/feichai0017/document-analyzer/internal/models"

// Section titles, in display order.
const (
	TitleSummary  = "Summary"
	TitleEntities = "Key Entities"
	TitleTopics   = "Key Topics"
	TitleQA       = "Q&A"
	TitleInsights = "Additional Insights"

	TitleKeyPoints       = "Key Points"
	TitleDetailedSummary = "Detailed Summary"
)

type Section struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Block is one titled group of lines or a paragraph inside a Section.
type Block struct {
	Heading string   `json:"heading,omitempty"`
	Items   []string `json:"items"`
	Text    string   `json:"text,omitempty"`
}

// Sections renders every part of the result in fixed order. Empty parts give
// sections with no blocks.
func Sections(r *models.AnalysisResult) []Section {
	if r == nil {
		r = models.NewAnalysisResult()
	}

	summary := Section{
		Title: TitleSummary,
		Blocks: []Block{
			{Heading: TitleKeyPoints, Items: nonNil(r.Summary.Brief)},
			{Heading: TitleDetailedSummary, Items: []string{}, Text: r.Summary.Detailed},
		},
	}

	entities := Section{Title: TitleEntities, Blocks: []Block{}}
	for _, g := range r.Entities {
		entities.Blocks = append(entities.Blocks, Block{Heading: g.Category, Items: nonNil(g.Items)})
	}

	topics := Section{Title: TitleTopics, Blocks: []Block{}}
	for _, t := range r.Topics {
		topics.Blocks = append(topics.Blocks, Block{Heading: t.Name, Items: []string{}, Text: t.Description})
	}

	qa := Section{Title: TitleQA, Blocks: []Block{}}
	for _, p := range r.QA {
		qa.Blocks = append(qa.Blocks, Block{Heading: p.Question, Items: []string{}, Text: p.Answer})
	}

	insights := Section{Title: TitleInsights, Blocks: []Block{}}
	if len(r.Insights) > 0 {
		insights.Blocks = append(insights.Blocks, Block{Items: nonNil(r.Insights)})
	}

	return []Section{summary, entities, topics, qa, insights}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
