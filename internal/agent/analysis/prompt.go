package analysis

// SystemPrompt is sent with every analysis request.
const SystemPrompt = `You are a document analysis assistant. Analyze the document provided by the user and respond with a single JSON object with exactly these fields:
{
  "summary": {"brief": ["short key point", "..."], "detailed": "one paragraph summary"},
  "entities": [{"category": "People | Organizations | Locations | Technologies | ...", "items": ["name", "..."]}],
  "topics": [{"name": "topic name", "description": "one sentence description"}],
  "qa": [{"question": "a question the document answers", "answer": "the answer"}],
  "insights": ["notable insight", "..."]
}
Respond with JSON only.`
