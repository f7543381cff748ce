package repository

import "fmt"

// analysisSystemPrompt pins the answer to a single JSON object.
const analysisSystemPrompt = `You are a news analyst. Read the article the user sends and answer with a single JSON object, no markdown, exactly in this form:

{
  "summary": "one or two sentences describing the article",
  "keywords": ["3 to 8 short keywords"],
  "sentiment": "positive | neutral | negative",
  "sentiment_score": {number between -1.0 (very negative) and 1.0 (very positive)}
}

Rules:
- keywords must contain between 3 and 8 entries
- sentiment must be exactly one of positive, neutral, negative
- sentiment_score must agree with sentiment`

// selfTestPrompt is a minimal request used to check credentials and reachability.
const selfTestPrompt = "Reply with the single word: pong"

// BuildAnalyzeRecordPrompt wraps record content into the user message.
func BuildAnalyzeRecordPrompt(content string) string {
	return fmt.Sprintf("Article:\n\"\"\"\n%s\n\"\"\"", content)
}
