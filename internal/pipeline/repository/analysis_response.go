package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/pkg/apperror"
)

const (
	minKeywords = 3
	maxKeywords = 8
)

// StripCodeFence removes a surrounding markdown code fence, e.g. ```json ... ```.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string (json, JSON, ...)
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseAnalysis decodes and validates an analyzer answer. Any deviation from the
// expected shape is reported as a ShapeError.
func ParseAnalysis(raw string) (*dto.AnalysisResult, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, &apperror.ShapeError{Reason: "empty analyzer answer"}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("answer is not a JSON object: %v", err)}
	}

	result := &dto.AnalysisResult{}

	summary, ok := fields["summary"].(string)
	if !ok {
		return nil, &apperror.ShapeError{Reason: "summary must be a string"}
	}
	result.Summary = strings.TrimSpace(summary)

	rawKeywords, ok := fields["keywords"].([]interface{})
	if !ok {
		return nil, &apperror.ShapeError{Reason: "keywords must be an array"}
	}
	if len(rawKeywords) < minKeywords || len(rawKeywords) > maxKeywords {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("keywords must have %d to %d entries, got %d", minKeywords, maxKeywords, len(rawKeywords))}
	}
	for _, kw := range rawKeywords {
		s, ok := kw.(string)
		if !ok {
			return nil, &apperror.ShapeError{Reason: "keywords must contain only strings"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &apperror.ShapeError{Reason: "keywords must not be empty"}
		}
		result.Keywords = append(result.Keywords, s)
	}

	sentiment, ok := fields["sentiment"].(string)
	if !ok || !entity.IsValidSentiment(sentiment) {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("sentiment must be positive, neutral or negative, got %v", fields["sentiment"])}
	}
	result.Sentiment = sentiment

	num, ok := fields["sentiment_score"].(json.Number)
	if !ok {
		return nil, &apperror.ShapeError{Reason: "sentiment_score must be a number"}
	}
	score, err := num.Float64()
	if err != nil {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("sentiment_score is not a valid number: %v", err)}
	}
	if score < -1 || score > 1 {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("sentiment_score %v outside [-1, 1]", score)}
	}
	result.SentimentScore = score

	return result, nil
}
