package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/utils"

	"golang.org/x/time/rate"
)

const (
	openAIProvider = "openai"
	maxErrorBody   = 1000
)

type openaiAIRepository struct {
	client         *http.Client
	cfg            config.AI
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOpenAIRepository creates an analyzer for any OpenAI-compatible chat
// completions endpoint. BaseURL is the API root, e.g. https://api.openai.com/v1.
func NewOpenAIRepository(cfg config.AI, log *logger.Logger) AIRepository {
	return &openaiAIRepository{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.MaxRequestPerMinute),
	}
}

func (r *openaiAIRepository) Provider() string { return openAIProvider }

func (r *openaiAIRepository) Model() string { return r.cfg.Model }

func (r *openaiAIRepository) Analyze(ctx context.Context, content string) (*dto.AnalysisResult, error) {
	payload := dto.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []dto.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: BuildAnalyzeRecordPrompt(content)},
		},
		Temperature:    0.2,
		ResponseFormat: &dto.ResponseFormat{Type: "json_object"},
	}

	status, body, err := r.sendRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		r.logger.Error("Received non-OK response from OpenAI API",
			logger.IntField("status_code", status),
			logger.StringField("model", r.cfg.Model))
		return nil, apperror.NewUpstreamError(openAIProvider, status, utils.Truncate(string(body), maxErrorBody))
	}

	var resp dto.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apperror.ShapeError{Reason: fmt.Sprintf("failed to decode chat completion: %v", err)}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &apperror.ShapeError{Reason: "no content found in chat completion"}
	}

	r.logger.Debug("OpenAI usage", logger.IntField("total_tokens", resp.Usage.TotalTokens))

	return ParseAnalysis(resp.Choices[0].Message.Content)
}

func (r *openaiAIRepository) SelfTest(ctx context.Context) (*dto.SelfTestResult, error) {
	payload := dto.ChatCompletionRequest{
		Model:     r.cfg.Model,
		Messages:  []dto.Message{{Role: "user", Content: selfTestPrompt}},
		MaxTokens: 5,
	}

	status, body, err := r.sendRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &dto.SelfTestResult{
		OK:       status == http.StatusOK,
		Status:   status,
		Body:     utils.Truncate(string(body), maxErrorBody),
		Provider: openAIProvider,
		Model:    r.cfg.Model,
	}, nil
}

// sendRequest posts payload and returns the raw status and body. Transport
// failures are returned as errors; HTTP error statuses are not.
func (r *openaiAIRepository) sendRequest(ctx context.Context, payload dto.ChatCompletionRequest) (int, []byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.Error("failed to wait for request limit", logger.ErrorField(err))
		return 0, nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := strings.TrimRight(r.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.APIKey))

	r.logger.Debug("Sending request to OpenAI API", logger.StringField("url", url), logger.StringField("model", r.cfg.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
