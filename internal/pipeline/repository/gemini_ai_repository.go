package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const geminiProvider = "gemini"

// geminiAIRepository is an AIRepository backed by the Google Gemini API.
type geminiAIRepository struct {
	cfg            config.AI
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiClient builds the genai client from the analyzer configuration.
func NewGeminiClient(ctx context.Context, cfg config.AI) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg config.AI, log *logger.Logger, genAiClient *genai.Client) AIRepository {
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.MaxRequestPerMinute),
		genAiClient:    genAiClient,
	}
}

func (r *geminiAIRepository) Provider() string { return geminiProvider }

func (r *geminiAIRepository) Model() string { return r.cfg.Model }

// Analyze annotates content using the Gemini generateContent endpoint.
func (r *geminiAIRepository) Analyze(ctx context.Context, content string) (*dto.AnalysisResult, error) {
	text, err := r.generate(ctx, BuildAnalyzeRecordPrompt(content), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(analysisSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, err
	}
	return ParseAnalysis(text)
}

func (r *geminiAIRepository) SelfTest(ctx context.Context) (*dto.SelfTestResult, error) {
	result := &dto.SelfTestResult{Provider: geminiProvider, Model: r.cfg.Model}

	text, err := r.generate(ctx, selfTestPrompt, nil)
	if err != nil {
		var upstream *apperror.ProviderError
		var quota *apperror.QuotaError
		switch {
		case errors.As(err, &upstream):
			result.Status = upstream.StatusCode
			result.Body = upstream.Body
		case errors.As(err, &quota):
			result.Status = http.StatusTooManyRequests
			result.Body = quota.Body
		default:
			return nil, err
		}
		return result, nil
	}

	result.OK = true
	result.Status = http.StatusOK
	result.Body = utils.Truncate(text, maxErrorBody)
	return result, nil
}

func (r *geminiAIRepository) generate(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Model, contents, genCfg)
	if err != nil {
		r.logger.Error("Gemini generateContent failed", logger.ErrorField(err), logger.StringField("model", r.cfg.Model))
		return "", mapGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &apperror.ShapeError{Reason: "no content found in Gemini response"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// mapGeminiError converts genai API errors into the upstream error taxonomy.
// Anything else is a transport failure and is returned wrapped.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		body := utils.Truncate(fmt.Sprintf("%s: %s", apiErr.Status, apiErr.Message), maxErrorBody)
		// Gemini reports exhausted quota as RESOURCE_EXHAUSTED mentioning quota
		if apiErr.Status == "RESOURCE_EXHAUSTED" && strings.Contains(strings.ToLower(apiErr.Message), "quota") {
			return &apperror.QuotaError{Provider: geminiProvider, Body: body}
		}
		return apperror.NewUpstreamError(geminiProvider, apiErr.Code, body)
	}
	return fmt.Errorf("failed to send request to Gemini API: %w", err)
}
