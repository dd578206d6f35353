package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GeminiService talks to the Generative Language REST API. It resolves a
// usable model from the provider's catalog and runs generation calls with a
// fixed generation config.
type GeminiService struct {
	cfg        *config.Config
	logger     *observability.Logger
	httpClient *http.Client
}

// NewGeminiService creates a new generation client
func NewGeminiService(cfg *config.Config, logger *observability.Logger) *GeminiService {
	// Keep the client timeout slightly under the generation budget so context
	// cancellation wins.
	httpClient := &http.Client{
		Timeout: config.GenerationTimeout - 5*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &GeminiService{
		cfg:        cfg,
		logger:     logger,
		httpClient: httpClient,
	}
}

type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type generateContentRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ResolveModel lists the provider's models and picks one: first a preferred
// name (substring match, in order), then any non-embedding model, else fails.
func (s *GeminiService) ResolveModel(ctx context.Context) (result0 string, err error) {
	ctx, span := observability.TraceAIFunction(ctx, "ResolveModel")
	defer observability.FinishSpan(span, &err)

	if s.cfg.Gemini.APIKey == "" {
		span.SetAttributes(attribute.String("call.result", "missing_api_key"))
		return "", contextutils.WrapError(contextutils.ErrAIProviderUnavailable, "no Gemini API key configured")
	}

	names, err := s.listModels(ctx)
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.Int("models.count", len(names)))

	// Walk the preference list in order
	for _, preferred := range s.cfg.Gemini.PreferredModels {
		for _, name := range names {
			if strings.Contains(name, preferred) {
				span.SetAttributes(observability.AttributeModel(name), attribute.String("resolution", "preferred"))
				return name, nil
			}
		}
	}

	// Fall back to any model that is not an embedding model
	for _, name := range names {
		if !strings.Contains(name, "embedding") {
			span.SetAttributes(observability.AttributeModel(name), attribute.String("resolution", "fallback"))
			s.logger.Warn(ctx, "No preferred model available, falling back", map[string]interface{}{
				"model": name,
			})
			return name, nil
		}
	}

	span.SetAttributes(attribute.String("call.result", "no_model"))
	return "", contextutils.WrapError(contextutils.ErrNoModelAvailable, "no usable generation model in provider catalog")
}

// listModels fetches the model catalog and strips the "models/" name prefix
func (s *GeminiService) listModels(ctx context.Context) (result0 []string, err error) {
	requestURL := fmt.Sprintf("%s/models?key=%s", s.cfg.Gemini.BaseURL, s.cfg.Gemini.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to create list models request")
	}
	req.Header.Set("User-Agent", "edutube/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrAIProviderUnavailable, "list models request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read list models response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, contextutils.WrapErrorf(contextutils.ErrAIProviderUnavailable, "list models failed with status %d: %s", resp.StatusCode, string(body))
	}

	var listResp listModelsResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, contextutils.WrapError(err, "failed to parse list models response")
	}

	names := make([]string, 0, len(listResp.Models))
	for _, m := range listResp.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

// GenerateContent runs a generation call against the given model. A failed
// call is retried once against the configured fallback model before failing.
func (s *GeminiService) GenerateContent(ctx context.Context, model, prompt string) (result0 string, err error) {
	ctx, span := observability.TraceAIFunction(ctx, "GenerateContent",
		observability.AttributeModel(model),
		attribute.Int("prompt.length", len(prompt)),
	)
	defer observability.FinishSpan(span, &err)

	if s.cfg.Gemini.APIKey == "" {
		return "", contextutils.WrapError(contextutils.ErrAIProviderUnavailable, "no Gemini API key configured")
	}

	text, err := s.generateOnce(ctx, model, prompt)
	if err == nil {
		span.SetAttributes(attribute.String("call.result", "success"))
		return text, nil
	}

	// One retry against the fallback model, unless we already used it
	fallback := s.cfg.Gemini.FallbackModel
	if fallback == "" || fallback == model {
		return "", err
	}

	s.logger.Warn(ctx, "Generation failed, retrying with fallback model", map[string]interface{}{
		"model":    model,
		"fallback": fallback,
		"error":    err.Error(),
	})
	span.SetAttributes(attribute.String("retry.model", fallback))

	text, retryErr := s.generateOnce(ctx, fallback, prompt)
	if retryErr != nil {
		span.SetAttributes(attribute.String("call.result", "retry_failed"))
		err = contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "generation failed for %s and fallback %s: %v", model, fallback, retryErr)
		return "", err
	}

	err = nil
	span.SetAttributes(attribute.String("call.result", "retry_success"))
	return text, nil
}

// generateOnce performs a single generateContent call
func (s *GeminiService) generateOnce(ctx context.Context, model, prompt string) (result0 string, err error) {
	reqBody := generateContentRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     s.cfg.Gemini.Temperature,
			TopP:            s.cfg.Gemini.TopP,
			TopK:            s.cfg.Gemini.TopK,
			MaxOutputTokens: s.cfg.Gemini.MaxOutputTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to marshal generation request")
	}

	requestURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.cfg.Gemini.BaseURL, model, s.cfg.Gemini.APIKey)

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to create generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "edutube/1.0")

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "generation request failed after %v: %w", duration, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	s.logger.Info(ctx, "Generation HTTP request completed", map[string]interface{}{
		"model":       model,
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to read generation response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "generation failed with status %d for model %s: %s", resp.StatusCode, model, string(body))
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "failed to parse generation response: %w", err)
	}

	if genResp.Error != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "provider error %d (%s): %s", genResp.Error.Code, genResp.Error.Status, genResp.Error.Message)
	}

	if len(genResp.Candidates) == 0 {
		return "", contextutils.WrapError(contextutils.ErrGenerationFailed, "no candidates in generation response")
	}

	var parts []string
	for _, part := range genResp.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}

	text := strings.Join(parts, "")
	if text == "" {
		return "", contextutils.WrapError(contextutils.ErrGenerationFailed, "generation returned empty content")
	}

	return text, nil
}
