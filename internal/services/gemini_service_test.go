package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vijayy-ai/EduTube/internal/config"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{
			APIKey:          "test-key",
			BaseURL:         baseURL,
			PreferredModels: []string{"gemini-1.5-flash", "gemini-1.5-pro"},
			FallbackModel:   "gemini-1.5-pro",
			Temperature:     0.7,
			TopP:            1.0,
			TopK:            32,
			MaxOutputTokens: 8192,
		},
	}
}

func modelCatalog(names ...string) map[string]interface{} {
	models := make([]map[string]string, 0, len(names))
	for _, name := range names {
		models = append(models, map[string]string{"name": "models/" + name})
	}
	return map[string]interface{}{"models": models}
}

func TestGeminiService_ResolveModel(t *testing.T) {
	t.Run("prefers configured models in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/models", r.URL.Path)
			_ = json.NewEncoder(w).Encode(modelCatalog("gemini-1.5-pro-001", "gemini-1.5-flash-002", "text-embedding-004"))
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		model, err := svc.ResolveModel(context.Background())
		require.NoError(t, err)
		// flash is first in the preference list even though pro is listed first
		assert.Equal(t, "gemini-1.5-flash-002", model)
	})

	t.Run("falls back to any non embedding model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(modelCatalog("text-embedding-004", "some-experimental-model"))
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		model, err := svc.ResolveModel(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "some-experimental-model", model)
	})

	t.Run("only embedding models means no model available", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(modelCatalog("text-embedding-004", "embedding-001"))
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		_, err := svc.ResolveModel(context.Background())
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeNoModelAvailable, contextutils.GetErrorCode(err))
		assert.True(t, contextutils.IsGenerationRecoverable(err))
	})

	t.Run("missing api key is provider unavailable", func(t *testing.T) {
		cfg := geminiTestConfig("http://unused")
		cfg.Gemini.APIKey = ""

		svc := NewGeminiService(cfg, noopLogger())
		_, err := svc.ResolveModel(context.Background())
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeAIProviderUnavailable, contextutils.GetErrorCode(err))
	})

	t.Run("catalog endpoint failure is provider unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		_, err := svc.ResolveModel(context.Background())
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeAIProviderUnavailable, contextutils.GetErrorCode(err))
	})
}

func generateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
}

func TestGeminiService_GenerateContent(t *testing.T) {
	t.Run("returns candidate text", func(t *testing.T) {
		var gotBody generateContentRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(generateResponse("1. Q?\nA) x (correct)\nB) y\nC) z\nD) w"))
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		text, err := svc.GenerateContent(context.Background(), "gemini-1.5-flash", "make questions")
		require.NoError(t, err)
		assert.Contains(t, text, "1. Q?")

		// Fixed generation config is always sent
		assert.Equal(t, 0.7, gotBody.GenerationConfig.Temperature)
		assert.Equal(t, 1.0, gotBody.GenerationConfig.TopP)
		assert.Equal(t, 32, gotBody.GenerationConfig.TopK)
		assert.Equal(t, 8192, gotBody.GenerationConfig.MaxOutputTokens)
		require.Len(t, gotBody.Contents, 1)
		assert.Equal(t, "make questions", gotBody.Contents[0].Parts[0].Text)
	})

	t.Run("retries once against fallback model", func(t *testing.T) {
		calls := []string{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, r.URL.Path)
			if len(calls) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(generateResponse("fallback output"))
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		text, err := svc.GenerateContent(context.Background(), "gemini-1.5-flash", "prompt")
		require.NoError(t, err)
		assert.Equal(t, "fallback output", text)

		require.Len(t, calls, 2)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", calls[0])
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", calls[1])
	})

	t.Run("failure on both models is generation failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		_, err := svc.GenerateContent(context.Background(), "gemini-1.5-flash", "prompt")
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
		assert.True(t, contextutils.IsGenerationRecoverable(err))
	})

	t.Run("no second call when resolved model is the fallback", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := NewGeminiService(geminiTestConfig(server.URL), noopLogger())
		_, err := svc.GenerateContent(context.Background(), "gemini-1.5-pro", "prompt")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("empty candidates fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
		}))
		defer server.Close()

		cfg := geminiTestConfig(server.URL)
		cfg.Gemini.FallbackModel = "gemini-1.5-flash" // same as requested: no retry
		svc := NewGeminiService(cfg, noopLogger())
		_, err := svc.GenerateContent(context.Background(), "gemini-1.5-flash", "prompt")
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})
}
