package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	port "github.com/littlehunt-studios/generation-processor/internal/domain/port/provider"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/logger"
	coremocks "github.com/littlehunt-studios/generation-processor/mocks/port/core"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:  "sk-test-key",
		BaseURL: serverURL,
	}, coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)), logger.NewNoopLogger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGenerate(t *testing.T) {
	t.Run("translates normalized input onto the videos endpoint", func(t *testing.T) {
		var gotPayload map[string]any
		var polls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				assert.Equal(t, "/videos", r.URL.Path)
				assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
				writeJSON(t, w, http.StatusOK, map[string]any{
					"id":     "video_123",
					"status": "queued",
				})
				return
			}

			assert.Equal(t, "/videos/video_123", r.URL.Path)
			polls++
			status := "in_progress"
			if polls >= 2 {
				status = "completed"
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id":     "video_123",
				"status": status,
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		prediction, err := client.Generate(context.Background(), "openai/sora-2", map[string]any{
			"prompt":       "a cat surfing",
			"duration":     "10s",
			"aspect_ratio": "portrait",
		})

		require.NoError(t, err)
		assert.Equal(t, "sora-2", gotPayload["model"])
		assert.Equal(t, "a cat surfing", gotPayload["prompt"])
		assert.Equal(t, "10", gotPayload["seconds"])
		assert.Equal(t, "720x1280", gotPayload["size"])
		assert.Equal(t, port.StatusSucceeded, prediction.Status)
		assert.Equal(t, server.URL+"/videos/video_123/content", prediction.VideoURL)
	})

	t.Run("refuses to call out without an API key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the provider without a key")
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL},
			coremocks.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)), logger.NewNoopLogger())
		_, err := client.Generate(context.Background(), "openai/sora-2", map[string]any{"prompt": "x"})

		assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
	})

	t.Run("classifies a safety system rejection as moderation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{
					"message": "Your request was rejected by the safety system.",
				},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Generate(context.Background(), "openai/sora-2", map[string]any{"prompt": "x"})

		require.Error(t, err)
		assert.True(t, errs.IsContentModerationError(err))
	})

	t.Run("classifies capacity and auth failures", func(t *testing.T) {
		cases := []struct {
			name   string
			status int
			want   error
		}{
			{"at capacity", http.StatusServiceUnavailable, errs.ErrProviderCapacity},
			{"bad key", http.StatusUnauthorized, errs.ErrProviderAuth},
			{"model unavailable", http.StatusNotFound, errs.ErrModelNotFound},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeJSON(t, w, tc.status, map[string]any{
						"error": map[string]any{"message": "nope"},
					})
				}))
				defer server.Close()

				client := newTestClient(server.URL)
				_, err := client.Generate(context.Background(), "openai/sora-2", map[string]any{"prompt": "x"})

				require.Error(t, err)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("surfaces a failed job as a classified error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id":     "video_bad",
				"status": "failed",
				"error": map[string]any{
					"code":    "internal_error",
					"message": "rendering crashed",
				},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Generate(context.Background(), "openai/sora-2", map[string]any{"prompt": "x"})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrProviderUnknown)
	})
}

func TestGetJob(t *testing.T) {
	t.Run("returns a failed job with its error text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id":     "video_7",
				"status": "failed",
				"error": map[string]any{
					"code":    "moderation_blocked",
					"message": "Output flagged by moderation",
				},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		prediction, err := client.GetJob(context.Background(), "video_7")

		require.NoError(t, err)
		assert.Equal(t, port.StatusFailed, prediction.Status)
		assert.Equal(t, "Output flagged by moderation", prediction.Err)
	})
}

func TestGenerateImage(t *testing.T) {
	t.Run("returns the first image with its revised prompt", func(t *testing.T) {
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/images/generations", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"data": []map[string]any{
					{
						"url":            "https://cdn.example.com/image.png",
						"revised_prompt": "A watercolor fox",
					},
				},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		image, err := client.GenerateImage(context.Background(), "a fox", port.ImageOptions{
			Size:    "1024x1024",
			Quality: "standard",
		})

		require.NoError(t, err)
		assert.Equal(t, "gpt-image-1", gotPayload["model"])
		assert.Equal(t, "1024x1024", gotPayload["size"])
		assert.Equal(t, "https://cdn.example.com/image.png", image.URL)
		assert.Equal(t, "A watercolor fox", image.RevisedPrompt)
	})

	t.Run("classifies a flagged prompt as moderation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": "This prompt was flagged by our content policy."},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.GenerateImage(context.Background(), "bad prompt", port.ImageOptions{})

		require.Error(t, err)
		assert.True(t, errs.IsContentModerationError(err))
	})

	t.Run("rejects an empty data array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{}})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.GenerateImage(context.Background(), "a fox", port.ImageOptions{})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrProviderUnknown)
	})
}
