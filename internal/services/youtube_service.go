package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// YouTubeService fetches playlist contents, captions, and snippet metadata
// from the YouTube Data API and the timedtext caption endpoint.
type YouTubeService struct {
	cfg        *config.Config
	logger     *observability.Logger
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube content service
func NewYouTubeService(cfg *config.Config, logger *observability.Logger) *YouTubeService {
	httpClient := &http.Client{
		Timeout: config.YouTubeRequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &YouTubeService{
		cfg:        cfg,
		logger:     logger,
		httpClient: httpClient,
	}
}

type playlistItemsResponse struct {
	Items []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type snippetListResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

// timedtext json3 format: a list of caption events, each with utf8 segments
type timedTextResponse struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// PlaylistVideoIDs returns the video IDs of a playlist, capped at the configured maximum
func (s *YouTubeService) PlaylistVideoIDs(ctx context.Context, playlistID string) (result0 []string, err error) {
	ctx, span := observability.TraceYouTubeFunction(ctx, "PlaylistVideoIDs",
		attribute.String("playlist.id", playlistID),
	)
	defer observability.FinishSpan(span, &err)

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprintf("%d", s.cfg.YouTube.MaxPlaylistItems))
	params.Set("key", s.cfg.YouTube.APIKey)

	var resp playlistItemsResponse
	if err := s.getJSON(ctx, s.cfg.YouTube.BaseURL+"/playlistItems?"+params.Encode(), &resp); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to list playlist items for %s", playlistID)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails.VideoID == "" {
			continue
		}
		ids = append(ids, item.ContentDetails.VideoID)
		if len(ids) >= s.cfg.YouTube.MaxPlaylistItems {
			break
		}
	}

	span.SetAttributes(attribute.Int("playlist.video_count", len(ids)))
	return ids, nil
}

// FetchTranscript returns the plain-text transcript of a single video by
// joining the caption segments from the timedtext endpoint.
func (s *YouTubeService) FetchTranscript(ctx context.Context, videoID string) (result0 string, err error) {
	ctx, span := observability.TraceYouTubeFunction(ctx, "FetchTranscript",
		observability.AttributeVideoID(videoID),
	)
	defer observability.FinishSpan(span, &err)

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", "en")
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, "GET", s.cfg.YouTube.TimedTextURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to create transcript request")
	}
	req.Header.Set("User-Agent", "edutube/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "http_request_failed"))
		return "", contextutils.WrapErrorf(contextutils.ErrTranscriptUnavailable, "transcript request failed for video %s: %w", videoID, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("call.result", "http_error"), attribute.Int("status_code", resp.StatusCode))
		return "", contextutils.WrapErrorf(contextutils.ErrTranscriptUnavailable, "transcript endpoint returned status %d for video %s", resp.StatusCode, videoID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrTranscriptUnavailable, "failed to read transcript body for video %s: %w", videoID, err)
	}

	// An empty body means no captions exist for the video
	if len(strings.TrimSpace(string(body))) == 0 {
		span.SetAttributes(attribute.String("call.result", "empty_body"))
		return "", contextutils.WrapErrorf(contextutils.ErrTranscriptUnavailable, "no captions available for video %s", videoID)
	}

	var tt timedTextResponse
	if err := json.Unmarshal(body, &tt); err != nil {
		span.SetAttributes(attribute.String("call.result", "json_unmarshal_failed"))
		return "", contextutils.WrapErrorf(contextutils.ErrTranscriptUnavailable, "failed to parse transcript for video %s: %w", videoID, err)
	}

	var segments []string
	for _, event := range tt.Events {
		for _, seg := range event.Segs {
			text := strings.TrimSpace(seg.UTF8)
			if text != "" {
				segments = append(segments, text)
			}
		}
	}

	transcript := strings.Join(segments, " ")
	span.SetAttributes(attribute.Int("transcript.length", len(transcript)))
	return transcript, nil
}

// FetchMetadata returns the snippet title and description of a video or playlist
func (s *YouTubeService) FetchMetadata(ctx context.Context, youtubeID string, isPlaylist bool) (result0 *models.CourseMetadata, err error) {
	ctx, span := observability.TraceYouTubeFunction(ctx, "FetchMetadata",
		attribute.String("youtube.id", youtubeID),
		attribute.Bool("youtube.is_playlist", isPlaylist),
	)
	defer observability.FinishSpan(span, &err)

	resource := "videos"
	if isPlaylist {
		resource = "playlists"
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", youtubeID)
	params.Set("key", s.cfg.YouTube.APIKey)

	var resp snippetListResponse
	if err := s.getJSON(ctx, s.cfg.YouTube.BaseURL+"/"+resource+"?"+params.Encode(), &resp); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to fetch %s metadata for %s", resource, youtubeID)
	}

	if len(resp.Items) == 0 {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "no %s found with id %s", resource, youtubeID)
	}

	return &models.CourseMetadata{
		Title:       resp.Items[0].Snippet.Title,
		Description: resp.Items[0].Snippet.Description,
	}, nil
}

// getJSON performs an authenticated GET against the YouTube Data API
func (s *YouTubeService) getJSON(ctx context.Context, requestURL string, out interface{}) (err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to create HTTP request")
	}
	req.Header.Set("User-Agent", "edutube/1.0")

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error(ctx, "YouTube API request failed", err, map[string]interface{}{
			"duration": duration.String(),
		})
		return contextutils.WrapErrorf(err, "HTTP request failed after %v", duration)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return contextutils.WrapErrorf(contextutils.ErrServiceUnavailable, "YouTube API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return contextutils.WrapError(err, "failed to parse YouTube API response")
	}

	return nil
}
