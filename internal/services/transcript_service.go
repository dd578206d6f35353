package services

import (
	"context"
	"strings"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// SourceText is the aggregated input handed to the prompt builder.
// FromTranscript is false when no caption text could be collected and the
// text is seeded from course metadata instead.
type SourceText struct {
	Text           string
	FromTranscript bool
}

// TranscriptService aggregates caption text across the videos of a course
type TranscriptService struct {
	cfg          *config.Config
	logger       *observability.Logger
	videoService VideoServiceInterface
}

// NewTranscriptService creates a new transcript aggregator
func NewTranscriptService(cfg *config.Config, logger *observability.Logger, videoService VideoServiceInterface) *TranscriptService {
	return &TranscriptService{
		cfg:          cfg,
		logger:       logger,
		videoService: videoService,
	}
}

// BuildSourceText collects transcripts for every video of the course, joins
// them with single spaces, and truncates to the configured character budget.
// Per-video transcript failures are absorbed: a video without captions
// contributes nothing. When no caption text at all is available the result
// falls back to the course title and description.
func (s *TranscriptService) BuildSourceText(ctx context.Context, course *models.Course) (result0 *SourceText, err error) {
	ctx, span := observability.TraceTranscriptFunction(ctx, "BuildSourceText",
		observability.AttributeCourseID(course.ID),
		attribute.Bool("course.is_playlist", course.IsPlaylist),
	)
	defer observability.FinishSpan(span, &err)

	videoIDs, err := s.resolveVideoIDs(ctx, course)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("video.count", len(videoIDs)))

	var pieces []string
	failed := 0
	for _, videoID := range videoIDs {
		transcript, fetchErr := s.videoService.FetchTranscript(ctx, videoID)
		if fetchErr != nil {
			// Tolerated: a video without captions contributes nothing
			failed++
			s.logger.Warn(ctx, "Transcript unavailable for video", map[string]interface{}{
				"video_id": videoID,
				"error":    fetchErr.Error(),
			})
			continue
		}
		if transcript != "" {
			pieces = append(pieces, transcript)
		}
	}

	span.SetAttributes(attribute.Int("video.failed_count", failed))

	combined := strings.Join(pieces, " ")
	combined = truncateText(combined, s.cfg.Quiz.MaxTranscriptChars)

	if combined != "" {
		span.SetAttributes(attribute.Int("source.length", len(combined)), attribute.String("source.kind", "transcript"))
		return &SourceText{Text: combined, FromTranscript: true}, nil
	}

	// No caption text anywhere: seed from course metadata
	seed := s.metadataSeed(ctx, course)
	span.SetAttributes(attribute.Int("source.length", len(seed)), attribute.String("source.kind", "metadata"))
	s.logger.Info(ctx, "No transcript text available, seeding from course metadata", map[string]interface{}{
		"course_id": course.ID,
	})
	return &SourceText{Text: seed, FromTranscript: false}, nil
}

// resolveVideoIDs expands a playlist course into its video IDs
func (s *TranscriptService) resolveVideoIDs(ctx context.Context, course *models.Course) ([]string, error) {
	if !course.IsPlaylist {
		return []string{course.YouTubeID}, nil
	}

	ids, err := s.videoService.PlaylistVideoIDs(ctx, course.YouTubeID)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to resolve playlist %s", course.YouTubeID)
	}
	return ids, nil
}

// metadataSeed builds prompt input from fetched or stored course metadata
func (s *TranscriptService) metadataSeed(ctx context.Context, course *models.Course) string {
	title := course.Title
	description := course.DescriptionText()

	meta, err := s.videoService.FetchMetadata(ctx, course.YouTubeID, course.IsPlaylist)
	if err == nil && meta != nil {
		if meta.Title != "" {
			title = meta.Title
		}
		if meta.Description != "" {
			description = meta.Description
		}
	}

	seed := strings.TrimSpace(title + " " + description)
	return truncateText(seed, s.cfg.Quiz.MaxTranscriptChars)
}

// truncateText caps text at maxChars, preserving the prefix
func truncateText(text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		return text[:maxChars]
	}
	return text
}
