// Package services contains the quiz generation pipeline and its collaborator clients.
package services

import (
	"context"

	"github.com/Vijayy-ai/EduTube/internal/models"
)

// VideoServiceInterface fetches video content and metadata from YouTube
type VideoServiceInterface interface {
	// PlaylistVideoIDs returns the video IDs of a playlist, capped at the
	// configured maximum.
	PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error)
	// FetchTranscript returns the plain-text transcript of a single video.
	// A missing transcript is a TRANSCRIPT_UNAVAILABLE error.
	FetchTranscript(ctx context.Context, videoID string) (string, error)
	// FetchMetadata returns the title and description of a video or playlist.
	FetchMetadata(ctx context.Context, youtubeID string, isPlaylist bool) (*models.CourseMetadata, error)
}

// AIServiceInterface is the generation provider used by the quiz pipeline
type AIServiceInterface interface {
	// ResolveModel picks a usable generation model from the provider's catalog.
	ResolveModel(ctx context.Context) (string, error)
	// GenerateContent runs a single generation call and returns the raw text output.
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}
