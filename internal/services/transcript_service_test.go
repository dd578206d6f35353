package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/models"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVideoService is a scriptable VideoServiceInterface for pipeline tests
type fakeVideoService struct {
	playlistIDs    []string
	playlistErr    error
	transcripts    map[string]string
	transcriptErrs map[string]error
	metadata       *models.CourseMetadata
	metadataErr    error
}

func (f *fakeVideoService) PlaylistVideoIDs(_ context.Context, _ string) ([]string, error) {
	return f.playlistIDs, f.playlistErr
}

func (f *fakeVideoService) FetchTranscript(_ context.Context, videoID string) (string, error) {
	if err, ok := f.transcriptErrs[videoID]; ok {
		return "", err
	}
	return f.transcripts[videoID], nil
}

func (f *fakeVideoService) FetchMetadata(_ context.Context, _ string, _ bool) (*models.CourseMetadata, error) {
	return f.metadata, f.metadataErr
}

func testQuizConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{
			DefaultQuestionCount: 10,
			MaxQuestionsPerTier:  5,
			MaxTranscriptChars:   10000,
			PassingScore:         70,
		},
	}
}

func noopLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func TestTranscriptService_BuildSourceText(t *testing.T) {
	t.Run("single video transcript", func(t *testing.T) {
		fake := &fakeVideoService{transcripts: map[string]string{"vid1": "hello world"}}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		source, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "vid1"})
		require.NoError(t, err)
		assert.Equal(t, "hello world", source.Text)
		assert.True(t, source.FromTranscript)
	})

	t.Run("playlist joins transcripts with single space", func(t *testing.T) {
		fake := &fakeVideoService{
			playlistIDs: []string{"v1", "v2", "v3"},
			transcripts: map[string]string{"v1": "one", "v2": "two", "v3": "three"},
		}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		source, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "pl", IsPlaylist: true})
		require.NoError(t, err)
		assert.Equal(t, "one two three", source.Text)
	})

	t.Run("per video failures are tolerated", func(t *testing.T) {
		fake := &fakeVideoService{
			playlistIDs: []string{"v1", "v2", "v3"},
			transcripts: map[string]string{"v1": "alpha", "v3": "gamma"},
			transcriptErrs: map[string]error{
				"v2": contextutils.WrapError(contextutils.ErrTranscriptUnavailable, "no captions"),
			},
		}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		source, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "pl", IsPlaylist: true})
		require.NoError(t, err)
		assert.Equal(t, "alpha gamma", source.Text)
		assert.True(t, source.FromTranscript)
	})

	t.Run("truncation preserves prefix", func(t *testing.T) {
		cfg := testQuizConfig()
		cfg.Quiz.MaxTranscriptChars = 10
		fake := &fakeVideoService{transcripts: map[string]string{"vid1": "abcdefghij-THIS-IS-CUT"}}
		svc := NewTranscriptService(cfg, noopLogger(), fake)

		source, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "vid1"})
		require.NoError(t, err)
		assert.Equal(t, "abcdefghij", source.Text)
		assert.Len(t, source.Text, 10)
	})

	t.Run("no transcripts falls back to fetched metadata", func(t *testing.T) {
		fake := &fakeVideoService{
			transcriptErrs: map[string]error{
				"vid1": contextutils.WrapError(contextutils.ErrTranscriptUnavailable, "no captions"),
			},
			metadata: &models.CourseMetadata{Title: "Fetched Title", Description: "Fetched description"},
		}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		source, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "vid1", Title: "Stored Title"})
		require.NoError(t, err)
		assert.False(t, source.FromTranscript)
		assert.Contains(t, source.Text, "Fetched Title")
		assert.Contains(t, source.Text, "Fetched description")
	})

	t.Run("metadata fetch failure falls back to stored course fields", func(t *testing.T) {
		fake := &fakeVideoService{
			transcriptErrs: map[string]error{
				"vid1": contextutils.WrapError(contextutils.ErrTranscriptUnavailable, "no captions"),
			},
			metadataErr: contextutils.WrapError(contextutils.ErrServiceUnavailable, "api down"),
		}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		course := &models.Course{ID: 1, YouTubeID: "vid1", Title: "Stored Title"}
		source, err := svc.BuildSourceText(context.Background(), course)
		require.NoError(t, err)
		assert.False(t, source.FromTranscript)
		assert.Equal(t, "Stored Title", source.Text)
	})

	t.Run("playlist resolution failure propagates", func(t *testing.T) {
		fake := &fakeVideoService{
			playlistErr: contextutils.WrapError(contextutils.ErrServiceUnavailable, "api down"),
		}
		svc := NewTranscriptService(testQuizConfig(), noopLogger(), fake)

		_, err := svc.BuildSourceText(context.Background(), &models.Course{ID: 1, YouTubeID: "pl", IsPlaylist: true})
		assert.Error(t, err)
	})
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", truncateText("abc", 10))
	assert.Equal(t, "abc", truncateText("abcdef", 3))
	assert.Equal(t, "", truncateText("", 3))
	long := strings.Repeat("x", 10001)
	assert.Len(t, truncateText(long, 10000), 10000)
}
