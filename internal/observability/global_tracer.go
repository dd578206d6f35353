package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("edutube-backend")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("edutube-backend")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceAIFunction starts a new span for a generation client function.
func TraceAIFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "ai", functionName, attributes...)
}

// TraceQuizFunction starts a new span for a quiz service function.
func TraceQuizFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "quiz", functionName, attributes...)
}

// TraceTranscriptFunction starts a new span for a transcript service function.
func TraceTranscriptFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "transcript", functionName, attributes...)
}

// TraceYouTubeFunction starts a new span for a YouTube client function.
func TraceYouTubeFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "youtube", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// AttributeCourseID returns a tracing attribute for a course ID.
func AttributeCourseID(id int) attribute.KeyValue {
	return attribute.Int("course.id", id)
}

// AttributeQuizID returns a tracing attribute for a quiz ID.
func AttributeQuizID(id int) attribute.KeyValue {
	return attribute.Int("quiz.id", id)
}

// AttributeVideoID returns a tracing attribute for a YouTube video ID.
func AttributeVideoID(id string) attribute.KeyValue {
	return attribute.String("video.id", id)
}

// AttributeDifficulty returns a tracing attribute for a difficulty tier.
func AttributeDifficulty(difficulty string) attribute.KeyValue {
	return attribute.String("difficulty", difficulty)
}

// AttributeModel returns a tracing attribute for a generation model name.
func AttributeModel(model string) attribute.KeyValue {
	return attribute.String("ai.model", model)
}

// AttributeQuestionCount returns a tracing attribute for a question count.
func AttributeQuestionCount(count int) attribute.KeyValue {
	return attribute.Int("question.count", count)
}

// AttributeUserID returns a tracing attribute for a user ID.
func AttributeUserID(id int) attribute.KeyValue {
	return attribute.Int("user.id", id)
}
