package airquality

import (
	"context"
	"errors"

	"github.com/yanqian/airquality-advisor/internal/infra/llm/chatgpt"
)

// ErrObjectNotFound is returned by ObjectStorage when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

// Geocoder resolves a place name into candidate locations.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]Location, error)
}

// PollutionClient fetches the current air pollution reading at a point.
type PollutionClient interface {
	CurrentPollution(ctx context.Context, coords Coordinates) (PollutantReading, error)
}

// TokenCounter estimates prompt sizes when the LLM does not report usage.
type TokenCounter interface {
	Count(model, text string) int
}

// HistoryRepository persists ready assessments.
type HistoryRepository interface {
	Append(ctx context.Context, record AssessmentRecord) error
	ListRecent(ctx context.Context, limit int) ([]AssessmentRecord, error)
}

// LocationStats counts how often each location is assessed.
type LocationStats interface {
	Increment(ctx context.Context, canonical, display string) error
	Top(ctx context.Context, limit int) ([]TrendingLocation, error)
}

// ObjectStorage abstracts blob storage used to archive reports.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}
