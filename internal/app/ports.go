package app

import (
	"context"

	"github.com/quintans/tvshelf/internal/model"
)

const (
	Version = "0.1"
	Name    = "tvshelf"
)

type EventBus interface {
	Publish(m Message)
}

type Message interface {
	Kind() string
}

// KeyValue is a durable store of string blobs.
// Get reports false when the key was never set.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
}

type CatalogClient interface {
	PopularMovies(ctx context.Context) ([]model.Show, error)
	PopularSeries(ctx context.Context) ([]model.Show, error)
	Search(ctx context.Context, query string) ([]model.Show, error)
	Details(ctx context.Context, id int, kind model.ShowType) (*model.ShowDetails, error)
	UpdatesSince(ctx context.Context, since int64) ([]model.Update, error)
}

type Secrets interface {
	GetAPIKey() (string, error)
	SetAPIKey(value string) error
}
