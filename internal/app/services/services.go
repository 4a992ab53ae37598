package services

import (
	"github.com/streamkit/popcorn/internal/model"
)

// Repository is the local persistence the services depend on.
type Repository interface {
	LoadSettings() (*model.Settings, error)
	SaveSettings(settings *model.Settings) error
	WatchedIDs(mediaType model.MediaType) ([]string, error)
	SaveWatchedIDs(mediaType model.MediaType, ids []string) error
	Progress(mediaType model.MediaType) (map[string]float32, error)
	SaveProgress(mediaType model.MediaType, progress map[string]float32) error
}
