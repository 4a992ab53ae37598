package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/streamkit/popcorn/internal/lib/files"
	"github.com/streamkit/popcorn/internal/model"
)

// DB is a JSON-file key-value store for settings and the watch-history
// caches. One instance has process-wide lifetime and is handed to whoever
// needs it; there are no ambient globals.
type DB struct {
	dir      string
	settings *model.Settings
}

func NewDB(cacheDir string) *DB {
	dir := filepath.Join(cacheDir, "data")
	os.MkdirAll(dir, os.ModePerm)

	return &DB{
		dir: dir,
	}
}

type Settings struct {
	Languages        []string            `json:"languages"`
	SubtitlesEnabled bool                `json:"subtitlesEnabled"`
	CatalogPageSize  int                 `json:"catalogPageSize"`
	OmdbAPIKey       string              `json:"omdbApiKey"`
	OpenSubtitles    model.OpenSubtitles `json:"openSubtitles"`
}

func (d *DB) SaveSettings(settings *model.Settings) error {
	err := d.write("settings.json", Settings{
		Languages:        settings.Languages(),
		SubtitlesEnabled: settings.SubtitlesEnabled(),
		CatalogPageSize:  settings.CatalogPageSize(),
		OmdbAPIKey:       settings.OmdbAPIKey(),
		OpenSubtitles:    settings.OpenSubtitles,
	})
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	d.settings = settings

	return nil
}

func (d *DB) LoadSettings() (*model.Settings, error) {
	if d.settings == nil {
		settings := Settings{}
		err := d.read("settings.json", &settings)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}

		s := model.NewSettings()
		s.Hydrate(
			settings.Languages,
			settings.SubtitlesEnabled,
			settings.CatalogPageSize,
			settings.OmdbAPIKey,
			settings.OpenSubtitles,
		)

		d.settings = s
	}

	return d.settings, nil
}

// WatchedIDs loads the locally cached watched-id list for a media type. A
// missing file is an empty list, not an error.
func (d *DB) WatchedIDs(mediaType model.MediaType) ([]string, error) {
	file := watchedFile(mediaType)
	if !d.Exists(file) {
		return nil, nil
	}

	var ids []string
	if err := d.read(file, &ids); err != nil {
		return nil, fmt.Errorf("loading watched ids for %s: %w", mediaType, err)
	}
	return ids, nil
}

func (d *DB) SaveWatchedIDs(mediaType model.MediaType, ids []string) error {
	if err := d.write(watchedFile(mediaType), ids); err != nil {
		return fmt.Errorf("saving watched ids for %s: %w", mediaType, err)
	}
	return nil
}

// Progress loads the locally cached playback-progress map for a media type.
func (d *DB) Progress(mediaType model.MediaType) (map[string]float32, error) {
	file := progressFile(mediaType)
	if !d.Exists(file) {
		return map[string]float32{}, nil
	}

	progress := map[string]float32{}
	if err := d.read(file, &progress); err != nil {
		return nil, fmt.Errorf("loading progress for %s: %w", mediaType, err)
	}
	return progress, nil
}

func (d *DB) SaveProgress(mediaType model.MediaType, progress map[string]float32) error {
	if err := d.write(progressFile(mediaType), progress); err != nil {
		return fmt.Errorf("saving progress for %s: %w", mediaType, err)
	}
	return nil
}

func watchedFile(mediaType model.MediaType) string {
	return fmt.Sprintf("watched_%s.json", mediaType)
}

func progressFile(mediaType model.MediaType) string {
	return fmt.Sprintf("progress_%s.json", mediaType)
}

func (d *DB) Exists(file string) bool {
	return files.Exists(d.dir, file)
}

func (d *DB) write(file string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling data for '%s': %w", file, err)
	}

	err = os.WriteFile(filepath.Join(d.dir, file), b, os.ModePerm)
	if err != nil {
		return fmt.Errorf("writing data for '%s': %w", file, err)
	}

	return nil
}

func (d *DB) read(file string, data any) error {
	b, err := os.ReadFile(filepath.Join(d.dir, file))
	if err != nil {
		return fmt.Errorf("reading data for '%s': %w", file, err)
	}

	err = json.Unmarshal(b, data)
	if err != nil {
		return fmt.Errorf("unmarshalling data for '%s': %w", file, err)
	}

	return nil
}
