package model

type Settings struct {
	languages        []string
	subtitlesEnabled bool
	catalogPageSize  int
	omdbAPIKey       string
	OpenSubtitles    OpenSubtitles
}

type OpenSubtitles struct {
	Username string `json:"username"`
}

func NewSettings() *Settings {
	return &Settings{
		languages:        []string{"en"},
		subtitlesEnabled: true,
		catalogPageSize:  30,
		OpenSubtitles: OpenSubtitles{
			Username: "",
		},
	}
}

func (m *Settings) Languages() []string {
	return m.languages
}

func (m *Settings) SetLanguages(languages []string) {
	m.languages = languages
}

func (m *Settings) SubtitlesEnabled() bool {
	return m.subtitlesEnabled
}

func (m *Settings) SetSubtitlesEnabled(enabled bool) {
	m.subtitlesEnabled = enabled
}

func (m *Settings) CatalogPageSize() int {
	return m.catalogPageSize
}

func (m *Settings) SetCatalogPageSize(size int) {
	if size <= 0 {
		size = 30
	}
	m.catalogPageSize = size
}

func (m *Settings) OmdbAPIKey() string {
	return m.omdbAPIKey
}

func (m *Settings) SetOmdbAPIKey(key string) {
	m.omdbAPIKey = key
}

func (m *Settings) Hydrate(
	languages []string,
	subtitlesEnabled bool,
	catalogPageSize int,
	omdbAPIKey string,
	openSubtitles OpenSubtitles,
) {
	m.languages = languages
	m.subtitlesEnabled = subtitlesEnabled
	m.catalogPageSize = catalogPageSize
	m.omdbAPIKey = omdbAPIKey
	m.OpenSubtitles = openSubtitles
}
