package model

import "time"

// Movie is a normalized catalog entry. Rating is always on a 0-5 scale;
// providers convert whatever scale their upstream uses before building one.
type Movie struct {
	Title           string
	Year            int
	PosterURL       string
	ImdbID          string
	Rating          float32
	Torrents        []Torrent
	CurrentTorrent  *Torrent
	Genres          []string
	Summary         string
	Runtime         int
	TrailerCode     string
	Subtitles       []Subtitle
	CurrentSubtitle *Subtitle
}

// Show starts out minimally filled from a listing call and is enriched later.
// ImdbID may be empty until metadata is resolved. Year is a string because
// upstreams disagree on its type.
type Show struct {
	ImdbID    string
	Title     string
	Year      string
	PosterURL string
	Rating    float32
	Genres    []string
	Status    string
	Synopsis  string
	AnimeID   int
}

type Episode struct {
	Season          int
	Episode         int
	Title           string
	Overview        string
	Aired           time.Time
	TvdbID          string
	Torrents        []Torrent
	CurrentTorrent  *Torrent
	PosterURL       string
	Show            *Show
	Subtitles       []Subtitle
	CurrentSubtitle *Subtitle
}

type Subtitle struct {
	Language string
	Link     string
	ISO639   string
}
