package model

import (
	"errors"

	"github.com/quintans/faults"
)

var ErrInvalidMediaType = errors.New("invalid media type")

// MediaType selects which watch-history collection a call operates on.
type MediaType struct {
	val string
}

func (t MediaType) String() string {
	return t.val
}

var (
	Movies   = MediaType{"movies"}
	Shows    = MediaType{"shows"}
	Episodes = MediaType{"episodes"}
	Animes   = MediaType{"animes"}
)

var MediaTypes = []MediaType{
	Movies,
	Shows,
	Episodes,
	Animes,
}

func ParseMediaType(s string) (MediaType, error) {
	for _, t := range MediaTypes {
		if t.val == s {
			return t, nil
		}
	}

	return MediaType{}, faults.Errorf("%w: %s", ErrInvalidMediaType, s)
}

// ScrobbleStatus maps playback events onto the remote scrobble endpoints.
type ScrobbleStatus struct {
	val string
}

func (s ScrobbleStatus) String() string {
	return s.val
}

var (
	// Watching is reported when the video starts playing or is unpaused.
	Watching = ScrobbleStatus{"start"}
	// Paused is reported when the video is paused.
	Paused = ScrobbleStatus{"pause"}
	// Finished is reported when the video stops or plays to the end.
	Finished = ScrobbleStatus{"stop"}
)
