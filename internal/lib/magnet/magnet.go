package magnet

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

type Magnet struct {
	Hash        string
	DisplayName string
	Trackers    []string
	WebSeeds    []string
}

// Parse decodes a magnet link. Hash is the bare info hash, without the
// urn:btih: prefix.
func Parse(link string) (Magnet, error) {
	u, err := url.Parse(link)
	if err != nil {
		return Magnet{}, fmt.Errorf("failed to parse magnet link: %w", err)
	}
	if u.Scheme != "magnet" {
		return Magnet{}, fmt.Errorf("invalid scheme for magnet: %s", u.Scheme)
	}

	var hash string
	var dn string
	trackers := make(map[string]struct{})
	webSeeds := make(map[string]struct{})

	queryParams := u.Query()
	for key, values := range queryParams {
		switch key {
		case "xt":
			for _, value := range values {
				h, ok := strings.CutPrefix(value, "urn:btih:")
				if !ok {
					continue
				}
				if hash == "" {
					hash = h
				} else if hash != h {
					return Magnet{}, fmt.Errorf("different hashes found: %s and %s", hash, h)
				}
			}
		case "dn":
			dn = values[0]
		case "tr":
			for _, value := range values {
				trackers[value] = struct{}{}
			}
		case "ws":
			for _, value := range values {
				webSeeds[value] = struct{}{}
			}
		}
	}

	if hash == "" {
		return Magnet{}, fmt.Errorf("no hash (xt) found in magnet link")
	}

	return Magnet{
		Hash:        hash,
		DisplayName: dn,
		Trackers:    slices.Sorted(maps.Keys(trackers)),
		WebSeeds:    slices.Sorted(maps.Keys(webSeeds)),
	}, nil
}
