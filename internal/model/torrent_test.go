package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcHealth(t *testing.T) {
	tests := []struct {
		name   string
		seeds  int
		peers  int
		health Health
	}{
		{
			name:   "big healthy swarm",
			seeds:  150,
			peers:  10,
			health: HealthExcellent,
		},
		{
			name:   "dead swarm",
			seeds:  0,
			peers:  0,
			health: HealthBad,
		},
		{
			name:   "no peers truncates the seed bonus",
			seeds:  29,
			peers:  0,
			health: HealthMedium,
		},
		{
			name:   "ratio alone is not enough",
			seeds:  5,
			peers:  1,
			health: HealthMedium,
		},
		{
			name:   "ratio below threshold",
			seeds:  4,
			peers:  1,
			health: HealthBad,
		},
		{
			name:   "many seeds but leech heavy",
			seeds:  40,
			peers:  10,
			health: HealthMedium,
		},
		{
			name:   "ratio truncated to zero",
			seeds:  10,
			peers:  4,
			health: HealthBad,
		},
		{
			name:   "both thresholds met",
			seeds:  30,
			peers:  1,
			health: HealthExcellent,
		},
		{
			name:   "negative seeds clamp to bad",
			seeds:  -1,
			peers:  0,
			health: HealthBad,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.health, CalcHealth(tt.seeds, tt.peers))
		})
	}
}

func TestNewTorrentComputesHealth(t *testing.T) {
	torrent := NewTorrent("magnet:?xt=urn:btih:abc", 150, 10, "1080p", "1.2 GB", "abc")
	assert.Equal(t, HealthExcellent, torrent.Health)
	assert.Equal(t, "1080p", torrent.Quality)
}
