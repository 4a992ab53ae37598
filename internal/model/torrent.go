package model

import "math"

// Health is a qualitative rating of a torrent swarm derived from its seed and
// peer counts.
type Health int

const (
	HealthBad Health = iota
	HealthMedium
	HealthGood
	HealthExcellent
	HealthUnknown
)

func (h Health) String() string {
	switch h {
	case HealthBad:
		return "bad"
	case HealthMedium:
		return "medium"
	case HealthGood:
		return "good"
	case HealthExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

type Torrent struct {
	URL     string
	Seeds   int
	Peers   int
	Quality string
	Size    string
	Hash    string
	Health  Health
}

// NewTorrent builds a torrent with its health computed from seeds and peers.
// Health is never mutated afterwards; changing the counts means building a new
// value.
func NewTorrent(url string, seeds, peers int, quality, size, hash string) Torrent {
	return Torrent{
		URL:     url,
		Seeds:   seeds,
		Peers:   peers,
		Quality: quality,
		Size:    size,
		Hash:    hash,
		Health:  CalcHealth(seeds, peers),
	}
}

// CalcHealth scores a swarm. The integer divisions before scaling are kept
// exactly as the historical formula computes them; they materially change the
// buckets for small counts and downstream consumers rely on the exact output.
func CalcHealth(seeds, peers int) Health {
	ratio := seeds
	if peers > 0 {
		ratio = seeds / peers
	}

	// Normalize to percentages: a ratio above 5 or more than 30 seeds is
	// considered as good as it gets.
	normalizedRatio := min(ratio/5*100, 100)
	normalizedSeeds := min(seeds/30*100, 100)

	// Ratio weighs 60%, seeders 40%.
	weightedTotal := float64(normalizedRatio)*0.6 + float64(normalizedSeeds)*0.4

	// Scale from [0, 100] to [0, 3].
	scaledTotal := weightedTotal * 3.0 / 100.0
	if scaledTotal < 0 {
		scaledTotal = 0
	}

	switch int(math.Floor(scaledTotal)) {
	case 0:
		return HealthBad
	case 1:
		return HealthMedium
	case 2:
		return HealthGood
	case 3:
		return HealthExcellent
	default:
		return HealthUnknown
	}
}
