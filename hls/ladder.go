package hls

import "fmt"

// Rendition is one resolution/bitrate variant of a source video.
// Bitrate is the target video bitrate in bits per second.
type Rendition struct {
	Width   int `json:"width" mapstructure:"width"`
	Height  int `json:"height" mapstructure:"height"`
	Bitrate int `json:"bitrate" mapstructure:"bitrate"`
}

// Name returns the directory name used for this rendition's output, e.g. "720p".
func (r Rendition) Name() string {
	return fmt.Sprintf("%dp", r.Height)
}

// SubManifest returns the rendition playlist path relative to the output root.
func (r Rendition) SubManifest() string {
	return fmt.Sprintf("%dp/playlist.m3u8", r.Height)
}

// Ladder is the ordered set of renditions to produce for a request.
// Declared order defines master manifest line order, independent of
// completion order. A ladder is shared read-only between encode tasks
// and must not be mutated after construction.
type Ladder []Rendition

// DefaultLadder returns the standard six-rung ladder used when no ladder
// is configured.
func DefaultLadder() Ladder {
	return Ladder{
		{Width: 1920, Height: 1080, Bitrate: 5000000},
		{Width: 1280, Height: 720, Bitrate: 2500000},
		{Width: 854, Height: 480, Bitrate: 1000000},
		{Width: 640, Height: 360, Bitrate: 750000},
		{Width: 426, Height: 240, Bitrate: 400000},
		{Width: 256, Height: 144, Bitrate: 150000},
	}
}

// Validate checks that the ladder is non-empty, that every rung has
// positive dimensions and bitrate, and that heights are unique (height
// is the rendition key within a ladder).
func (l Ladder) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("ladder must contain at least one rendition")
	}
	seen := make(map[int]bool, len(l))
	for _, r := range l {
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("rendition %dx%d: dimensions must be positive", r.Width, r.Height)
		}
		if r.Bitrate <= 0 {
			return fmt.Errorf("rendition %s: bitrate must be positive", r.Name())
		}
		if seen[r.Height] {
			return fmt.Errorf("duplicate rendition height %d", r.Height)
		}
		seen[r.Height] = true
	}
	return nil
}
