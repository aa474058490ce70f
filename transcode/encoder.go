package transcode

import (
	"context"

	"hlsforge/hls"
)

// Encoder produces one segmented HLS rendition of the input. On success
// it returns the rendition playlist path relative to the request's
// output root, e.g. "720p/playlist.m3u8". Implementations must honor
// ctx cancellation by terminating the underlying engine process.
type Encoder interface {
	Transcode(ctx context.Context, inputPath string, r hls.Rendition, outputDir string) (string, error)
}
