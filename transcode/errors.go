package transcode

import (
	"fmt"
	"strings"

	"hlsforge/hls"
)

// DirError reports a failure to create the output root or a rendition
// subdirectory. It is fatal to the whole request.
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

// EncodeError is a per-rendition engine failure. It carries the identity
// of the rendition it belongs to; failures are collected, not
// immediately fatal.
type EncodeError struct {
	Rendition hls.Rendition
	Err       error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Rendition.Name(), e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// EncodeErrors aggregates every failed rendition of a request, in
// ladder order.
type EncodeErrors []*EncodeError

func (e EncodeErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d renditions failed: %s", len(e), strings.Join(parts, "; "))
}

// ManifestError reports a failure to persist the master manifest of an
// otherwise successful request.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }
