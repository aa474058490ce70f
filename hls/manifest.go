package hls

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Master renders the master playlist for the given ladder. Sub-manifest
// paths are looked up by rendition height; renditions without an entry
// are skipped. Iteration always follows ladder order, so the output is
// byte-stable regardless of the order encodes finished in.
func Master(ladder Ladder, subManifests map[int]string) string {
	lines := make([]string, 0, 1+2*len(ladder))
	lines = append(lines, "#EXTM3U")
	for _, r := range ladder {
		sub, ok := subManifests[r.Height]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d", r.Bitrate, r.Width, r.Height))
		lines = append(lines, sub)
	}
	return strings.Join(lines, "\n")
}

// WriteMaster renders the master playlist and persists it atomically:
// the content lands in a temp file in the target directory and is
// renamed into place, so a partially written manifest is never
// observable at path.
func WriteMaster(path string, ladder Ladder, subManifests map[int]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "master-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(Master(ladder, subManifests)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
