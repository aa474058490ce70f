package hls

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaster(t *testing.T) {
	ladder := Ladder{
		{Width: 1920, Height: 1080, Bitrate: 5000000},
		{Width: 1280, Height: 720, Bitrate: 2500000},
	}
	subs := map[int]string{
		1080: "1080p/playlist.m3u8",
		720:  "720p/playlist.m3u8",
	}

	want := "#EXTM3U\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080\n" +
		"1080p/playlist.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720\n" +
		"720p/playlist.m3u8"
	assert.Equal(t, want, Master(ladder, subs))
}

func TestMasterFollowsLadderOrder(t *testing.T) {
	ladder := Ladder{
		{Width: 1920, Height: 1080, Bitrate: 5000000},
		{Width: 854, Height: 480, Bitrate: 1000000},
		{Width: 1280, Height: 720, Bitrate: 2500000},
	}
	// The map carries no ordering; the rendered manifest must follow
	// the ladder regardless.
	subs := map[int]string{
		480:  "480p/playlist.m3u8",
		720:  "720p/playlist.m3u8",
		1080: "1080p/playlist.m3u8",
	}

	out := Master(ladder, subs)
	idx1080 := indexOf(t, out, "1080p/playlist.m3u8")
	idx480 := indexOf(t, out, "480p/playlist.m3u8")
	idx720 := indexOf(t, out, "720p/playlist.m3u8")
	assert.Less(t, idx1080, idx480)
	assert.Less(t, idx480, idx720)
}

func TestMasterSkipsMissingRenditions(t *testing.T) {
	ladder := Ladder{
		{Width: 1920, Height: 1080, Bitrate: 5000000},
		{Width: 1280, Height: 720, Bitrate: 2500000},
	}
	out := Master(ladder, map[int]string{720: "720p/playlist.m3u8"})
	assert.NotContains(t, out, "1080p")
	assert.Contains(t, out, "720p/playlist.m3u8")
}

func TestWriteMaster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.m3u8")
	ladder := Ladder{{Width: 1280, Height: 720, Bitrate: 2500000}}
	subs := map[int]string{720: "720p/playlist.m3u8"}

	require.NoError(t, WriteMaster(path, ladder, subs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Master(ladder, subs), string(data))

	// No temp file may survive the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "master.m3u8", entries[0].Name())
}

func TestWriteMasterMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "master.m3u8")
	err := WriteMaster(path, Ladder{{Width: 1280, Height: 720, Bitrate: 2500000}}, nil)
	assert.Error(t, err)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
