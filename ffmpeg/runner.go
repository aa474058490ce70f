package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hlsforge/config"
	"hlsforge/hls"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Runner drives the ffmpeg binary to produce one HLS rendition per
// call. It satisfies transcode.Encoder.
type Runner struct {
	cfg       *config.Config
	extraArgs []string
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	// Ensure the ffmpeg binary is reachable before accepting any work
	if _, err := exec.LookPath(cfg.FFBin); err != nil {
		return nil, fmt.Errorf("ffmpeg binary not found or not in PATH: %s", cfg.FFBin)
	}

	extraArgs, err := ParseExtraArgs(cfg.FFExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid FF_EXTRA_ARGS: %w", err)
	}

	return &Runner{
		cfg:       cfg,
		extraArgs: extraArgs,
	}, nil
}

// Transcode encodes one rendition of inputPath into outputDir: H.264
// video scaled to the rendition's dimensions and capped at its bitrate,
// AAC audio, 10-second VOD segments named segment%03d.ts, indexed by
// playlist.m3u8. On success it returns the playlist path relative to
// the output root.
func (r *Runner) Transcode(ctx context.Context, inputPath string, ren hls.Rendition, outputDir string) (string, error) {
	// Check system resources before starting
	if err := r.checkResources(outputDir); err != nil {
		return "", fmt.Errorf("insufficient system resources: %w", err)
	}

	args := r.buildArgs(inputPath, ren, outputDir)

	cmd := exec.CommandContext(ctx, r.cfg.FFBin, args...)
	var outputBuf bytes.Buffer
	cmd.Stdout = &outputBuf
	cmd.Stderr = &outputBuf

	log.Printf("Encoding %s: %s %s", ren.Name(), cmd.Path, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		// A killed process reports "signal: killed"; surface the
		// context error instead so timeouts and cancellations are
		// recognizable upstream.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("ffmpeg execution failed: %w: %s", err, lastLines(outputBuf.String(), 5))
	}

	return ren.SubManifest(), nil
}

func (r *Runner) buildArgs(inputPath string, ren hls.Rendition, outputDir string) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=w=%d:h=%d", ren.Width, ren.Height),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:v", strconv.Itoa(ren.Bitrate),
		"-hls_time", "10",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outputDir, "segment%03d.ts"),
	}
	args = append(args, r.extraArgs...)
	return append(args, filepath.Join(outputDir, "playlist.m3u8"))
}

// checkResources verifies that the system has enough free resources to start a new encode.
func (r *Runner) checkResources(outputDir string) error {
	// CPU
	p, err := cpu.Percent(time.Second, false)
	if err != nil {
		log.Printf("Warning: could not get CPU usage: %v", err)
	} else if len(p) > 0 && p[0] > (100.0-r.cfg.ThrottleCPU) {
		return fmt.Errorf("not enough idle CPU. Current usage: %.2f%%, Idle threshold: %.2f%%", p[0], r.cfg.ThrottleCPU)
	}

	// Memory
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("Warning: could not get memory usage: %v", err)
	} else if vm.Available < uint64(r.cfg.ThrottleFreeMem) {
		return fmt.Errorf("not enough free memory. Available: %d, Required: %d", vm.Available, r.cfg.ThrottleFreeMem)
	}

	// Disk
	d, err := disk.Usage(outputDir)
	if err != nil {
		log.Printf("Warning: could not get disk usage for %s: %v", outputDir, err)
	} else if d.Free < uint64(r.cfg.ThrottleFreeDisk) {
		return fmt.Errorf("not enough free disk space. Available: %d, Required: %d", d.Free, r.cfg.ThrottleFreeDisk)
	}
	return nil
}

// lastLines trims a long ffmpeg log down to its final lines, which is
// where the actual failure diagnostic lives.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
