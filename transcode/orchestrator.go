package transcode

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"hlsforge/hls"
)

// Request describes one transcode of a local source file into an
// adaptive-bitrate HLS package rooted at OutputRoot. Immutable after
// creation.
type Request struct {
	SourcePath string
	OutputRoot string
	Ladder     hls.Ladder
}

// Orchestrator decomposes a request into one encode task per rendition,
// runs them against the encoder through a bounded worker pool, gathers
// the outcomes behind a single-fire barrier, and assembles the master
// manifest when every rendition succeeded.
type Orchestrator struct {
	encoder     Encoder
	workers     int
	taskTimeout time.Duration
	keepPartial bool
}

// NewOrchestrator builds an orchestrator. workers caps concurrent
// encodes per request (<=0 means one worker per rendition). taskTimeout
// bounds a single engine invocation (0 disables it); a timed-out encode
// becomes a normal failed outcome rather than a hung request.
// keepPartial keeps successfully encoded renditions on disk when a
// sibling fails; by default the whole output tree is discarded.
func NewOrchestrator(encoder Encoder, workers int, taskTimeout time.Duration, keepPartial bool) *Orchestrator {
	return &Orchestrator{
		encoder:     encoder,
		workers:     workers,
		taskTimeout: taskTimeout,
		keepPartial: keepPartial,
	}
}

// Run executes the request and returns the master manifest path. The
// success policy is all-or-nothing: if any rendition fails, the error
// is an EncodeErrors listing every failed rendition and no master
// manifest is written. Directory and manifest failures surface as
// *DirError and *ManifestError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (string, error) {
	if err := req.Ladder.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(req.OutputRoot, 0o755); err != nil {
		return "", &DirError{Path: req.OutputRoot, Err: err}
	}
	for _, r := range req.Ladder {
		dir := filepath.Join(req.OutputRoot, r.Name())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &DirError{Path: dir, Err: err}
		}
	}

	// Queue holds the full ladder up front so workers drain it in
	// declared order.
	queue := make(chan hls.Rendition, len(req.Ladder))
	for _, r := range req.Ladder {
		queue <- r
	}
	close(queue)

	workers := o.workers
	if workers <= 0 || workers > len(req.Ladder) {
		workers = len(req.Ladder)
	}

	barrier := newTracker(len(req.Ladder))
	for i := 0; i < workers; i++ {
		go func() {
			for r := range queue {
				barrier.record(o.encode(ctx, req, r))
			}
		}()
	}

	outcomes, err := barrier.wait(ctx)
	if err != nil {
		o.discard(req.OutputRoot)
		return "", err
	}
	// The barrier can complete in the same instant the request is
	// canceled; a canceled request never publishes output.
	if err := ctx.Err(); err != nil {
		o.discard(req.OutputRoot)
		return "", err
	}
	return o.finalize(req, outcomes)
}

// encode runs one rendition and reports its outcome. Engine failures,
// timeouts, and panics all come back as outcomes so the barrier always
// reaches its expected count.
func (o *Orchestrator) encode(ctx context.Context, req Request, r hls.Rendition) (out Outcome) {
	out = Outcome{Rendition: r}
	defer func() {
		if rec := recover(); rec != nil {
			out.Err = &EncodeError{Rendition: r, Err: fmt.Errorf("encoder panic: %v", rec)}
		}
	}()

	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}

	sub, err := o.encoder.Transcode(ctx, req.SourcePath, r, filepath.Join(req.OutputRoot, r.Name()))
	if err != nil {
		out.Err = &EncodeError{Rendition: r, Err: err}
		return out
	}
	out.SubManifest = sub
	return out
}

// finalize applies the success policy to the collected outcomes.
func (o *Orchestrator) finalize(req Request, outcomes []Outcome) (string, error) {
	byHeight := make(map[int]Outcome, len(outcomes))
	for _, out := range outcomes {
		byHeight[out.Rendition.Height] = out
	}

	// Report failures in ladder order, not arrival order.
	var failed EncodeErrors
	for _, r := range req.Ladder {
		if out := byHeight[r.Height]; out.Err != nil {
			failed = append(failed, out.Err)
		}
	}
	if len(failed) > 0 {
		if !o.keepPartial {
			o.discard(req.OutputRoot)
		}
		return "", failed
	}

	subManifests := make(map[int]string, len(outcomes))
	for height, out := range byHeight {
		subManifests[height] = out.SubManifest
	}
	masterPath := filepath.Join(req.OutputRoot, "master.m3u8")
	if err := hls.WriteMaster(masterPath, req.Ladder, subManifests); err != nil {
		return "", &ManifestError{Path: masterPath, Err: err}
	}

	// Best-effort source cleanup; never changes the terminal result.
	if err := os.Remove(req.SourcePath); err != nil {
		log.Printf("cleanup source %s: %v", req.SourcePath, err)
	}
	return masterPath, nil
}

func (o *Orchestrator) discard(outputRoot string) {
	if err := os.RemoveAll(outputRoot); err != nil {
		log.Printf("discard output %s: %v", outputRoot, err)
	}
}
