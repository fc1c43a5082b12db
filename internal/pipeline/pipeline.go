// Package pipeline runs one performance upload end to end: store the
// video, extract frames and audio, run the remote analysis calls, and
// persist the combined report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"stagecoach/internal/analysis"
	"stagecoach/internal/media"
	"stagecoach/internal/metrics"
	"stagecoach/internal/models"
	"stagecoach/internal/storage"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
)

// FrameSource samples still frames from a stored video.
type FrameSource interface {
	ExtractFrames(ctx context.Context, videoPath string) ([]media.TimestampedFrame, error)
}

// AudioSource slices the audio track along the frame boundaries.
type AudioSource interface {
	ExtractSegments(ctx context.Context, videoPath string, boundaries []float64) ([]media.TimestampedAudio, error)
}

// Analyzer runs the remote analysis calls and aggregation.
type Analyzer interface {
	Run(ctx context.Context, videoURL string, frames []media.TimestampedFrame, segments []media.TimestampedAudio, methodology analysis.Methodology) (*analysis.Result, error)
}

// Persister writes the finished performance row.
type Persister interface {
	Insert(ctx context.Context, performance *models.Performance) error
}

type Pipeline struct {
	storage   storage.Storage
	frames    FrameSource
	audio     AudioSource
	analyzer  Analyzer
	persister Persister
	metrics   *metrics.Metrics

	maxAttempts int
	retryDelay  time.Duration
}

func New(store storage.Storage, frames FrameSource, audio AudioSource, analyzer Analyzer, persister Persister, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		storage:     store,
		frames:      frames,
		audio:       audio,
		analyzer:    analyzer,
		persister:   persister,
		metrics:     m,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

// SetRetryPolicy overrides the bounded-attempt retry policy. Tests use a
// zero delay.
func (p *Pipeline) SetRetryPolicy(maxAttempts int, delay time.Duration) {
	if maxAttempts > 0 {
		p.maxAttempts = maxAttempts
	}
	p.retryDelay = delay
}

// Input is one upload request. File must be seekable so a retried attempt
// can re-read it from the start.
type Input struct {
	UserID      string
	Title       string
	File        io.ReadSeeker
	Size        int64
	ContentType string
	Methodology analysis.Methodology
	OnProgress  func(stage Stage, percent int)
}

// Run drives the whole pipeline for one upload. The entire run is retried
// up to maxAttempts times when a transport-layer error is reported; every
// other failure terminates immediately.
func (p *Pipeline) Run(ctx context.Context, in Input) (*models.Performance, error) {
	p.metrics.UploadsStarted.Inc()

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			p.metrics.UploadRetries.Inc()
			log.Printf("[PIPELINE] Retrying upload (attempt %d/%d) after transport error: %v", attempt, p.maxAttempts, lastErr)
			if _, err := in.File.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("failed to rewind upload for retry: %w", err)
			}
		}

		performance, err := p.runAttempt(ctx, in)
		if err == nil {
			p.metrics.UploadsCompleted.Inc()
			return performance, nil
		}

		lastErr = err
		if !isTransportError(err) {
			return nil, err
		}

		if attempt < p.maxAttempts && p.retryDelay > 0 {
			time.Sleep(p.retryDelay)
		}
	}

	return nil, lastErr
}

// runAttempt moves one fresh state machine from Idle to Complete.
func (p *Pipeline) runAttempt(ctx context.Context, in Input) (*models.Performance, error) {
	machine := NewMachine(func(stage Stage) {
		if in.OnProgress != nil && stage != StageFailed {
			in.OnProgress(stage, stagePercent(stage))
		}
	})

	fail := func(stage Stage, err error) error {
		machine.Fail(err.Error())
		p.metrics.StageFailures.WithLabelValues(string(stage)).Inc()
		return err
	}

	// Uploading
	if err := machine.Advance(StageUploading); err != nil {
		return nil, err
	}
	uploadStart := time.Now()
	key, err := p.storage.SaveFile(in.File, storage.FileInfo{
		Filename:    in.Title,
		ContentType: in.ContentType,
		Size:        in.Size,
	}, func(percent int) {
		if in.OnProgress != nil {
			in.OnProgress(StageUploading, percent)
		}
	})
	if err != nil {
		return nil, fail(StageUploading, err)
	}
	p.metrics.StageDuration.WithLabelValues(string(StageUploading)).Observe(time.Since(uploadStart).Seconds())

	videoURL := p.storage.PublicURL(key)
	videoPath, err := p.storage.LocalPath(key)
	if err != nil {
		return nil, fail(StageUploading, fmt.Errorf("%w: %v", storage.ErrUploadFailed, err))
	}

	// FramesExtracting: frames first, then audio segments along the
	// frame boundaries.
	if err := machine.Advance(StageFramesExtracting); err != nil {
		return nil, err
	}
	extractStart := time.Now()
	frames, err := p.frames.ExtractFrames(ctx, videoPath)
	if err != nil {
		return nil, fail(StageFramesExtracting, err)
	}

	boundaries := make([]float64, 0, len(frames))
	for _, frame := range frames {
		boundaries = append(boundaries, frame.Timestamp)
	}

	segments, err := p.audio.ExtractSegments(ctx, videoPath, boundaries)
	if err != nil {
		return nil, fail(StageFramesExtracting, err)
	}
	p.metrics.StageDuration.WithLabelValues(string(StageFramesExtracting)).Observe(time.Since(extractStart).Seconds())
	log.Printf("[PIPELINE] Extracted %d frames, %d audio segments", len(frames), len(segments))

	// AnalyzingRemote
	if err := machine.Advance(StageAnalyzingRemote); err != nil {
		return nil, err
	}
	analysisStart := time.Now()
	result, err := p.analyzer.Run(ctx, videoURL, frames, segments, in.Methodology)
	if err != nil {
		stage := StageAnalyzingRemote
		if errors.Is(err, analysis.ErrAggregationFailed) {
			// The machine reached aggregation before failing.
			_ = machine.Advance(StageAggregating)
			stage = StageAggregating
		}
		return nil, fail(stage, err)
	}
	p.metrics.StageDuration.WithLabelValues(string(StageAnalyzingRemote)).Observe(time.Since(analysisStart).Seconds())

	// Aggregating: assemble the durable record from the joined reports.
	if err := machine.Advance(StageAggregating); err != nil {
		return nil, err
	}
	performance := models.NewPerformance(in.UserID, in.Title, videoURL, *result.Visual, *result.Voice)

	// Persisting
	if err := machine.Advance(StagePersisting); err != nil {
		return nil, err
	}
	if err := p.persister.Insert(ctx, performance); err != nil {
		// The stored video and completed analysis are not rolled
		// back; the object stays in storage without a row.
		log.Printf("[PIPELINE] Persist failed, object %s left in storage without a row", key)
		return nil, fail(StagePersisting, err)
	}

	if err := machine.Advance(StageComplete); err != nil {
		return nil, err
	}

	return performance, nil
}

func stagePercent(stage Stage) int {
	switch stage {
	case StageUploading:
		return 0
	case StageFramesExtracting:
		return 30
	case StageAnalyzingRemote:
		return 50
	case StageAggregating:
		return 80
	case StagePersisting:
		return 90
	case StageComplete:
		return 100
	}
	return 0
}

// isTransportError reports whether the failure is the provider's
// transport-layer signal, the only class the retry policy covers.
func isTransportError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Network error")
}
