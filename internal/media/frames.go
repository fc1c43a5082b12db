package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrExtractionFailed marks any failure while probing or sampling the
// video. Fatal for the current upload; no retry happens at this layer.
var ErrExtractionFailed = errors.New("frame extraction failed")

// samplesPerSecond fixes the frame sampling rate.
const samplesPerSecond = 2

// tailFraction places the extra closing frame near the end of the video.
const tailFraction = 0.99

// Extractor samples still frames from a video file with ffmpeg.
type Extractor struct {
	ffmpegPath string
	tempDir    string
	frameSize  int
}

func NewExtractor(frameSize int) (*Extractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "stagecoach-frames-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	if frameSize <= 0 {
		frameSize = 512
	}

	return &Extractor{
		ffmpegPath: ffmpegPath,
		tempDir:    tempDir,
		frameSize:  frameSize,
	}, nil
}

// FrameGrid computes the sampling timestamps for a video of the given
// duration: a fixed 2-per-second grid, plus one closing sample at 99% of
// the duration when the grid's last point leaves more than half an
// interval uncovered. Timestamps are strictly non-decreasing and every
// one is below the duration.
func FrameGrid(duration float64) []float64 {
	if duration <= 0 {
		return nil
	}

	interval := 1.0 / float64(samplesPerSecond)
	count := int(math.Floor(duration * samplesPerSecond))

	grid := make([]float64, 0, count+1)
	for i := 0; i < count; i++ {
		ts := float64(i) * interval
		if ts >= duration {
			break
		}
		grid = append(grid, ts)
	}

	tail := duration * tailFraction
	if len(grid) == 0 {
		return []float64{tail}
	}
	if tail-grid[len(grid)-1] > interval/2 {
		grid = append(grid, tail)
	}
	return grid
}

// ExtractFrames samples the video at the fixed grid and returns one JPEG
// frame per grid point. Extraction is strictly sequential; each frame is
// captured only after the previous one completes.
func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string) ([]TimestampedFrame, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w: video file not accessible: %v", ErrExtractionFailed, err)
	}

	duration, err := e.Duration(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: invalid video duration %f", ErrExtractionFailed, duration)
	}

	grid := FrameGrid(duration)
	log.Printf("[EXTRACT] Video duration %.2fs, sampling %d frames", duration, len(grid))

	frames := make([]TimestampedFrame, 0, len(grid))
	for i, ts := range grid {
		frameData, err := e.extractSingleFrame(ctx, videoPath, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d at %.2fs: %v", ErrExtractionFailed, i, ts, err)
		}
		frames = append(frames, TimestampedFrame{Data: frameData, Timestamp: ts})
	}

	return frames, nil
}

func (e *Extractor) extractSingleFrame(ctx context.Context, videoPath string, timestamp float64) ([]byte, error) {
	tempFile := filepath.Join(e.tempDir, fmt.Sprintf("frame_%f.jpg", timestamp))
	defer os.Remove(tempFile)

	size := e.frameSize
	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", size, size),
		"-q:v", "2",
		"-f", "mjpeg",
		"-y",
		tempFile,
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame at %.3f: %w\n%s", timestamp, err, stderr.String())
	}

	data, err := os.ReadFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted frame: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame at %.3f", timestamp)
	}

	return data, nil
}

// Cleanup removes the transient render directory.
func (e *Extractor) Cleanup() error {
	return os.RemoveAll(e.tempDir)
}
