package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrSegmentCaptureFailed marks any failure while slicing the audio track.
// Fatal for the current upload.
var ErrSegmentCaptureFailed = errors.New("audio segment capture failed")

// Segmenter slices a video's audio track into independently encoded WAV
// segments by offline decoding, so segment boundaries are exact sample
// offsets rather than wall-clock capture points.
type Segmenter struct {
	ffmpegPath string
	tempDir    string
}

func NewSegmenter() (*Segmenter, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "stagecoach-audio-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &Segmenter{ffmpegPath: ffmpegPath, tempDir: tempDir}, nil
}

// SegmentBounds pairs adjacent boundary timestamps. Fewer than two
// boundaries yield no segments.
func SegmentBounds(boundaries []float64) [][2]float64 {
	if len(boundaries) < 2 {
		return nil
	}
	bounds := make([][2]float64, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		bounds = append(bounds, [2]float64{boundaries[i], boundaries[i+1]})
	}
	return bounds
}

// ExtractSegments produces one audio segment per adjacent boundary pair,
// each tagged with its source start/end time. Boundaries normally come from
// the frame extractor's sampling grid.
func (s *Segmenter) ExtractSegments(ctx context.Context, videoPath string, boundaries []float64) ([]TimestampedAudio, error) {
	bounds := SegmentBounds(boundaries)
	if len(bounds) == 0 {
		return nil, nil
	}

	log.Printf("[EXTRACT] Slicing audio into %d segments", len(bounds))

	segments := make([]TimestampedAudio, 0, len(bounds))
	for i, b := range bounds {
		data, err := s.extractSegment(ctx, videoPath, b[0], b[1], i)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d [%.2f, %.2f]: %v", ErrSegmentCaptureFailed, i, b[0], b[1], err)
		}
		segments = append(segments, TimestampedAudio{Data: data, StartTime: b[0], EndTime: b[1]})
	}

	return segments, nil
}

// extractSegment decodes [start, end) to 16kHz mono WAV, the format the
// voice analysis provider expects.
func (s *Segmenter) extractSegment(ctx context.Context, videoPath string, start, end float64, index int) ([]byte, error) {
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("segment_%04d.wav", index))
	defer os.Remove(tempFile)

	args := []string{
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		"-y",
		tempFile,
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg audio slice: %w\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio segment: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio segment [%.2f, %.2f]", start, end)
	}

	return data, nil
}

// Cleanup removes the transient segment directory.
func (s *Segmenter) Cleanup() error {
	return os.RemoveAll(s.tempDir)
}
