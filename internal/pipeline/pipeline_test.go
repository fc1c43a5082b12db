package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"stagecoach/internal/analysis"
	"stagecoach/internal/media"
	"stagecoach/internal/metrics"
	"stagecoach/internal/models"
	"stagecoach/internal/storage"
)

// fakeStorage keeps saved objects in memory and can fail a configured
// number of save attempts first.
type fakeStorage struct {
	saveCalls int
	failures  int
	failErr   error
	objects   map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) SaveFile(file io.Reader, info storage.FileInfo, progress storage.ProgressFunc) (string, error) {
	f.saveCalls++
	if f.failures > 0 {
		f.failures--
		return "", f.failErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%d-test.mp4", f.saveCalls)
	f.objects[key] = data
	if progress != nil {
		progress(0)
		progress(90)
		progress(100)
	}
	return key, nil
}

func (f *fakeStorage) PublicURL(key string) string { return "http://localhost:8080/videos/" + key }

func (f *fakeStorage) LocalPath(key string) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "/fake/" + key, nil
}

func (f *fakeStorage) OpenFile(key string) (io.ReadSeekCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStorage) DeleteFile(key string) error {
	delete(f.objects, key)
	return nil
}

type fakeFrameSource struct {
	frames []media.TimestampedFrame
	err    error
}

func (f *fakeFrameSource) ExtractFrames(ctx context.Context, videoPath string) ([]media.TimestampedFrame, error) {
	return f.frames, f.err
}

type fakeAudioSource struct {
	err        error
	boundaries []float64
}

func (f *fakeAudioSource) ExtractSegments(ctx context.Context, videoPath string, boundaries []float64) ([]media.TimestampedAudio, error) {
	f.boundaries = boundaries
	if f.err != nil {
		return nil, f.err
	}
	segments := make([]media.TimestampedAudio, 0)
	for i := 0; i < len(boundaries)-1; i++ {
		segments = append(segments, media.TimestampedAudio{
			Data:      []byte("wav"),
			StartTime: boundaries[i],
			EndTime:   boundaries[i+1],
		})
	}
	return segments, nil
}

type fakeAnalyzer struct {
	result *analysis.Result
	err    error
	calls  int
}

func (f *fakeAnalyzer) Run(ctx context.Context, videoURL string, frames []media.TimestampedFrame, segments []media.TimestampedAudio, methodology analysis.Methodology) (*analysis.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakePersister struct {
	inserted []*models.Performance
	err      error
}

func (f *fakePersister) Insert(ctx context.Context, performance *models.Performance) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, performance)
	return nil
}

func testFrames(duration float64) []media.TimestampedFrame {
	grid := media.FrameGrid(duration)
	frames := make([]media.TimestampedFrame, 0, len(grid))
	for _, ts := range grid {
		frames = append(frames, media.TimestampedFrame{Data: []byte("jpeg"), Timestamp: ts})
	}
	return frames
}

func testResult(visualScore, voiceScore int) *analysis.Result {
	return &analysis.Result{
		Visual: &analysis.Analysis{OverallScore: visualScore},
		Voice:  &analysis.VoiceAnalysis{OverallScore: voiceScore},
		Combined: &analysis.CombinedMethodologicalAnalysis{
			Synthesis: "promising",
		},
	}
}

func newTestPipeline(store storage.Storage, frames FrameSource, audio AudioSource, analyzer Analyzer, persister Persister) *Pipeline {
	p := New(store, frames, audio, analyzer, persister, metrics.New())
	p.SetRetryPolicy(3, 0)
	return p
}

func testInput() Input {
	return Input{
		UserID:      "user-1",
		Title:       "monologue.mp4",
		File:        strings.NewReader("video bytes"),
		Size:        11,
		ContentType: "video/mp4",
		Methodology: analysis.Meisner,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	store := newFakeStorage()
	frames := &fakeFrameSource{frames: testFrames(10.0)}
	audio := &fakeAudioSource{}
	analyzer := &fakeAnalyzer{result: testResult(80, 70)}
	persister := &fakePersister{}

	p := newTestPipeline(store, frames, audio, analyzer, persister)

	performance, err := p.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(frames.frames) < 20 || len(frames.frames) > 21 {
		t.Errorf("Expected 20-21 frames for a 10s video, got %d", len(frames.frames))
	}
	if len(audio.boundaries) != len(frames.frames) {
		t.Errorf("Expected segment boundaries to mirror frame timestamps, got %d vs %d", len(audio.boundaries), len(frames.frames))
	}

	if len(persister.inserted) != 1 {
		t.Fatalf("Expected exactly 1 persisted row, got %d", len(persister.inserted))
	}
	row := persister.inserted[0]
	if row.AIFeedback.OverallScore != 80 {
		t.Errorf("Expected ai_feedback overall score 80, got %d", row.AIFeedback.OverallScore)
	}
	if row.VoiceFeedback.OverallScore != 70 {
		t.Errorf("Expected voice_feedback overall score 70, got %d", row.VoiceFeedback.OverallScore)
	}
	if performance.VideoURL == "" {
		t.Error("Expected non-empty video URL")
	}
	if store.saveCalls != 1 {
		t.Errorf("Expected 1 upload attempt, got %d", store.saveCalls)
	}
}

func TestPipelineRetriesTransportErrors(t *testing.T) {
	store := newFakeStorage()
	store.failures = 2
	store.failErr = errors.New("Network error")

	persister := &fakePersister{}
	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(2.0)}, &fakeAudioSource{}, &fakeAnalyzer{result: testResult(75, 65)}, persister)

	_, err := p.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}

	if store.saveCalls != 3 {
		t.Errorf("Expected exactly 3 upload attempts, got %d", store.saveCalls)
	}
	if len(persister.inserted) != 1 {
		t.Errorf("Expected exactly 1 persisted row, got %d", len(persister.inserted))
	}
}

func TestPipelineRetryBudgetExhausted(t *testing.T) {
	store := newFakeStorage()
	store.failures = 5
	store.failErr = errors.New("Network error")

	persister := &fakePersister{}
	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(2.0)}, &fakeAudioSource{}, &fakeAnalyzer{result: testResult(75, 65)}, persister)

	_, err := p.Run(context.Background(), testInput())
	if err == nil {
		t.Fatal("Expected failure after exhausting retries")
	}
	if store.saveCalls != 3 {
		t.Errorf("Expected exactly 3 upload attempts, got %d", store.saveCalls)
	}
	if len(persister.inserted) != 0 {
		t.Errorf("Expected no persisted rows, got %d", len(persister.inserted))
	}
}

func TestPipelineDoesNotRetryNonTransportErrors(t *testing.T) {
	store := newFakeStorage()
	store.failures = 1
	store.failErr = fmt.Errorf("%w: bucket quota exceeded", storage.ErrUploadFailed)

	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(2.0)}, &fakeAudioSource{}, &fakeAnalyzer{result: testResult(75, 65)}, &fakePersister{})

	_, err := p.Run(context.Background(), testInput())
	if !errors.Is(err, storage.ErrUploadFailed) {
		t.Fatalf("Expected ErrUploadFailed, got %v", err)
	}
	if store.saveCalls != 1 {
		t.Errorf("Expected a single attempt for non-transport error, got %d", store.saveCalls)
	}
}

func TestPipelineExtractionFailureStopsRun(t *testing.T) {
	store := newFakeStorage()
	frames := &fakeFrameSource{err: fmt.Errorf("%w: metadata never loaded", media.ErrExtractionFailed)}
	analyzer := &fakeAnalyzer{result: testResult(75, 65)}
	persister := &fakePersister{}

	p := newTestPipeline(store, frames, &fakeAudioSource{}, analyzer, persister)

	_, err := p.Run(context.Background(), testInput())
	if !errors.Is(err, media.ErrExtractionFailed) {
		t.Fatalf("Expected ErrExtractionFailed, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Errorf("Expected no analysis calls after extraction failure, got %d", analyzer.calls)
	}
	if len(persister.inserted) != 0 {
		t.Errorf("Expected no persisted rows, got %d", len(persister.inserted))
	}
}

func TestPipelineAnalysisFailurePersistsNothing(t *testing.T) {
	store := newFakeStorage()
	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: model unavailable", analysis.ErrVisualAnalysisFailed)}
	persister := &fakePersister{}

	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(4.0)}, &fakeAudioSource{}, analyzer, persister)

	_, err := p.Run(context.Background(), testInput())
	if !errors.Is(err, analysis.ErrVisualAnalysisFailed) {
		t.Fatalf("Expected ErrVisualAnalysisFailed, got %v", err)
	}
	if len(persister.inserted) != 0 {
		t.Errorf("Expected no persisted rows, got %d", len(persister.inserted))
	}
	// The uploaded object is intentionally left behind.
	if len(store.objects) != 1 {
		t.Errorf("Expected uploaded object retained in storage, got %d objects", len(store.objects))
	}
}

func TestPipelinePersistFailureKeepsUpload(t *testing.T) {
	store := newFakeStorage()
	persister := &fakePersister{err: errors.New("persistence failed: disk full")}

	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(4.0)}, &fakeAudioSource{}, &fakeAnalyzer{result: testResult(75, 65)}, persister)

	_, err := p.Run(context.Background(), testInput())
	if err == nil {
		t.Fatal("Expected persistence failure to surface")
	}
	if len(store.objects) != 1 {
		t.Errorf("Expected uploaded object retained after persist failure, got %d objects", len(store.objects))
	}
}

func TestPipelineProgressReachesComplete(t *testing.T) {
	store := newFakeStorage()
	var stages []Stage
	var lastPercent int

	in := testInput()
	in.OnProgress = func(stage Stage, percent int) {
		stages = append(stages, stage)
		lastPercent = percent
	}

	p := newTestPipeline(store, &fakeFrameSource{frames: testFrames(4.0)}, &fakeAudioSource{}, &fakeAnalyzer{result: testResult(75, 65)}, &fakePersister{})

	if _, err := p.Run(context.Background(), in); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stages[len(stages)-1] != StageComplete {
		t.Errorf("Expected final progress stage Complete, got %s", stages[len(stages)-1])
	}
	if lastPercent != 100 {
		t.Errorf("Expected final percent 100, got %d", lastPercent)
	}
}
