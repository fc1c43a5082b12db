package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"stagecoach/internal/media"
)

func stubAnnotations() []TemporalAnnotation {
	annotations := make([]TemporalAnnotation, 5)
	for i := range annotations {
		annotations[i] = TemporalAnnotation{
			Label:    BucketLabels[i],
			Scores:   BucketScores{EmotionalRange: 80, PhysicalPresence: 80, CharacterEmbodiment: 80, VoiceAndDelivery: 80},
			Feedback: "steady",
		}
	}
	return annotations
}

type stubAnalyzer struct {
	annotations  []TemporalAnnotation
	voice        *VoiceAnalysis
	combined     *CombinedMethodologicalAnalysis
	visualErr    error
	voiceErr     error
	combinedErr  error
	combineCalls int32
}

func (s *stubAnalyzer) AnalyzePerformance(ctx context.Context, videoURL string, frames []media.TimestampedFrame) ([]TemporalAnnotation, error) {
	return s.annotations, s.visualErr
}

func (s *stubAnalyzer) AnalyzeVoice(ctx context.Context, segments []media.TimestampedAudio) (*VoiceAnalysis, error) {
	return s.voice, s.voiceErr
}

func (s *stubAnalyzer) CombineAnalysis(ctx context.Context, visual *Analysis, voice *VoiceAnalysis) (*CombinedMethodologicalAnalysis, error) {
	atomic.AddInt32(&s.combineCalls, 1)
	return s.combined, s.combinedErr
}

func TestOrchestratorRun(t *testing.T) {
	stub := &stubAnalyzer{
		annotations: stubAnnotations(),
		voice:       &VoiceAnalysis{OverallScore: 70},
		combined:    &CombinedMethodologicalAnalysis{Synthesis: "a grounded, promising performance"},
	}

	result, err := NewOrchestrator(stub).Run(context.Background(), "http://x/videos/1.mp4", nil, nil, Meisner)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Visual.OverallScore != 80 {
		t.Errorf("Expected visual score 80, got %d", result.Visual.OverallScore)
	}
	if result.Voice.OverallScore != 70 {
		t.Errorf("Expected voice score 70, got %d", result.Voice.OverallScore)
	}
	if result.Visual.MethodologicalAnalysis == nil {
		t.Error("Expected combined analysis attached to visual report")
	}
	if stub.combineCalls != 1 {
		t.Errorf("Expected exactly 1 synthesis call, got %d", stub.combineCalls)
	}
}

func TestOrchestratorVisualFailureSkipsSynthesis(t *testing.T) {
	stub := &stubAnalyzer{
		voice:     &VoiceAnalysis{OverallScore: 70},
		visualErr: errors.New("model unavailable"),
	}

	_, err := NewOrchestrator(stub).Run(context.Background(), "http://x/videos/1.mp4", nil, nil, Meisner)
	if !errors.Is(err, ErrVisualAnalysisFailed) {
		t.Fatalf("Expected ErrVisualAnalysisFailed, got %v", err)
	}
	if stub.combineCalls != 0 {
		t.Errorf("Expected synthesis never invoked, got %d calls", stub.combineCalls)
	}
}

func TestOrchestratorVoiceFailureSkipsSynthesis(t *testing.T) {
	stub := &stubAnalyzer{
		annotations: stubAnnotations(),
		voiceErr:    errors.New("audio rejected"),
	}

	_, err := NewOrchestrator(stub).Run(context.Background(), "http://x/videos/1.mp4", nil, nil, Meisner)
	if !errors.Is(err, ErrVoiceAnalysisFailed) {
		t.Fatalf("Expected ErrVoiceAnalysisFailed, got %v", err)
	}
	if stub.combineCalls != 0 {
		t.Errorf("Expected synthesis never invoked, got %d calls", stub.combineCalls)
	}
}

func TestOrchestratorBadAnnotationsSkipSynthesis(t *testing.T) {
	stub := &stubAnalyzer{
		annotations: stubAnnotations()[:3],
		voice:       &VoiceAnalysis{OverallScore: 70},
	}

	_, err := NewOrchestrator(stub).Run(context.Background(), "http://x/videos/1.mp4", nil, nil, Meisner)
	if !errors.Is(err, ErrAggregationFailed) {
		t.Fatalf("Expected ErrAggregationFailed, got %v", err)
	}
	if stub.combineCalls != 0 {
		t.Errorf("Expected synthesis never invoked, got %d calls", stub.combineCalls)
	}
}

func TestOrchestratorSynthesisFailure(t *testing.T) {
	stub := &stubAnalyzer{
		annotations: stubAnnotations(),
		voice:       &VoiceAnalysis{OverallScore: 70},
		combinedErr: errors.New("synthesis model overloaded"),
	}

	_, err := NewOrchestrator(stub).Run(context.Background(), "http://x/videos/1.mp4", nil, nil, Meisner)
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("Expected ErrSynthesisFailed, got %v", err)
	}
}
