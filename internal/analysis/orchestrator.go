package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"stagecoach/internal/media"
)

// Stage failure sentinels. Each error wraps the underlying cause; callers
// branch with errors.Is and surface a generic message to users.
var (
	ErrVisualAnalysisFailed = errors.New("visual analysis failed")
	ErrVoiceAnalysisFailed  = errors.New("voice analysis failed")
	ErrAggregationFailed    = errors.New("aggregation failed")
	ErrSynthesisFailed      = errors.New("synthesis failed")
)

// Analyzer is the remote analysis surface the orchestrator drives. The
// production implementation lives in internal/ai.
type Analyzer interface {
	// AnalyzePerformance scores the performance per temporal bucket.
	AnalyzePerformance(ctx context.Context, videoURL string, frames []media.TimestampedFrame) ([]TemporalAnnotation, error)
	AnalyzeVoice(ctx context.Context, segments []media.TimestampedAudio) (*VoiceAnalysis, error)
	CombineAnalysis(ctx context.Context, visual *Analysis, voice *VoiceAnalysis) (*CombinedMethodologicalAnalysis, error)
}

// Orchestrator issues the visual and voice analysis calls concurrently,
// aggregates the visual annotations, and issues the synthesis call
// strictly after both arms succeed.
type Orchestrator struct {
	analyzer Analyzer
}

func NewOrchestrator(analyzer Analyzer) *Orchestrator {
	return &Orchestrator{analyzer: analyzer}
}

// Result carries the analysis payloads for one performance.
type Result struct {
	Visual   *Analysis
	Voice    *VoiceAnalysis
	Combined *CombinedMethodologicalAnalysis
}

// Run joins the two independent analysis calls all-succeed/any-fail. If
// either fails, the synthesis call is never issued.
func (o *Orchestrator) Run(ctx context.Context, videoURL string, frames []media.TimestampedFrame, segments []media.TimestampedAudio, methodology Methodology) (*Result, error) {
	var (
		wg          sync.WaitGroup
		annotations []TemporalAnnotation
		voice       *VoiceAnalysis
		visualErr   error
		voiceErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		annotations, visualErr = o.analyzer.AnalyzePerformance(ctx, videoURL, frames)
	}()
	go func() {
		defer wg.Done()
		voice, voiceErr = o.analyzer.AnalyzeVoice(ctx, segments)
	}()
	wg.Wait()

	if visualErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisualAnalysisFailed, visualErr)
	}
	if voiceErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrVoiceAnalysisFailed, voiceErr)
	}

	visual, err := Aggregate(annotations, methodology)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAggregationFailed, err)
	}

	log.Printf("[ANALYZE] Visual and voice analysis complete (visual=%d, voice=%d), synthesizing", visual.OverallScore, voice.OverallScore)

	combined, err := o.analyzer.CombineAnalysis(ctx, visual, voice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	visual.MethodologicalAnalysis = combined

	return &Result{Visual: visual, Voice: voice, Combined: combined}, nil
}
