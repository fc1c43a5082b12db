package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"stagecoach/internal/analysis"
	"stagecoach/internal/media"
)

// AnalyzePerformance runs the visual analysis call over the uploaded
// video's URL and its sampled frames, returning one scored annotation per
// temporal bucket for the aggregator.
func (c *Client) AnalyzePerformance(ctx context.Context, videoURL string, frames []media.TimestampedFrame) ([]analysis.TemporalAnnotation, error) {
	parts := []contentPart{
		{Type: "text", Text: performancePrompt},
		{Type: "text", Text: fmt.Sprintf("Video URL: %s. %d frames follow, sampled twice per second.", videoURL, len(frames))},
	}

	for _, frame := range frames {
		parts = append(parts,
			contentPart{Type: "text", Text: fmt.Sprintf("Frame at %.2fs:", frame.Timestamp)},
			contentPart{Type: "image_url", ImageURL: &imageURL{
				URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(frame.Data)),
			}},
		)
	}

	content, err := c.complete(ctx, []chatMessage{{Role: "user", Content: parts}})
	if err != nil {
		return nil, err
	}

	var result struct {
		Annotations []analysis.TemporalAnnotation `json:"annotations"`
	}
	if err := decodeJSONResponse(content, &result); err != nil {
		return nil, fmt.Errorf("failed to parse visual analysis: %w", err)
	}

	for i := range result.Annotations {
		scores := &result.Annotations[i].Scores
		scores.EmotionalRange = analysis.ClampScore(scores.EmotionalRange)
		scores.PhysicalPresence = analysis.ClampScore(scores.PhysicalPresence)
		scores.CharacterEmbodiment = analysis.ClampScore(scores.CharacterEmbodiment)
		scores.VoiceAndDelivery = analysis.ClampScore(scores.VoiceAndDelivery)
	}

	return result.Annotations, nil
}

// AnalyzeVoice runs the voice analysis call over the audio segments.
func (c *Client) AnalyzeVoice(ctx context.Context, segments []media.TimestampedAudio) (*analysis.VoiceAnalysis, error) {
	type segmentPayload struct {
		AudioData string  `json:"audioData"`
		StartTime float64 `json:"startTime"`
		EndTime   float64 `json:"endTime"`
	}

	payload := make([]segmentPayload, 0, len(segments))
	for _, segment := range segments {
		payload = append(payload, segmentPayload{
			AudioData: base64.StdEncoding.EncodeToString(segment.Data),
			StartTime: segment.StartTime,
			EndTime:   segment.EndTime,
		})
	}

	segmentsJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audio segments: %w", err)
	}

	content, err := c.complete(ctx, []chatMessage{{Role: "user", Content: []contentPart{
		{Type: "text", Text: voicePrompt},
		{Type: "text", Text: string(segmentsJSON)},
	}}})
	if err != nil {
		return nil, err
	}

	var result analysis.VoiceAnalysis
	if err := decodeJSONResponse(content, &result); err != nil {
		return nil, fmt.Errorf("failed to parse voice analysis: %w", err)
	}
	result.Clamp()

	return &result, nil
}

// CombineAnalysis runs the synthesis call over both completed reports.
func (c *Client) CombineAnalysis(ctx context.Context, visual *analysis.Analysis, voice *analysis.VoiceAnalysis) (*analysis.CombinedMethodologicalAnalysis, error) {
	visualJSON, err := json.Marshal(visual)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal visual analysis: %w", err)
	}
	voiceJSON, err := json.Marshal(voice)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal voice analysis: %w", err)
	}

	content, err := c.complete(ctx, []chatMessage{{Role: "user", Content: []contentPart{
		{Type: "text", Text: combinePrompt},
		{Type: "text", Text: fmt.Sprintf("Visual analysis:\n%s\n\nVoice analysis:\n%s", visualJSON, voiceJSON)},
	}}})
	if err != nil {
		return nil, err
	}

	var result analysis.CombinedMethodologicalAnalysis
	if err := decodeJSONResponse(content, &result); err != nil {
		return nil, fmt.Errorf("failed to parse combined analysis: %w", err)
	}

	return &result, nil
}

// Chat answers a free-form coaching question, optionally in the voice of
// one methodology.
func (c *Client) Chat(ctx context.Context, message, coachType string) (string, error) {
	system := chatSystemPrompt
	if style, ok := chatCoachStyles[coachType]; ok {
		system += " " + style
	}

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: []contentPart{{Type: "text", Text: system}}},
		{Role: "user", Content: []contentPart{{Type: "text", Text: message}}},
	})
	if err != nil {
		return "", err
	}

	return content, nil
}
