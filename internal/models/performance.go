package models

import (
	"time"

	"github.com/google/uuid"

	"stagecoach/internal/analysis"
)

// Performance is the single durable artifact of one completed upload:
// the stored video plus both analysis reports. Rows are created once and
// never mutated.
type Performance struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"userId"`
	Title         string                 `json:"title"`
	VideoURL      string                 `json:"videoUrl"`
	AIFeedback    analysis.Analysis      `json:"aiFeedback"`
	VoiceFeedback analysis.VoiceAnalysis `json:"voiceFeedback"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func NewPerformance(userID, title, videoURL string, aiFeedback analysis.Analysis, voiceFeedback analysis.VoiceAnalysis) *Performance {
	return &Performance{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         title,
		VideoURL:      videoURL,
		AIFeedback:    aiFeedback,
		VoiceFeedback: voiceFeedback,
		CreatedAt:     time.Now(),
	}
}
