package analysis

// Methodology names one of the five coaching traditions used to frame
// feedback. It is a lens for report text, not an algorithm switch.
type Methodology string

const (
	Strasberg    Methodology = "strasberg"
	Chekhov      Methodology = "chekhov"
	Stanislavski Methodology = "stanislavski"
	Brecht       Methodology = "brecht"
	Meisner      Methodology = "meisner"
)

// Methodologies lists every supported coaching tradition in report order.
var Methodologies = []Methodology{Strasberg, Chekhov, Stanislavski, Brecht, Meisner}

func (m Methodology) Valid() bool {
	for _, known := range Methodologies {
		if m == known {
			return true
		}
	}
	return false
}

// Category is one scored dimension of a performance report.
type Category struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

type Categories struct {
	EmotionalRange      Category `json:"emotionalRange"`
	VoiceAndDelivery    Category `json:"voiceAndDelivery"`
	PhysicalPresence    Category `json:"physicalPresence"`
	CharacterEmbodiment Category `json:"characterEmbodiment"`
}

// Analysis is the visual performance report returned by the vision call
// and stored on the performance row as ai_feedback.
type Analysis struct {
	OverallScore           int                             `json:"overallScore"`
	Categories             Categories                      `json:"categories"`
	Recommendations        []string                        `json:"recommendations"`
	MethodologicalAnalysis *CombinedMethodologicalAnalysis `json:"methodologicalAnalysis,omitempty"`
}

type VoiceCategories struct {
	VoiceClarity        Category `json:"voiceClarity"`
	EmotionalExpression Category `json:"emotionalExpression"`
	PaceAndTiming       Category `json:"paceAndTiming"`
	VolumeControl       Category `json:"volumeControl"`
}

// VoiceAnalysis is the audio-track report, stored as voice_feedback.
type VoiceAnalysis struct {
	OverallScore    int             `json:"overallScore"`
	Categories      VoiceCategories `json:"categories"`
	Recommendations []string        `json:"recommendations"`
}

// MethodologyReport frames the combined findings through one tradition.
type MethodologyReport struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

// CombinedMethodologicalAnalysis is the synthesis of the visual and voice
// reports, one section per methodology plus a free-text synthesis.
type CombinedMethodologicalAnalysis struct {
	Strasberg              MethodologyReport `json:"strasberg"`
	Chekhov                MethodologyReport `json:"chekhov"`
	Stanislavski           MethodologyReport `json:"stanislavski"`
	Brecht                 MethodologyReport `json:"brecht"`
	Meisner                MethodologyReport `json:"meisner"`
	Synthesis              string            `json:"synthesis"`
	OverallRecommendations []string          `json:"overallRecommendations"`
}

// ClampScore forces a score into the valid [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Clamp normalizes every category score in place.
func (a *Analysis) Clamp() {
	a.OverallScore = ClampScore(a.OverallScore)
	a.Categories.EmotionalRange.Score = ClampScore(a.Categories.EmotionalRange.Score)
	a.Categories.VoiceAndDelivery.Score = ClampScore(a.Categories.VoiceAndDelivery.Score)
	a.Categories.PhysicalPresence.Score = ClampScore(a.Categories.PhysicalPresence.Score)
	a.Categories.CharacterEmbodiment.Score = ClampScore(a.Categories.CharacterEmbodiment.Score)
}

func (v *VoiceAnalysis) Clamp() {
	v.OverallScore = ClampScore(v.OverallScore)
	v.Categories.VoiceClarity.Score = ClampScore(v.Categories.VoiceClarity.Score)
	v.Categories.EmotionalExpression.Score = ClampScore(v.Categories.EmotionalExpression.Score)
	v.Categories.PaceAndTiming.Score = ClampScore(v.Categories.PaceAndTiming.Score)
	v.Categories.VolumeControl.Score = ClampScore(v.Categories.VolumeControl.Score)
}
