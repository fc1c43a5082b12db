package analysis

import (
	"fmt"
	"math"
	"strings"
)

// BucketLabels names the five temporal positions of a performance in order.
var BucketLabels = []string{"beginning", "early", "middle", "later", "end"}

// bucketWeights applies non-uniform importance across the performance:
// openings and endings count more than transitions.
var bucketWeights = []float64{0.2, 0.15, 0.3, 0.15, 0.2}

// recommendationThreshold is the category score below which a
// methodology-specific exercise is suggested.
const recommendationThreshold = 80

const maxRecommendations = 3

// BucketScores holds one temporal bucket's raw category scores.
type BucketScores struct {
	EmotionalRange      int `json:"emotionalRange"`
	PhysicalPresence    int `json:"physicalPresence"`
	CharacterEmbodiment int `json:"characterEmbodiment"`
	VoiceAndDelivery    int `json:"voiceAndDelivery"`
}

// TemporalAnnotation is one scored observation covering a fixed portion of
// the performance, as produced by the frame-level analysis.
type TemporalAnnotation struct {
	Label    string       `json:"label"`
	Scores   BucketScores `json:"scores"`
	Feedback string       `json:"feedback"`
	Examples []string     `json:"examples,omitempty"`
}

// Aggregate folds per-bucket annotations into a single weighted report.
// The annotation list must contain exactly one entry per temporal bucket;
// a mismatched length is rejected rather than silently misweighted.
func Aggregate(annotations []TemporalAnnotation, methodology Methodology) (*Analysis, error) {
	if len(annotations) != len(bucketWeights) {
		return nil, fmt.Errorf("expected %d temporal annotations, got %d", len(bucketWeights), len(annotations))
	}

	emotional := weightedScore(annotations, func(b BucketScores) int { return b.EmotionalRange })
	physical := weightedScore(annotations, func(b BucketScores) int { return b.PhysicalPresence })
	embodiment := weightedScore(annotations, func(b BucketScores) int { return b.CharacterEmbodiment })
	delivery := weightedScore(annotations, func(b BucketScores) int { return b.VoiceAndDelivery })

	overall := int(math.Round(float64(emotional+physical+embodiment) / 3.0))

	feedback := buildFeedback(annotations)

	result := &Analysis{
		OverallScore: ClampScore(overall),
		Categories: Categories{
			EmotionalRange:      Category{Score: emotional, Feedback: feedback},
			VoiceAndDelivery:    Category{Score: delivery, Feedback: feedback},
			PhysicalPresence:    Category{Score: physical, Feedback: feedback},
			CharacterEmbodiment: Category{Score: embodiment, Feedback: feedback},
		},
		Recommendations: Recommend(methodology, map[string]int{
			"emotional range":      emotional,
			"voice and delivery":   delivery,
			"physical presence":    physical,
			"character embodiment": embodiment,
		}),
	}
	return result, nil
}

func weightedScore(annotations []TemporalAnnotation, pick func(BucketScores) int) int {
	sum := 0.0
	for i, a := range annotations {
		sum += bucketWeights[i] * float64(pick(a.Scores))
	}
	return ClampScore(int(math.Round(sum)))
}

// buildFeedback concatenates each bucket's label, feedback text and first
// supporting example into one human-readable paragraph.
func buildFeedback(annotations []TemporalAnnotation) string {
	parts := make([]string, 0, len(annotations))
	for i, a := range annotations {
		label := a.Label
		if label == "" && i < len(BucketLabels) {
			label = BucketLabels[i]
		}
		part := fmt.Sprintf("%s: %s", capitalize(label), a.Feedback)
		if len(a.Examples) > 0 {
			part += fmt.Sprintf(" (e.g. %s)", a.Examples[0])
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// methodologyExercises maps each coaching tradition to its fixed exercise
// list, keyed by the category the exercise targets.
var methodologyExercises = map[Methodology]map[string]string{
	Strasberg: {
		"emotional range":      "Practice affective memory: recall a personal experience matching your character's emotional state and let it color a one-minute monologue.",
		"voice and delivery":   "Run a relaxation-and-sound session: release jaw and shoulder tension, then sustain open vowel sounds before speaking your lines.",
		"physical presence":    "Do a private moment exercise: rehearse a private everyday activity on camera until self-consciousness disappears.",
		"character embodiment": "Spend ten minutes in substitution work: replace the scene partner with someone from your own life who evokes the needed response.",
	},
	Chekhov: {
		"emotional range":      "Explore atmospheres: play the same scene inside three imagined atmospheres (dread, celebration, secrecy) and note what changes.",
		"voice and delivery":   "Use qualities of movement on your text: speak the lines while molding, floating, flying, then radiating.",
		"physical presence":    "Develop a psychological gesture for your character and let a compressed version of it live under every line.",
		"character embodiment": "Work with the imaginary body: step into a body taller, heavier or lighter than yours and let it reshape your behavior.",
	},
	Stanislavski: {
		"emotional range":      "Ask the magic if: play the scene three times, each with a different answer to 'what would I do if this were happening to me?'",
		"voice and delivery":   "Break your text into bits and name each bit's action with a transitive verb; let the verb drive the vocal choice.",
		"physical presence":    "Run the scene purely through physical actions with the text removed, then restore the words over the score.",
		"character embodiment": "Write your character's offstage biography for the hour before the scene begins and enter carrying it.",
	},
	Brecht: {
		"emotional range":      "Rehearse with distancing: narrate your character's emotions in the third person before playing them in the first.",
		"voice and delivery":   "Speak the text once as a report of events, once as an argument to the audience, and compare deliveries.",
		"physical presence":    "Fix three gestus moments: social gestures that show the character's position, and hit them precisely each run.",
		"character embodiment": "Play the scene showing the character rather than becoming them: hold one visible attitude toward their choices.",
	},
	Meisner: {
		"emotional range":      "Do repetition work with a partner until a genuine impulse appears, then carry that aliveness into the scene.",
		"voice and delivery":   "Practice really listening: respond to your partner's actual delivery, not the delivery you rehearsed against.",
		"physical presence":    "Set up an independent activity with real difficulty and urgency, and let the scene interrupt it.",
		"character embodiment": "Work from 'the reality of doing': do every task in the scene truthfully instead of performing doing it.",
	},
}

const genericRecommendation = "Strong work across the board. Keep rehearsing full run-throughs on camera and review each one against your previous reports."

// Recommend selects up to three methodology-specific exercises for the
// categories scoring under the threshold, in a fixed category order so the
// output is deterministic. When nothing falls below the threshold a single
// generic recommendation is returned.
func Recommend(methodology Methodology, scores map[string]int) []string {
	exercises, ok := methodologyExercises[methodology]
	if !ok {
		exercises = methodologyExercises[Stanislavski]
	}

	order := []string{"emotional range", "voice and delivery", "physical presence", "character embodiment"}

	var recs []string
	for _, category := range order {
		score, ok := scores[category]
		if !ok || score >= recommendationThreshold {
			continue
		}
		if exercise, ok := exercises[category]; ok {
			recs = append(recs, exercise)
		}
		if len(recs) == maxRecommendations {
			break
		}
	}

	if len(recs) == 0 {
		return []string{genericRecommendation}
	}
	return recs
}
