// Package media extracts timestamped frames and audio segments from
// uploaded performance videos using ffmpeg.
package media

// TimestampedFrame is one still image sampled from the video. Consumed once
// by the visual analysis call; never persisted.
type TimestampedFrame struct {
	Data      []byte  `json:"-"`
	Timestamp float64 `json:"timestamp"`
}

// TimestampedAudio is one bounded slice of the video's audio track,
// independently encoded. Consumed once by the voice analysis call.
type TimestampedAudio struct {
	Data      []byte  `json:"-"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}
