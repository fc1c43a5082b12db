package media

import (
	"math"
	"testing"
)

func TestFrameGridCounts(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		minCount int
		maxCount int
	}{
		{"ten seconds", 10.0, 20, 21},
		{"one second", 1.0, 2, 3},
		{"half second boundary", 0.6, 1, 2},
		{"long performance", 120.0, 240, 241},
		{"fractional duration", 7.3, 14, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := FrameGrid(tt.duration)

			base := int(math.Floor(tt.duration * 2))
			if len(grid) != base && len(grid) != base+1 {
				t.Errorf("Expected floor(2d)=%d or %d samples, got %d", base, base+1, len(grid))
			}
			if len(grid) < tt.minCount || len(grid) > tt.maxCount {
				t.Errorf("Expected between %d and %d samples, got %d", tt.minCount, tt.maxCount, len(grid))
			}
		})
	}
}

func TestFrameGridMonotonicAndBounded(t *testing.T) {
	for _, duration := range []float64{0.6, 1.0, 3.7, 10.0, 59.9, 301.2} {
		grid := FrameGrid(duration)
		if len(grid) == 0 {
			t.Fatalf("Expected samples for duration %.2f", duration)
		}

		for i := 1; i < len(grid); i++ {
			if grid[i] < grid[i-1] {
				t.Errorf("duration %.2f: timestamps not monotonic at %d: %.3f < %.3f", duration, i, grid[i], grid[i-1])
			}
		}

		last := grid[len(grid)-1]
		if last > duration {
			t.Errorf("duration %.2f: last timestamp %.3f exceeds duration", duration, last)
		}
	}
}

func TestFrameGridTailSample(t *testing.T) {
	// 10s: grid ends at 9.5, tail at 9.9 is more than half an interval
	// later, so the closing sample is added.
	grid := FrameGrid(10.0)
	if len(grid) != 21 {
		t.Fatalf("Expected 21 samples for 10s video, got %d", len(grid))
	}
	last := grid[len(grid)-1]
	if math.Abs(last-9.9) > 1e-9 {
		t.Errorf("Expected closing sample at 9.9, got %.3f", last)
	}
}

func TestFrameGridZeroDuration(t *testing.T) {
	if grid := FrameGrid(0); grid != nil {
		t.Errorf("Expected no samples for zero duration, got %d", len(grid))
	}
	if grid := FrameGrid(-3); grid != nil {
		t.Errorf("Expected no samples for negative duration, got %d", len(grid))
	}
}

func TestParseDurationOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected float64
		wantErr  bool
	}{
		{
			name:     "standard output",
			output:   "Input #0, mov,mp4\n  Duration: 00:00:10.50, start: 0.000000, bitrate: 1000 kb/s",
			expected: 10.5,
		},
		{
			name:     "hours and minutes",
			output:   "  Duration: 01:02:03.00, start: 0.000000",
			expected: 3723.0,
		},
		{
			name:    "missing duration",
			output:  "Input #0, mov,mp4",
			wantErr: true,
		},
		{
			name:    "malformed duration",
			output:  "Duration: nonsense, start",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationOutput(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}
