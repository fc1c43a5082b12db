package ai

import (
	"testing"

	"stagecoach/internal/analysis"
)

func TestDecodeJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
		wantErr  bool
	}{
		{
			name:     "bare json",
			content:  `{"overallScore": 85, "categories": {}}`,
			expected: 85,
		},
		{
			name:     "json code fence",
			content:  "```json\n{\"overallScore\": 70, \"categories\": {}}\n```",
			expected: 70,
		},
		{
			name:     "plain code fence",
			content:  "```\n{\"overallScore\": 60, \"categories\": {}}\n```",
			expected: 60,
		},
		{
			name:     "surrounding prose",
			content:  "Here is your report:\n{\"overallScore\": 92, \"categories\": {}}\nGood luck!",
			expected: 92,
		},
		{
			name:    "no json at all",
			content: "I cannot evaluate this performance.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			content: `{"overallScore": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result analysis.Analysis
			err := decodeJSONResponse(tt.content, &result)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.OverallScore != tt.expected {
				t.Errorf("Expected overall score %d, got %d", tt.expected, result.OverallScore)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	got := stripCodeFence("```json\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Errorf("Expected fences removed, got %q", got)
	}

	got = stripCodeFence(`{"a":1}`)
	if got != `{"a":1}` {
		t.Errorf("Expected unfenced content unchanged, got %q", got)
	}
}
