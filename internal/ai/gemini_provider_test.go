package ai

import (
	"testing"
	"time"
)

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantOK  bool
	}{
		{
			name:   "plain JSON",
			text:   `{"ats_score": 82}`,
			want:   `{"ats_score": 82}`,
			wantOK: true,
		},
		{
			name:   "fenced code block",
			text:   "```json\n{\"ats_score\": 75}\n```",
			want:   `{"ats_score": 75}`,
			wantOK: true,
		},
		{
			name:   "prose around the payload",
			text:   "Here is the analysis you asked for:\n{\"ats_score\": 60, \"critical_gaps\": []}\nLet me know if you need more detail.",
			want:   `{"ats_score": 60, "critical_gaps": []}`,
			wantOK: true,
		},
		{
			name:   "nested braces stay intact",
			text:   "Result: {\"keyword_analysis\": {\"matched_keywords\": [\"go\"]}} done",
			want:   `{"keyword_analysis": {"matched_keywords": ["go"]}}`,
			wantOK: true,
		},
		{
			name: "no braces at all",
			text: "I could not produce a structured analysis for this resume.",
		},
		{
			name: "empty reply",
			text: "",
		},
		{
			name: "closing brace before opening",
			text: "} nothing useful {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONPayload(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("extractJSONPayload(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("extractJSONPayload(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRetryBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 8; attempt++ {
		delay := retryBackoff(attempt)
		if delay < time.Second {
			t.Errorf("attempt %d: delay %v below one second", attempt, delay)
		}
		if delay > maxRetryBackoff {
			t.Errorf("attempt %d: delay %v above cap %v", attempt, delay, maxRetryBackoff)
		}
	}
}
