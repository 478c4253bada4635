package verify

import (
	"testing"

	"factstream/internal/model"
)

func TestAnalyzeResponse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		verdict    model.Verdict
		confidence float64
	}{
		{"affirmed", "The claim is accurate and well documented.", model.VerdictTrue, 0.9},
		{"affirmed with qualifier", "This is mostly correct, with caveats.", model.VerdictPartiallyTrue, 0.7},
		{"negated", "This statement is incorrect.", model.VerdictFalse, 0.85},
		{"uncertain", "The available evidence is insufficient.", model.VerdictUnverified, 0.3},
		{"no signal words", "Here is some commentary with no markers.", model.VerdictUnverified, 0.5},
		{"empty", "", model.VerdictUnverified, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, confidence := analyzeResponse(tt.content)
			if verdict != tt.verdict {
				t.Errorf("verdict: got %s, want %s", verdict, tt.verdict)
			}
			if confidence != tt.confidence {
				t.Errorf("confidence: got %v, want %v", confidence, tt.confidence)
			}
		})
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url    string
		domain string
	}{
		{"https://www.example.com/path", "www.example.com"},
		{"http://nasa.gov", "nasa.gov"},
		{"not a url", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := domainOf(tt.url); got != tt.domain {
			t.Errorf("domainOf(%q) = %q, want %q", tt.url, got, tt.domain)
		}
	}
}
