package media

import (
	"context"
	"testing"
)

func TestParseVideoInfo(t *testing.T) {
	raw := []byte(`{"title":"State of the Union","duration":5400.0,"is_live":false,"uploader":"C-SPAN"}`)

	info, err := parseVideoInfo(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Title != "State of the Union" {
		t.Errorf("title: %q", info.Title)
	}
	if info.DurationSeconds != 5400 {
		t.Errorf("duration: %d", info.DurationSeconds)
	}
	if info.IsLive {
		t.Error("expected not live")
	}
}

func TestParseVideoInfo_Defaults(t *testing.T) {
	info, err := parseVideoInfo([]byte(`{"is_live":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Title != "Unknown Video" {
		t.Errorf("expected placeholder title, got %q", info.Title)
	}
	if !info.IsLive {
		t.Error("expected live")
	}
}

func TestParseVideoInfo_Malformed(t *testing.T) {
	if _, err := parseVideoInfo([]byte("not json")); err == nil {
		t.Error("expected error for malformed output")
	}
}

func TestMockTranscriber(t *testing.T) {
	text, err := MockTranscriber{}.Transcribe(context.Background(), "ignored.mp3")
	if err != nil {
		t.Fatalf("mock transcribe: %v", err)
	}
	if text == "" {
		t.Error("expected non-empty mock transcript")
	}
}
