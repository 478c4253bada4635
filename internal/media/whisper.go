package media

import (
	"context"
	"fmt"
	"math/rand"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes audio files via OpenAI's transcription API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a transcriber with the given key and model.
func NewWhisperTranscriber(apiKey, model string) *WhisperTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Transcribe sends the audio file and returns plain text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}

var mockSegments = []string{
	"Climate change is affecting weather patterns globally.",
	"The Earth's temperature has risen by 1.1 degrees Celsius since pre-industrial times.",
	"Renewable energy sources are becoming more cost-effective.",
	"Electric vehicles are projected to reach price parity with gas cars by 2025.",
	"The moon landing occurred on July 20, 1969.",
	"Artificial intelligence is transforming various industries.",
}

// MockTranscriber returns canned statements when no speech-to-text
// credential is configured.
type MockTranscriber struct{}

// Transcribe ignores the audio and returns one canned statement.
func (MockTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return mockSegments[rand.Intn(len(mockSegments))], nil
}
