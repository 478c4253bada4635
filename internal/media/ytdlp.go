package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"factstream/internal/cache"
	"factstream/internal/config"
)

// VideoInfo is the subset of source metadata a session needs.
type VideoInfo struct {
	Title           string
	DurationSeconds int
	IsLive          bool
	Uploader        string
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Adapter produces transcript fragments from a video source by shelling out
// to yt-dlp for audio and handing the result to a Transcriber.
type Adapter struct {
	transcriber    Transcriber
	infoCache      *cache.Memory
	extractTimeout time.Duration
	tempDir        string
	logger         *slog.Logger
}

// NewAdapter builds an adapter from configuration. Without an OpenAI key the
// transcriber degrades to canned mock output so the rest of the pipeline
// stays exercisable.
func NewAdapter(cfg config.MediaConfig, logger *slog.Logger) *Adapter {
	var t Transcriber
	if cfg.OpenAIAPIKey != "" {
		t = NewWhisperTranscriber(cfg.OpenAIAPIKey, cfg.WhisperModel)
	} else {
		logger.Warn("no OpenAI API key configured, using mock transcription")
		t = MockTranscriber{}
	}

	timeout := cfg.ExtractTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Adapter{
		transcriber:    t,
		infoCache:      cache.NewMemory(10*time.Minute, 20*time.Minute),
		extractTimeout: timeout,
		tempDir:        tempDir,
		logger:         logger,
	}
}

// ytdlpInfo mirrors the fields read from `yt-dlp -J` output.
type ytdlpInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	IsLive   bool    `json:"is_live"`
	Uploader string  `json:"uploader"`
}

// VideoInfo fetches source metadata, with a short TTL cache so repeated
// set-source requests for the same video don't spawn subprocesses.
func (a *Adapter) VideoInfo(ctx context.Context, sourceURL string) (*VideoInfo, error) {
	key := cache.Key("video-info", sourceURL)
	if cached, ok := a.infoCache.Get(key); ok {
		if info, ok := cached.(*VideoInfo); ok {
			return info, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.extractTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "yt-dlp", "-J", "--no-warnings", sourceURL).Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp info: %w", err)
	}

	info, err := parseVideoInfo(out)
	if err != nil {
		return nil, err
	}

	a.infoCache.Set(key, info, 0)
	return info, nil
}

func parseVideoInfo(raw []byte) (*VideoInfo, error) {
	var parsed ytdlpInfo
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	title := parsed.Title
	if title == "" {
		title = "Unknown Video"
	}
	return &VideoInfo{
		Title:           title,
		DurationSeconds: int(parsed.Duration),
		IsLive:          parsed.IsLive,
		Uploader:        parsed.Uploader,
	}, nil
}

// NextFragment extracts one audio window from a live stream and transcribes
// it. The audio file is removed before returning.
func (a *Adapter) NextFragment(ctx context.Context, sourceURL string, window time.Duration) (string, error) {
	audioPath, err := a.extractAudio(ctx, sourceURL, window)
	if err != nil {
		return "", fmt.Errorf("extract live audio: %w", err)
	}
	defer a.remove(audioPath)

	text, err := a.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return text, nil
}

// FullTranscript extracts and transcribes the complete audio track of a
// static video.
func (a *Adapter) FullTranscript(ctx context.Context, sourceURL string) (string, error) {
	audioPath, err := a.extractAudio(ctx, sourceURL, 0)
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	defer a.remove(audioPath)

	text, err := a.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return text, nil
}

// extractAudio shells out to yt-dlp; window > 0 bounds the download to one
// live segment via ffmpeg.
func (a *Adapter) extractAudio(ctx context.Context, sourceURL string, window time.Duration) (string, error) {
	tmp, err := os.CreateTemp(a.tempDir, "factstream-*.mp3")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()

	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--output", strings.TrimSuffix(path, ".mp3") + ".%(ext)s",
	}
	if window > 0 {
		args = append(args,
			"--external-downloader", "ffmpeg",
			"--external-downloader-args", fmt.Sprintf("-t %d", int(window.Seconds())),
		)
	}
	args = append(args, sourceURL)

	ctx, cancel := context.WithTimeout(ctx, a.extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		a.remove(path)
		return "", fmt.Errorf("yt-dlp: %w: %s", err, tail(string(out), 300))
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("yt-dlp produced no audio file: %w", err)
	}
	return path, nil
}

func (a *Adapter) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("failed to remove temp audio", "path", path, "error", err)
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
