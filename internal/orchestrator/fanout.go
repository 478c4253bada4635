package orchestrator

import (
	"log/slog"

	"factstream/internal/hub"
	"factstream/internal/model"
)

// ResultPublisher pushes results to an external broker.
type ResultPublisher interface {
	Publish(result *model.VerificationResult) error
}

// FanOut delivers each produced result to the live subscriber hub and,
// when configured, mirrors it to an external publisher. External delivery
// failures are logged and absorbed so they can never stall the pipeline.
type FanOut struct {
	hub      *hub.Hub
	external ResultPublisher // nil when not configured
	logger   *slog.Logger
}

// NewFanOut composes hub delivery with an optional external publisher.
func NewFanOut(h *hub.Hub, external ResultPublisher, logger *slog.Logger) *FanOut {
	return &FanOut{hub: h, external: external, logger: logger}
}

// Publish implements pipeline.Broadcaster.
func (f *FanOut) Publish(observerKey string, result *model.VerificationResult) {
	f.hub.Publish(observerKey, result)

	if f.external != nil {
		if err := f.external.Publish(result); err != nil {
			f.logger.Warn("external result publish failed", "error", err)
		}
	}
}
