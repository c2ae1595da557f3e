package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/service"
)

// SweepWorker periodically scans conversation states and nudges participants
// whose collecting mode has sat idle past the threshold, then returns them to
// the neutral mode so stale prompts stop capturing free text.
type SweepWorker struct {
	conv      conversation.Store
	sender    service.Sender
	interval  time.Duration
	threshold time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewSweepWorker constructs the idle sweep.
func NewSweepWorker(conv conversation.Store, sender service.Sender, interval, threshold time.Duration, logger *zap.Logger) *SweepWorker {
	return &SweepWorker{
		conv:      conv,
		sender:    sender,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// Run ticks until the context is cancelled. Sweep failures are logged and the
// next tick proceeds.
func (w *SweepWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over the active conversation states.
func (w *SweepWorker) Sweep(ctx context.Context) {
	states, err := w.conv.Snapshot(ctx)
	if err != nil {
		w.logger.Warn("conversation snapshot failed", zap.Error(err))
		return
	}

	cutoff := w.now().Add(-w.threshold)
	for participantID, state := range states {
		if !state.Active() || state.UpdatedAt.After(cutoff) {
			continue
		}

		text := "⏳ Похоже, вы отвлеклись. Диалог сброшен, откройте меню, чтобы продолжить."
		keyboard := service.Keyboard{
			{{Label: "🧑‍💻 Главное меню", Token: service.TokenMainMenu}},
		}
		if err := w.sender.Send(ctx, participantID, text, keyboard); err != nil {
			w.logger.Warn("idle reminder failed",
				zap.Int64("participant_id", participantID),
				zap.Error(err))
		}
		if err := w.conv.Clear(ctx, participantID); err != nil {
			w.logger.Warn("clear idle conversation failed",
				zap.Int64("participant_id", participantID),
				zap.Error(err))
			continue
		}
		w.logger.Info("idle conversation swept",
			zap.Int64("participant_id", participantID),
			zap.String("mode", string(state.Mode)))
	}
}
