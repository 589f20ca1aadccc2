package autosave

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type sessionStore interface {
	AutosaveAll(ctx context.Context) (int, error)
	Sweep(ctx context.Context) int
}

// Job saves dirty drafts and expires idle sessions.
type Job struct {
	sessions sessionStore
	logger   *zap.Logger
}

func New(sessions sessionStore, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{sessions: sessions, logger: logger}
}

// Run never fails on a single draft; storage errors are logged and retried next tick.
func (j *Job) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("autosave drafts: %w", err)
	}

	saved, err := j.sessions.AutosaveAll(ctx)
	if err != nil {
		j.logger.Warn("autosave finished with errors", zap.Int("saved", saved), zap.Error(err))
	} else if saved > 0 {
		j.logger.Info("autosave completed", zap.Int("saved", saved))
	}

	if expired := j.sessions.Sweep(ctx); expired > 0 {
		j.logger.Info("idle draft sessions expired", zap.Int("expired", expired))
	}
	return nil
}
