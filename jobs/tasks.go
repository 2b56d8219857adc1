package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired rows from the sessions audit table.
	// The Redis copy of each session expires on its own TTL; this keeps the
	// relational record in step.
	TaskSessionPurge = "sessions:purge"
)

// NewSessionPurgeTask constructs an Asynq task. The task carries no payload;
// expiry is evaluated against the clock at execution time.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// SessionPurger deletes expired session records.
type SessionPurger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionPurger constructs a SessionPurger.
func NewSessionPurger(pool *pgxpool.Pool, logger *slog.Logger) *SessionPurger {
	return &SessionPurger{pool: pool, logger: logger}
}

// HandleSessionPurge processes TaskSessionPurge tasks.
func (p *SessionPurger) HandleSessionPurge(ctx context.Context, t *asynq.Task) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Info("purged expired sessions", slog.Int64("deleted", tag.RowsAffected()))
	}
	return nil
}
