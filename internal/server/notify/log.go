package notify

import (
	"context"

	"github.com/dmitrijs2005/proposals/internal/logging"
)

// LogDispatcher writes messages to the log instead of sending them.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(l logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: l.With("module", "notify_log")}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info(ctx, "notification", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
