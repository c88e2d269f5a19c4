package notify

import (
	"context"
	"log/slog"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/idx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// LogSender writes messages to the log instead of sending them. It is the
// default outside production.
type LogSender struct {
	// IncludeBody logs the rendered text body, which contains the code.
	IncludeBody bool
}

func (s LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	id := "log-" + idx.New().String()
	attrs := []any{
		slog.String("message_id", id),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	}
	if s.IncludeBody {
		attrs = append(attrs, slog.String("body", msg.Text))
	}
	slogx.FromContext(ctx).Info("email not sent, logged instead", attrs...)
	return id, nil
}
