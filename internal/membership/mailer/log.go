package mailer

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// LogSender writes messages to the request logger instead of sending them.
// It is the default driver for local development; the body is not logged
// since it carries registration links.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (LogSender) Send(ctx context.Context, msg Message) Delivery {
	if err := msg.validate(); err != nil {
		return failed(err)
	}
	slogx.FromContext(ctx).InfoContext(ctx, "mail suppressed by log driver",
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return delivered()
}

// RecordingSender keeps every message it is handed. Fail, when set, decides
// per message whether delivery fails.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Message

	Fail func(Message) error
}

func (r *RecordingSender) Send(ctx context.Context, msg Message) Delivery {
	if err := msg.validate(); err != nil {
		return failed(err)
	}
	if r.Fail != nil {
		if err := r.Fail(msg); err != nil {
			return failed(err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return delivered()
}

// Sent returns a copy of the delivered messages in send order.
func (r *RecordingSender) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
