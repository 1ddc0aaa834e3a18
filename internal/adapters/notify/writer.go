package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

// WriterNotifier prints notifications instead of delivering them.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Send(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	recipient := notification.Recipient
	if recipient == "" {
		recipient = "(no recipient)"
	}
	_, err := fmt.Fprintf(n.out, "To: %s\nSubject: %s\n\n%s\n\n", recipient, notification.Subject, notification.Body)
	return err
}
