package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/eventra/server/internal/domain/accounts"
)

// sendTimeout bounds a single delivery attempt so a stalled email provider
// cannot hold a worker slot indefinitely.
const sendTimeout = 30 * time.Second

// Sender delivers a rendered verification email.
type Sender interface {
	SendVerification(ctx context.Context, to, username, link string) error
}

// VerificationEmailArgs carries a queued verification email.
type VerificationEmailArgs struct {
	accounts.VerificationEmail
}

func (VerificationEmailArgs) Kind() string { return JobKindVerificationEmail }

// VerificationEmailWorker delivers verification emails off the request path.
type VerificationEmailWorker struct {
	river.WorkerDefaults[VerificationEmailArgs]
	Sender Sender
}

func (VerificationEmailWorker) Kind() string { return JobKindVerificationEmail }

func (w VerificationEmailWorker) Work(ctx context.Context, job *river.Job[VerificationEmailArgs]) error {
	if w.Sender == nil {
		return fmt.Errorf("email sender not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := job.Args.VerificationEmail
	if err := w.Sender.SendVerification(ctx, msg.To, msg.Username, msg.Link); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// NewWorkers registers every worker the server runs.
func NewWorkers(sender Sender) (*river.Workers, error) {
	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, VerificationEmailWorker{Sender: sender}); err != nil {
		return nil, fmt.Errorf("register verification email worker: %w", err)
	}
	return workers, nil
}
