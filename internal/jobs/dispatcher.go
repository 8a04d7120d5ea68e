package jobs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/eventra/server/internal/domain/accounts"
)

// Dispatcher enqueues verification emails through River so delivery happens
// off the request path with retries.
type Dispatcher struct {
	client *river.Client[pgx.Tx]
}

func NewDispatcher(client *river.Client[pgx.Tx]) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch queues a verification email for background delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, msg accounts.VerificationEmail) error {
	if d.client == nil {
		return fmt.Errorf("job client not configured")
	}

	opts := InsertOptsForKind(JobKindVerificationEmail)
	if _, err := d.client.Insert(ctx, VerificationEmailArgs{VerificationEmail: msg}, &opts); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	return nil
}
