package invoice

import (
	"context"
	"errors"

	"github.com/bizbook/backend/internal/domain/shared"
)

// maxTransitionAttempts bounds the retry loop around a lifecycle
// transition. Optimistic-lock conflicts between concurrent transitions
// are transient; anything else aborts immediately.
const maxTransitionAttempts = 3

// runAtomic executes fn inside a fresh transaction, retrying on
// concurrency conflicts up to maxTransitionAttempts times. Each retry
// re-runs fn from scratch so it re-reads current aggregate state.
func runAtomic(ctx context.Context, scope TransactionScope, fn func(repos TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		err = scope.Execute(ctx, fn)
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
