package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/platform/persistence"
	"github.com/library-lending-engine/internal/platform/retry"
)

// Option configures the lending engine services
type Option func(*options)

type options struct {
	now   func() time.Time
	retry []retry.Option
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRetry configures how conflicting units of work are retried
func WithRetry(opts ...retry.Option) Option {
	return func(o *options) {
		o.retry = append(o.retry, opts...)
	}
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// unitOfWork runs one lending operation in a single database transaction and
// repeats the whole operation when it loses a race on a constraint.
type unitOfWork struct {
	db     persistence.TxBeginner
	retry  []retry.Option
	logger *slog.Logger
}

func (u unitOfWork) run(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	result, err := retry.OnConflict(ctx, func(ctx context.Context) error {
		return classifyConflict(persistence.RunInTx(ctx, u.db, fn))
	}, u.retry...)

	if result.Attempts > 1 {
		u.logger.Warn("Lending operation retried after conflict",
			"operation", op,
			"attempts", result.Attempts,
			"succeeded", err == nil,
		)
	}
	return err
}

// classifyConflict turns serialization failures and deadlocks into ErrConcurrentUpdate
func classifyConflict(err error) error {
	if err == nil || errors.Is(err, shared.ErrConstraintConflict) {
		return err
	}
	if persistence.IsTransientConflict(err) {
		return fmt.Errorf("%w: %v", shared.ErrConcurrentUpdate, err)
	}
	return err
}

// logFailure logs business rule rejections at warn and everything else at error
func logFailure(log *slog.Logger, msg string, err error) {
	if isBusinessError(err) {
		log.Warn(msg, "error", err)
		return
	}
	log.Error(msg, "error", err)
}

func isBusinessError(err error) bool {
	return errors.Is(err, shared.ErrPreconditionFailed) ||
		errors.Is(err, shared.ErrValidation) ||
		errors.Is(err, shared.ErrConstraintConflict) ||
		IsNotFound(err)
}
