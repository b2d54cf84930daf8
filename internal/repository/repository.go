// Package repository persists the invoicing model with gorm. Every method is
// scoped to an owner and returns apperr types so callers never see gorm errors.
package repository

import (
	"context"
	"errors"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultReadAttempts = 3
	defaultReadBackoff  = 100 * time.Millisecond
)

// Repository is the gorm-backed store.
type Repository struct {
	db           *gorm.DB
	readAttempts int
	readBackoff  time.Duration
}

// Option tunes a Repository.
type Option func(*Repository)

// WithReadRetry sets how many times an idempotent read is attempted when the
// database is unavailable, and the pause between attempts.
func WithReadRetry(attempts int, backoff time.Duration) Option {
	return func(r *Repository) {
		if attempts > 0 {
			r.readAttempts = attempts
		}
		r.readBackoff = backoff
	}
}

// New wraps db.
func New(db *gorm.DB, opts ...Option) *Repository {
	r := &Repository{db: db, readAttempts: defaultReadAttempts, readBackoff: defaultReadBackoff}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DB exposes the handle for health checks.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// translate maps gorm errors onto the apperr taxonomy.
func translate(op, resource string, key any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(resource, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate(resource, key)
	}
	var (
		vErr *apperr.ValidationError
		nErr *apperr.NotFoundError
		dErr *apperr.DuplicateError
		tErr *apperr.InvalidTransitionError
	)
	if errors.As(err, &vErr) || errors.As(err, &nErr) || errors.As(err, &dErr) || errors.As(err, &tErr) {
		return err
	}
	if errors.Is(err, apperr.ErrUpstream) {
		return err
	}
	return apperr.Upstream(op, err)
}

// read runs an idempotent query, retrying only upstream failures.
func (r *Repository) read(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= r.readAttempts; attempt++ {
		err = fn(r.db.WithContext(ctx))
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if ctx.Err() != nil {
			return apperr.Upstream(op, ctx.Err())
		}
		if !apperr.IsRetryable(translate(op, "", nil, err)) || attempt == r.readAttempts {
			break
		}
		logger.FromContext(ctx).Warn("Retrying database read",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return apperr.Upstream(op, ctx.Err())
		case <-time.After(r.readBackoff):
		}
	}
	return err
}
