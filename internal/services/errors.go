package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrHasDependentOrders = errors.New("client has dependent orders")
	ErrInvalidClient      = errors.New("client is missing or deleted")
	ErrInvalidProduct     = errors.New("product is missing or inactive")
	ErrEmptyOrder         = errors.New("order has no line items")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTimeout            = errors.New("store call timed out, outcome unknown")
	ErrStoreUnavailable   = errors.New("store unavailable, retry later")
)

// storeErr maps a store error onto the lifecycle taxonomy. Errors that fit
// no bucket are returned wrapped but otherwise untouched.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrTimeout), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrNoRows):
		// The row was visible a moment ago but the write touched nothing:
		// a policy filtered it out.
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	case errors.Is(err, store.ErrCheck):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isTaxonomy reports whether err already carries a lifecycle classification.
func isTaxonomy(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrForbidden, ErrHasDependentOrders, ErrInvalidClient,
		ErrInvalidProduct, ErrEmptyOrder, ErrInvalidInput, ErrTimeout, ErrStoreUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// bounded applies the default store timeout unless the caller already set a
// deadline.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
