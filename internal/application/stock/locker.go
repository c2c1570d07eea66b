package stock

import (
	"context"

	"github.com/google/uuid"
)

// ItemLocker serializes mutations of one item across goroutines or processes.
// Lock blocks until the item is held or ctx is done; the returned func releases it.
type ItemLocker interface {
	Lock(ctx context.Context, itemID uuid.UUID) (unlock func(), err error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}
