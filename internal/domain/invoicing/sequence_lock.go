package invoicing

import (
	"context"

	"github.com/tileshop/backend/internal/domain/shared"
)

// ErrSequenceBusy is returned when the allocation lock could not be taken
// before the retry budget ran out
var ErrSequenceBusy = shared.NewDomainError("SEQUENCE_BUSY", "Invoice numbering is busy, try again")

// SequenceLocker serializes invoice number allocation for one financial
// year. The returned release function must be called exactly once.
type SequenceLocker interface {
	Lock(ctx context.Context, fy string) (release func(context.Context) error, err error)
}
