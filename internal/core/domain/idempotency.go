package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateReference is returned by stores when an idempotency record
// already exists for the key. Surfaces when two first-time requests with the
// same reference race past the dedup pre-check; the loser re-reads and
// replays the winner's result.
var ErrDuplicateReference = errors.New("reference already recorded")

// IdempotencyRecord is the durable side of dedup-by-reference: written in the
// same database transaction as the wallet mutation it protects, so a replayed
// reference always resolves to the originally recorded transaction.
type IdempotencyRecord struct {
	Key           string    `json:"key"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}
