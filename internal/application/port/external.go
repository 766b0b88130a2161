package port

import (
	"context"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// LetterRenderer renders an offer letter document for a record and returns
// the path of the generated file.
type LetterRenderer interface {
	Render(ctx context.Context, record *entity.Record) (string, error)
}

// LetterDispatcher enqueues asynchronous offer-letter generation for a
// record. Enqueue returns an error when the queue is full or the
// dispatcher is shut down; generation itself reports through history.
type LetterDispatcher interface {
	Enqueue(recordID string) error
}
