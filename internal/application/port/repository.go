package port

import (
	"context"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// RecordRepository defines persistence operations for Record. Reads return
// (nil, nil) when no row matches; callers decide whether that is an error.
type RecordRepository interface {
	Create(ctx context.Context, record *entity.Record) error
	GetByID(ctx context.Context, id string) (*entity.Record, error)
	Update(ctx context.Context, record *entity.Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Record, error)
	ListByStatus(ctx context.Context, status string) ([]*entity.Record, error)
}

// ApproverRepository defines persistence operations for a record's approval
// chain. The chain is replaced as a unit to preserve list order.
type ApproverRepository interface {
	ReplaceChain(ctx context.Context, recordID string, approvers []entity.Approver) error
	GetByRecordID(ctx context.Context, recordID string) ([]entity.Approver, error)
}

// HistoryRepository defines persistence operations for the append-only
// audit trail. There is deliberately no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	GetByRecordID(ctx context.Context, recordID string) ([]entity.HistoryEntry, error)
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
