package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/infrastructure/persistence/sqlite"
)

// ApproverRepository implements port.ApproverRepository. The chain is
// written as a unit: ordinal positions encode the list order, so replace
// semantics keep reordering trivially consistent.
type ApproverRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new approver repository
func NewApproverRepository(db *sqlite.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceChain overwrites the record's approval chain with the given list
func (r *ApproverRepository) ReplaceChain(ctx context.Context, recordID string, approvers []entity.Approver) error {
	exec := r.db.Executor(ctx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM approvers WHERE record_id = ?`, recordID); err != nil {
		r.logger.Error("Failed to clear approval chain", zap.String("record_id", recordID), zap.Error(err))
		return fmt.Errorf("failed to clear approval chain: %w", err)
	}

	query := `
		INSERT INTO approvers (id, record_id, ordinal, name, position, status, decided_at, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, a := range approvers {
		var decidedAt interface{}
		if a.DecidedAt != nil {
			decidedAt = *a.DecidedAt
		}
		if _, err := exec.ExecContext(ctx, query,
			a.ID, recordID, i, a.Name, a.Position, a.Status, decidedAt, a.Comment,
		); err != nil {
			r.logger.Error("Failed to store approver", zap.String("record_id", recordID), zap.Error(err))
			return fmt.Errorf("failed to store approver: %w", err)
		}
	}
	return nil
}

// GetByRecordID returns the record's approval chain in list order
func (r *ApproverRepository) GetByRecordID(ctx context.Context, recordID string) ([]entity.Approver, error) {
	query := `
		SELECT id, name, position, status, decided_at, comment
		FROM approvers
		WHERE record_id = ?
		ORDER BY ordinal
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, recordID)
	if err != nil {
		r.logger.Error("Failed to load approval chain", zap.String("record_id", recordID), zap.Error(err))
		return nil, fmt.Errorf("failed to load approval chain: %w", err)
	}
	defer rows.Close()

	approvers := make([]entity.Approver, 0)
	for rows.Next() {
		var a entity.Approver
		var decidedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Name, &a.Position, &a.Status, &decidedAt, &a.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		if decidedAt.Valid {
			a.DecidedAt = &decidedAt.Time
		}
		approvers = append(approvers, a)
	}
	return approvers, rows.Err()
}

// Verify interface compliance
var _ port.ApproverRepository = (*ApproverRepository)(nil)
