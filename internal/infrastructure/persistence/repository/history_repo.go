package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository. The table is
// append-only: there is no update or delete statement in this file.
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one history entry and fills in its generated ID
func (r *HistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO history (record_id, action, actor, details, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.RecordID,
		entry.Action,
		entry.Actor,
		entry.Details,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append history", zap.String("record_id", entry.RecordID), zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByRecordID returns the record's history in append order
func (r *HistoryRepository) GetByRecordID(ctx context.Context, recordID string) ([]entity.HistoryEntry, error) {
	query := `
		SELECT id, record_id, action, actor, details, timestamp
		FROM history
		WHERE record_id = ?
		ORDER BY id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, recordID)
	if err != nil {
		r.logger.Error("Failed to load history", zap.String("record_id", recordID), zap.Error(err))
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	entries := make([]entity.HistoryEntry, 0)
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.ID, &e.RecordID, &e.Action, &e.Actor, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
