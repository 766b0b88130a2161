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

// RecordRepository implements port.RecordRepository over sqlite. Approval
// chains and history live in their own repositories; this one stores the
// record row with its payload serialized as JSON.
type RecordRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sqlite.DB, logger *zap.Logger) port.RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new record row
func (r *RecordRepository) Create(ctx context.Context, record *entity.Record) error {
	payload, err := entity.MarshalPayload(record.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (id, kind, status, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		record.ID,
		record.Kind,
		record.Status,
		payload,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create record", zap.String("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID, returning (nil, nil) when absent
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*entity.Record, error) {
	query := `
		SELECT id, kind, status, payload, created_at, updated_at
		FROM records
		WHERE id = ?
	`

	record, err := scanRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get record", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// Update persists the record's status, payload and updated_at
func (r *RecordRepository) Update(ctx context.Context, record *entity.Record) error {
	payload, err := entity.MarshalPayload(record.Payload)
	if err != nil {
		return err
	}

	query := `
		UPDATE records
		SET status = ?, payload = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.Status,
		payload,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update record", zap.String("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s does not exist", record.ID)
	}
	return nil
}

// Delete removes a record row; approvers and history cascade
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete record", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns all records, newest first
func (r *RecordRepository) List(ctx context.Context) ([]*entity.Record, error) {
	query := `
		SELECT id, kind, status, payload, created_at, updated_at
		FROM records
		ORDER BY created_at DESC, id
	`
	return r.queryRecords(ctx, query)
}

// ListByStatus returns all records in one status, newest first
func (r *RecordRepository) ListByStatus(ctx context.Context, status string) ([]*entity.Record, error) {
	query := `
		SELECT id, kind, status, payload, created_at, updated_at
		FROM records
		WHERE status = ?
		ORDER BY created_at DESC, id
	`
	return r.queryRecords(ctx, query, status)
}

func (r *RecordRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*entity.Record, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list records", zap.Error(err))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*entity.Record, error) {
	var record entity.Record
	var payload string

	if err := row.Scan(
		&record.ID,
		&record.Kind,
		&record.Status,
		&payload,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := entity.UnmarshalPayload(record.Kind, payload)
	if err != nil {
		return nil, err
	}
	record.Payload = parsed
	return &record, nil
}

// Verify interface compliance
var _ port.RecordRepository = (*RecordRepository)(nil)
