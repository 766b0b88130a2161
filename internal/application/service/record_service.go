package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/domain/chain"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/domain/query"
	"github.com/talentops/hireflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RecordService manages the lifecycle of committed records: commit,
// deletion, duplication, status transitions, approval chain operations,
// and the filtered listing.
type RecordService interface {
	CommitDraft(ctx context.Context, draft *entity.Draft, actor string) (*entity.Record, error)
	GetRecord(ctx context.Context, id string) (*entity.Record, error)
	ListRecords(ctx context.Context, filter query.Filter, page, pageSize int) ([]*entity.Record, int, error)
	DeleteRecord(ctx context.Context, id string) error
	DuplicateRecord(ctx context.Context, id, actor string) (*entity.Record, error)
	TransitionStatus(ctx context.Context, id, newStatus, actor string) (*entity.Record, error)

	AddApprover(ctx context.Context, recordID, name, position string) (*entity.Record, error)
	RemoveApprover(ctx context.Context, recordID, approverID string) (*entity.Record, error)
	MoveApprover(ctx context.Context, recordID, approverID, direction string) (*entity.Record, error)
	DecideApprover(ctx context.Context, recordID, approverID, decision, comment, actor string) (*entity.Record, error)

	ExpireSentRecords(ctx context.Context, now time.Time) (int, error)
	AppendLetterHistory(ctx context.Context, recordID, path string) error
}

type recordServiceImpl struct {
	recordRepo   port.RecordRepository
	approverRepo port.ApproverRepository
	historyRepo  port.HistoryRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewRecordService creates a new RecordService
func NewRecordService(
	recordRepo port.RecordRepository,
	approverRepo port.ApproverRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	logger Logger,
) RecordService {
	return &recordServiceImpl{
		recordRepo:   recordRepo,
		approverRepo: approverRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CommitDraft finalizes a wizard draft. A draft without a record ID creates
// a new record with a fresh identity and an initial history entry; a draft
// seeded from an existing record merges back into it and appends an edit
// entry. The target record's ID never changes on edit.
func (s *recordServiceImpl) CommitDraft(ctx context.Context, draft *entity.Draft, actor string) (*entity.Record, error) {
	if draft.Payload == nil || draft.Payload.Empty() {
		return nil, ErrEmptyPayload
	}

	if draft.Editing() {
		return s.commitEdit(ctx, draft, actor)
	}
	return s.commitCreate(ctx, draft, actor)
}

func (s *recordServiceImpl) commitCreate(ctx context.Context, draft *entity.Draft, actor string) (*entity.Record, error) {
	now := time.Now()
	record := &entity.Record{
		ID:            uuid.NewString(),
		Kind:          draft.Kind,
		Status:        entity.StatusDraft,
		Payload:       draft.Payload,
		ApprovalChain: append([]entity.Approver{}, draft.ApprovalChain...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	entry := &entity.HistoryEntry{
		RecordID:  record.ID,
		Action:    entity.ActionCreated,
		Actor:     actor,
		Details:   "Initial record created",
		Timestamp: now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if err := s.approverRepo.ReplaceChain(txCtx, record.ID, record.ApprovalChain); err != nil {
			return fmt.Errorf("store approval chain: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to commit draft", "error", err, "kind", draft.Kind)
		return nil, err
	}

	record.AppendHistory(*entry)
	s.logger.Info("Record created", "id", record.ID, "kind", record.Kind)
	return record, nil
}

func (s *recordServiceImpl) commitEdit(ctx context.Context, draft *entity.Draft, actor string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, draft.RecordID)
	if err != nil {
		return nil, err
	}
	if !record.IsDraft() {
		return nil, ErrNotEditable
	}
	if record.Kind != draft.Kind {
		return nil, fmt.Errorf("%w: record is %s, draft is %s", ErrKindMismatch, record.Kind, draft.Kind)
	}

	now := time.Now()
	record.Payload = draft.Payload
	record.ApprovalChain = append([]entity.Approver{}, draft.ApprovalChain...)
	record.UpdatedAt = now

	entry := &entity.HistoryEntry{
		RecordID:  record.ID,
		Action:    entity.ActionEdited,
		Actor:     actor,
		Details:   "Record fields updated",
		Timestamp: now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Update(txCtx, record); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := s.approverRepo.ReplaceChain(txCtx, record.ID, record.ApprovalChain); err != nil {
			return fmt.Errorf("store approval chain: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to commit edit", "error", err, "id", record.ID)
		return nil, err
	}

	record.AppendHistory(*entry)
	s.logger.Info("Record updated", "id", record.ID)
	return record, nil
}

// GetRecord retrieves a fully hydrated record by ID.
func (s *recordServiceImpl) GetRecord(ctx context.Context, id string) (*entity.Record, error) {
	return s.loadRecord(ctx, id)
}

// ListRecords applies the query projection over the record collection and
// returns one page plus the filtered total. Approval chains are hydrated
// for the returned page.
func (s *recordServiceImpl) ListRecords(ctx context.Context, filter query.Filter, page, pageSize int) ([]*entity.Record, int, error) {
	records, err := s.recordRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list records", "error", err)
		return nil, 0, err
	}

	filtered := query.Apply(records, filter)
	paged := query.Paginate(filtered, page, pageSize)

	for _, record := range paged {
		approvers, err := s.approverRepo.GetByRecordID(ctx, record.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("load approval chain: %w", err)
		}
		record.ApprovalChain = approvers
	}

	return paged, len(filtered), nil
}

// DeleteRecord removes a record, permitted only while it is still a draft.
// Records in any later status have already triggered external side effects
// and are retained.
func (s *recordServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrRecordNotFound
	}
	if !record.IsDraft() {
		return ErrNotDeletable
	}

	if err := s.recordRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete record", "error", err, "id", id)
		return err
	}

	s.logger.Info("Record deleted", "id", id)
	return nil
}

// DuplicateRecord clones a record into a fresh draft: new identity, reset
// timestamps, approvers reset to pending, and a single-entry history. The
// duplicate does not inherit the source's audit trail.
func (s *recordServiceImpl) DuplicateRecord(ctx context.Context, id, actor string) (*entity.Record, error) {
	source, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := entity.ClonePayload(source.Payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	duplicate := &entity.Record{
		ID:        uuid.NewString(),
		Kind:      source.Kind,
		Status:    entity.StatusDraft,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, a := range source.ApprovalChain {
		duplicate.ApprovalChain = append(duplicate.ApprovalChain, entity.Approver{
			ID:       uuid.NewString(),
			Name:     a.Name,
			Position: a.Position,
			Status:   entity.ApproverPending,
		})
	}

	entry := &entity.HistoryEntry{
		RecordID:  duplicate.ID,
		Action:    entity.ActionCreated,
		Actor:     actor,
		Details:   fmt.Sprintf("Duplicated from %s", source.ID),
		Timestamp: now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Create(txCtx, duplicate); err != nil {
			return fmt.Errorf("create duplicate: %w", err)
		}
		if err := s.approverRepo.ReplaceChain(txCtx, duplicate.ID, duplicate.ApprovalChain); err != nil {
			return fmt.Errorf("store approval chain: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to duplicate record", "error", err, "source_id", id)
		return nil, err
	}

	duplicate.AppendHistory(*entry)
	s.logger.Info("Record duplicated", "id", duplicate.ID, "source_id", id)
	return duplicate, nil
}

// TransitionStatus moves a record to a new status when the lifecycle table
// permits it, stamping UpdatedAt and appending a history entry whose action
// is derived from the target status.
func (s *recordServiceImpl) TransitionStatus(ctx context.Context, id, newStatus, actor string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, record, newStatus, actor, "")
}

// transition validates and applies one status change. details overrides the
// default history details when non-empty.
func (s *recordServiceImpl) transition(ctx context.Context, record *entity.Record, newStatus, actor, details string) (*entity.Record, error) {
	from := workflow.State(record.Status)
	to := workflow.State(newStatus)
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: %s", workflow.ErrInvalidState, newStatus)
	}

	trigger, ok := workflow.TriggerBetween(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", workflow.ErrInvalidTransition, from, to)
	}

	machine := workflow.NewLifecycle(from, func() bool {
		return len(record.ApprovalChain) == 0
	})
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}
	if machine.State() != to {
		// The trigger resolved to a different target, e.g. submitting a
		// record with approvers cannot skip straight to Sent.
		return nil, fmt.Errorf("%w: %s -> %s resolves to %s", workflow.ErrInvalidTransition, from, to, machine.State())
	}

	now := time.Now()
	record.Status = newStatus
	record.UpdatedAt = now

	if details == "" {
		details = fmt.Sprintf("Status changed from %s to %s", from, to)
	}
	entry := &entity.HistoryEntry{
		RecordID:  record.ID,
		Action:    entity.ActionForStatus(newStatus),
		Actor:     actor,
		Details:   details,
		Timestamp: now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Update(txCtx, record); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to transition status", "error", err, "id", record.ID, "to", newStatus)
		return nil, err
	}

	record.AppendHistory(*entry)
	s.logger.Info("Record status changed", "id", record.ID, "from", string(from), "to", newStatus)
	return record, nil
}

// AddApprover appends a pending approver to the record's chain.
func (s *recordServiceImpl) AddApprover(ctx context.Context, recordID, name, position string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	updated, err := chain.Add(record.ApprovalChain, name, position)
	if err != nil {
		return nil, err
	}
	record.ApprovalChain = updated

	if err := s.saveChain(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RemoveApprover drops an approver from the chain; removing a missing
// approver is a no-op.
func (s *recordServiceImpl) RemoveApprover(ctx context.Context, recordID, approverID string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	record.ApprovalChain = chain.Remove(record.ApprovalChain, approverID)
	if err := s.saveChain(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MoveApprover nudges an approver one position up or down. Boundary moves
// are no-ops.
func (s *recordServiceImpl) MoveApprover(ctx context.Context, recordID, approverID, direction string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	index := chain.IndexOf(record.ApprovalChain, approverID)
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", chain.ErrApproverNotFound, approverID)
	}

	switch direction {
	case "up":
		record.ApprovalChain = chain.MoveUp(record.ApprovalChain, index)
	case "down":
		record.ApprovalChain = chain.MoveDown(record.ApprovalChain, index)
	default:
		return nil, fmt.Errorf("invalid move direction: %s", direction)
	}

	if err := s.saveChain(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DecideApprover records one approver's decision and, when the chain-level
// status resolves, advances the record: all approved moves it to Approved,
// any rejection moves it to Rejected.
func (s *recordServiceImpl) DecideApprover(ctx context.Context, recordID, approverID, decision, comment, actor string) (*entity.Record, error) {
	record, err := s.loadRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	updated, err := chain.SetStatus(record.ApprovalChain, approverID, decision, comment, time.Now())
	if err != nil {
		return nil, err
	}
	record.ApprovalChain = updated

	// The decision and any derived status change commit as a unit: a
	// record never holds a decided chain with a stale status.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.saveChain(txCtx, record); err != nil {
			return err
		}
		if record.Status != entity.StatusPendingApproval {
			return nil
		}
		switch chain.Derive(record.ApprovalChain) {
		case entity.StatusApproved:
			_, err := s.transition(txCtx, record, entity.StatusApproved, actor, "All approvers approved")
			return err
		case entity.StatusRejected:
			_, err := s.transition(txCtx, record, entity.StatusRejected, actor, "Approval chain rejected")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ExpireSentRecords expires sent offers whose expiry date has passed.
// Returns the number of records expired.
func (s *recordServiceImpl) ExpireSentRecords(ctx context.Context, now time.Time) (int, error) {
	records, err := s.recordRepo.ListByStatus(ctx, entity.StatusSent)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, record := range records {
		offer, ok := record.Payload.(*entity.OfferPayload)
		if !ok || offer.ExpiryDate == nil || !offer.ExpiryDate.Before(now) {
			continue
		}

		full, err := s.loadRecord(ctx, record.ID)
		if err != nil {
			s.logger.Error("Failed to load sent record for expiry", "error", err, "id", record.ID)
			continue
		}
		if _, err := s.transition(ctx, full, entity.StatusExpired, entity.ActorSystem, "Offer expiry date passed"); err != nil {
			s.logger.Error("Failed to expire record", "error", err, "id", record.ID)
			continue
		}
		expired++
	}
	return expired, nil
}

// AppendLetterHistory records a completed offer-letter generation in the
// record's audit trail. Called by the document worker.
func (s *recordServiceImpl) AppendLetterHistory(ctx context.Context, recordID, path string) error {
	entry := &entity.HistoryEntry{
		RecordID:  recordID,
		Action:    entity.ActionLetterGenerated,
		Actor:     entity.ActorSystem,
		Details:   fmt.Sprintf("Offer letter generated at %s", path),
		Timestamp: time.Now(),
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to record letter generation", "error", err, "id", recordID)
		return err
	}
	return nil
}

// loadRecord assembles a record with its chain and history, converting a
// missing row into ErrRecordNotFound and guarding the non-empty-history
// invariant.
func (s *recordServiceImpl) loadRecord(ctx context.Context, id string) (*entity.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	approvers, err := s.approverRepo.GetByRecordID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load approval chain: %w", err)
	}
	record.ApprovalChain = approvers

	history, err := s.historyRepo.GetByRecordID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: record %s has no history", ErrCorruptRecord, id)
	}
	record.History = history

	return record, nil
}

// saveChain persists the record's approval chain and refreshes UpdatedAt.
func (s *recordServiceImpl) saveChain(ctx context.Context, record *entity.Record) error {
	record.UpdatedAt = time.Now()
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Update(txCtx, record); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := s.approverRepo.ReplaceChain(txCtx, record.ID, record.ApprovalChain); err != nil {
			return fmt.Errorf("store approval chain: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save approval chain", "error", err, "id", record.ID)
	}
	return err
}
