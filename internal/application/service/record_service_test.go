package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/hireflow/internal/domain/chain"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/domain/query"
	"github.com/talentops/hireflow/internal/domain/workflow"
)

// In-memory repositories used across the service tests.

type memRecordRepo struct {
	records map[string]*entity.Record
	order   []string
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: make(map[string]*entity.Record)}
}

func (m *memRecordRepo) Create(_ context.Context, record *entity.Record) error {
	clone := *record
	clone.ApprovalChain = nil
	clone.History = nil
	m.records[record.ID] = &clone
	m.order = append(m.order, record.ID)
	return nil
}

func (m *memRecordRepo) GetByID(_ context.Context, id string) (*entity.Record, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (m *memRecordRepo) Update(_ context.Context, record *entity.Record) error {
	if _, ok := m.records[record.ID]; !ok {
		return errors.New("update of missing record")
	}
	clone := *record
	clone.ApprovalChain = nil
	clone.History = nil
	m.records[record.ID] = &clone
	return nil
}

func (m *memRecordRepo) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	for i, rid := range m.order {
		if rid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memRecordRepo) List(_ context.Context) ([]*entity.Record, error) {
	result := make([]*entity.Record, 0, len(m.order))
	for _, id := range m.order {
		clone := *m.records[id]
		result = append(result, &clone)
	}
	return result, nil
}

func (m *memRecordRepo) ListByStatus(ctx context.Context, status string) ([]*entity.Record, error) {
	all, _ := m.List(ctx)
	result := make([]*entity.Record, 0)
	for _, r := range all {
		if r.Status == status {
			result = append(result, r)
		}
	}
	return result, nil
}

type memApproverRepo struct {
	chains map[string][]entity.Approver
}

func newMemApproverRepo() *memApproverRepo {
	return &memApproverRepo{chains: make(map[string][]entity.Approver)}
}

func (m *memApproverRepo) ReplaceChain(_ context.Context, recordID string, approvers []entity.Approver) error {
	m.chains[recordID] = append([]entity.Approver{}, approvers...)
	return nil
}

func (m *memApproverRepo) GetByRecordID(_ context.Context, recordID string) ([]entity.Approver, error) {
	return append([]entity.Approver{}, m.chains[recordID]...), nil
}

type memHistoryRepo struct {
	entries   map[string][]entity.HistoryEntry
	appendErr func(*entity.HistoryEntry) error
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{entries: make(map[string][]entity.HistoryEntry)}
}

func (m *memHistoryRepo) Append(_ context.Context, entry *entity.HistoryEntry) error {
	if m.appendErr != nil {
		if err := m.appendErr(entry); err != nil {
			return err
		}
	}
	m.entries[entry.RecordID] = append(m.entries[entry.RecordID], *entry)
	return nil
}

func (m *memHistoryRepo) GetByRecordID(_ context.Context, recordID string) ([]entity.HistoryEntry, error) {
	return append([]entity.HistoryEntry{}, m.entries[recordID]...), nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type rollbackTxKey struct{}

// rollbackTx mimics real transaction semantics over the in-memory repos:
// nested calls join the open transaction, and a top-level error restores
// the repos to their pre-transaction state.
type rollbackTx struct {
	records   *memRecordRepo
	approvers *memApproverRepo
	history   *memHistoryRepo
}

func (r rollbackTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(rollbackTxKey{}) != nil {
		return fn(ctx)
	}

	savedRecords := make(map[string]*entity.Record, len(r.records.records))
	for id, rec := range r.records.records {
		clone := *rec
		savedRecords[id] = &clone
	}
	savedOrder := append([]string{}, r.records.order...)
	savedChains := make(map[string][]entity.Approver, len(r.approvers.chains))
	for id, c := range r.approvers.chains {
		savedChains[id] = append([]entity.Approver{}, c...)
	}
	savedEntries := make(map[string][]entity.HistoryEntry, len(r.history.entries))
	for id, e := range r.history.entries {
		savedEntries[id] = append([]entity.HistoryEntry{}, e...)
	}

	err := fn(context.WithValue(ctx, rollbackTxKey{}, struct{}{}))
	if err != nil {
		r.records.records = savedRecords
		r.records.order = savedOrder
		r.approvers.chains = savedChains
		r.history.entries = savedEntries
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	service   RecordService
	records   *memRecordRepo
	approvers *memApproverRepo
	history   *memHistoryRepo
}

func newFixture() *fixture {
	records := newMemRecordRepo()
	approvers := newMemApproverRepo()
	history := newMemHistoryRepo()
	return &fixture{
		service:   NewRecordService(records, approvers, history, passthroughTx{}, nopLogger{}),
		records:   records,
		approvers: approvers,
		history:   history,
	}
}

func offerDraft() *entity.Draft {
	return &entity.Draft{
		Kind: entity.KindOffer,
		Payload: &entity.OfferPayload{
			CandidateID:      "c1",
			CandidateName:    "Dana Reyes",
			JobRequisitionID: "j1",
			JobTitle:         "Staff Engineer",
			Salary:           185000,
			Currency:         "USD",
		},
		CurrentStep: 4,
		Dirty:       true,
	}
}

func TestCommitDraft_Create(t *testing.T) {
	f := newFixture()

	record, err := f.service.CommitDraft(context.Background(), offerDraft(), "recruiter-1")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, entity.StatusDraft, record.Status)
	assert.False(t, record.CreatedAt.After(record.UpdatedAt))
	require.Len(t, record.History, 1)
	assert.Equal(t, entity.ActionCreated, record.History[0].Action)
	assert.Equal(t, "recruiter-1", record.History[0].Actor)

	// A second fresh draft never reuses the ID.
	second, err := f.service.CommitDraft(context.Background(), offerDraft(), "recruiter-1")
	require.NoError(t, err)
	assert.NotEqual(t, record.ID, second.ID)
}

func TestCommitDraft_EmptyPayload(t *testing.T) {
	f := newFixture()

	draft := &entity.Draft{Kind: entity.KindOffer, Payload: &entity.OfferPayload{}}
	_, err := f.service.CommitDraft(context.Background(), draft, "recruiter-1")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestCommitDraft_EditKeepsIDAndAppendsHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	edit := offerDraft()
	edit.RecordID = created.ID
	edit.Payload.(*entity.OfferPayload).Salary = 195000

	updated, err := f.service.CommitDraft(ctx, edit, "recruiter-1")
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 195000.0, updated.Payload.(*entity.OfferPayload).Salary)
	require.Len(t, updated.History, 2)
	assert.Equal(t, entity.ActionCreated, updated.History[0].Action)
	assert.Equal(t, entity.ActionEdited, updated.History[1].Action)
}

func TestCommitDraft_EditKindMismatchRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	// An edit draft of a different kind must not swap the payload type
	// underneath the stored kind column.
	edit := &entity.Draft{
		RecordID: created.ID,
		Kind:     entity.KindOnboarding,
		Payload: &entity.OnboardingPayload{
			CandidateID:   "c1",
			CandidateName: "Dana Reyes",
		},
	}
	_, err = f.service.CommitDraft(ctx, edit, "recruiter-1")
	assert.ErrorIs(t, err, ErrKindMismatch)

	still, err := f.service.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.KindOffer, still.Kind)
	assert.Equal(t, entity.KindOffer, still.Payload.Kind())
	assert.Equal(t, 185000.0, still.Payload.(*entity.OfferPayload).Salary)
	require.Len(t, still.History, 1, "rejected edit must not append history")
}

func TestCommitDraft_EditNonDraftRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, created.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)

	edit := offerDraft()
	edit.RecordID = created.ID
	_, err = f.service.CommitDraft(ctx, edit, "recruiter-1")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestDeleteRecord_Precondition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	// Non-draft records survive delete attempts untouched.
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)
	err = f.service.DeleteRecord(ctx, record.ID)
	assert.ErrorIs(t, err, ErrNotDeletable)
	still, err := f.service.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, still.ID)

	// Draft records delete cleanly.
	draft, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteRecord(ctx, draft.ID))
	_, err = f.service.GetRecord(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteRecord_NotFound(t *testing.T) {
	f := newFixture()
	err := f.service.DeleteRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDuplicateRecord_ResetsLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	source, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	source, err = f.service.AddApprover(ctx, source.ID, "Kim Osei", "VP Engineering")
	require.NoError(t, err)

	// Walk the record to Signed, accumulating history.
	_, err = f.service.TransitionStatus(ctx, source.ID, entity.StatusPendingApproval, "recruiter-1")
	require.NoError(t, err)
	source, err = f.service.GetRecord(ctx, source.ID)
	require.NoError(t, err)
	_, err = f.service.DecideApprover(ctx, source.ID, source.ApprovalChain[0].ID, entity.ApproverApproved, "", "kim")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, source.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, source.ID, entity.StatusSigned, "recruiter-1")
	require.NoError(t, err)

	source, err = f.service.GetRecord(ctx, source.ID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusSigned, source.Status)
	require.Greater(t, len(source.History), 1)

	duplicate, err := f.service.DuplicateRecord(ctx, source.ID, "recruiter-1")
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, duplicate.ID)
	assert.Equal(t, entity.StatusDraft, duplicate.Status)
	require.Len(t, duplicate.History, 1)
	assert.Contains(t, duplicate.History[0].Details, source.ID)
	require.Len(t, duplicate.ApprovalChain, 1)
	assert.Equal(t, entity.ApproverPending, duplicate.ApprovalChain[0].Status)
	assert.NotEqual(t, source.ApprovalChain[0].ID, duplicate.ApprovalChain[0].ID)
}

func TestTransitionStatus_StrictTable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	// Jumping from draft straight to signed is illegal.
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusSigned, "recruiter-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	// With no approvers, submission resolves to Sent, so requesting
	// PendingApproval is refused.
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusPendingApproval, "recruiter-1")
	assert.Error(t, err)

	sent, err := f.service.TransitionStatus(ctx, record.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, sent.Status)
	assert.Equal(t, entity.ActionSent, sent.History[len(sent.History)-1].Action)

	// Sent records cannot be reopened.
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusDraft, "recruiter-1")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestTransitionStatus_SubmitWithApproversRequiresApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	_, err = f.service.AddApprover(ctx, record.ID, "Kim Osei", "VP Engineering")
	require.NoError(t, err)

	// Cannot skip approval when the chain is non-empty.
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusSent, "recruiter-1")
	assert.Error(t, err)

	pending, err := f.service.TransitionStatus(ctx, record.ID, entity.StatusPendingApproval, "recruiter-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, pending.Status)
}

func TestDecideApprover_AutoAdvances(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	record, err = f.service.AddApprover(ctx, record.ID, "Kim Osei", "VP Engineering")
	require.NoError(t, err)
	record, err = f.service.AddApprover(ctx, record.ID, "Lee Park", "HR Director")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusPendingApproval, "recruiter-1")
	require.NoError(t, err)

	record, err = f.service.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	first, second := record.ApprovalChain[0].ID, record.ApprovalChain[1].ID

	// One approval keeps the record pending.
	record, err = f.service.DecideApprover(ctx, record.ID, first, entity.ApproverApproved, "fine by me", "kim")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, record.Status)
	assert.NotNil(t, record.ApprovalChain[0].DecidedAt)

	// The final approval advances the record to Approved.
	record, err = f.service.DecideApprover(ctx, record.ID, second, entity.ApproverApproved, "", "lee")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, record.Status)
	assert.Equal(t, entity.ActionApproved, record.History[len(record.History)-1].Action)
}

func TestDecideApprover_RejectionShortCircuits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	record, err = f.service.AddApprover(ctx, record.ID, "Kim Osei", "VP Engineering")
	require.NoError(t, err)
	record, err = f.service.AddApprover(ctx, record.ID, "Lee Park", "HR Director")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusPendingApproval, "recruiter-1")
	require.NoError(t, err)

	record, err = f.service.GetRecord(ctx, record.ID)
	require.NoError(t, err)

	record, err = f.service.DecideApprover(ctx, record.ID, record.ApprovalChain[1].ID, entity.ApproverRejected, "budget", "lee")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, record.Status)
}

func TestDecideApprover_DecisionAndAdvanceAtomic(t *testing.T) {
	records := newMemRecordRepo()
	approvers := newMemApproverRepo()
	history := newMemHistoryRepo()
	tx := rollbackTx{records: records, approvers: approvers, history: history}
	svc := NewRecordService(records, approvers, history, tx, nopLogger{})
	ctx := context.Background()

	record, err := svc.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)
	record, err = svc.AddApprover(ctx, record.ID, "Kim Osei", "VP Engineering")
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, record.ID, entity.StatusPendingApproval, "recruiter-1")
	require.NoError(t, err)

	record, err = svc.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	approverID := record.ApprovalChain[0].ID

	// Fail the auto-advance history append; the decision written in the
	// same transaction must roll back with it.
	history.appendErr = func(entry *entity.HistoryEntry) error {
		if entry.Action == entity.ActionApproved {
			return errors.New("history write failed")
		}
		return nil
	}

	_, err = svc.DecideApprover(ctx, record.ID, approverID, entity.ApproverApproved, "", "kim")
	require.Error(t, err)

	after, err := svc.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, after.Status)
	assert.Equal(t, entity.ApproverPending, after.ApprovalChain[0].Status,
		"decision must not persist when the derived transition fails")
	assert.Nil(t, after.ApprovalChain[0].DecidedAt)

	// With the failure cleared the same decision lands, and chain and
	// status move together.
	history.appendErr = nil
	decided, err := svc.DecideApprover(ctx, record.ID, approverID, entity.ApproverApproved, "", "kim")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, decided.Status)
	assert.Equal(t, entity.ApproverApproved, decided.ApprovalChain[0].Status)
}

func TestDecideApprover_NotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	_, err = f.service.DecideApprover(ctx, record.ID, "missing", entity.ApproverApproved, "", "kim")
	assert.ErrorIs(t, err, chain.ErrApproverNotFound)
}

func TestHistoryAppendOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	record, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
	require.NoError(t, err)

	lengths := []int{len(record.History)}
	firstEntry := record.History[0]

	record, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)
	lengths = append(lengths, len(record.History))

	record, err = f.service.TransitionStatus(ctx, record.ID, entity.StatusSigned, "recruiter-1")
	require.NoError(t, err)
	lengths = append(lengths, len(record.History))

	for i := 1; i < len(lengths); i++ {
		assert.Greater(t, lengths[i], lengths[i-1], "history length must be non-decreasing")
	}
	assert.Equal(t, firstEntry, record.History[0], "existing history entries must not change")
}

func TestListRecords_FilterAndPaginate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.CommitDraft(ctx, offerDraft(), "recruiter-1")
		require.NoError(t, err)
	}

	page, total, err := f.service.ListRecords(ctx, query.Filter{Status: entity.StatusDraft}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	empty, total, err := f.service.ListRecords(ctx, query.Filter{Status: entity.StatusSigned}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, empty)
}

func TestExpireSentRecords(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	stale := offerDraft()
	stale.Payload.(*entity.OfferPayload).ExpiryDate = &past
	fresh := offerDraft()
	fresh.Payload.(*entity.OfferPayload).ExpiryDate = &future

	staleRec, err := f.service.CommitDraft(ctx, stale, "recruiter-1")
	require.NoError(t, err)
	freshRec, err := f.service.CommitDraft(ctx, fresh, "recruiter-1")
	require.NoError(t, err)

	_, err = f.service.TransitionStatus(ctx, staleRec.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)
	_, err = f.service.TransitionStatus(ctx, freshRec.ID, entity.StatusSent, "recruiter-1")
	require.NoError(t, err)

	expired, err := f.service.ExpireSentRecords(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := f.service.GetRecord(ctx, staleRec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusExpired, got.Status)
	assert.Equal(t, entity.ActorSystem, got.History[len(got.History)-1].Actor)

	still, err := f.service.GetRecord(ctx, freshRec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, still.Status)
}
