package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentops/hireflow/internal/domain/chain"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/domain/wizard"
)

// ErrSessionNotFound is returned when an operation references a missing or
// already-closed wizard session.
var ErrSessionNotFound = errors.New("wizard session not found")

// SessionState is a snapshot of one wizard session returned to callers.
type SessionState struct {
	SessionID string        `json:"session_id"`
	Draft     *entity.Draft `json:"draft"`
	StepLabel string        `json:"step_label"`
	Steps     int           `json:"steps"`
	Progress  float64       `json:"progress"`
}

// SessionService manages wizard sessions. Each session owns exactly one
// draft; operations on a session are serialized so draft mutations are
// never interleaved.
type SessionService interface {
	Start(ctx context.Context, kind, recordID string) (*SessionState, error)
	Get(sessionID string) (*SessionState, error)
	Patch(sessionID string, patch entity.Patch) (*SessionState, error)
	Advance(ctx context.Context, sessionID, actor string) (*SessionState, *entity.Record, error)
	Retreat(sessionID string) (*SessionState, error)
	JumpTo(sessionID string, step int) (*SessionState, error)
	Cancel(sessionID string) error

	AddApprover(sessionID, name, position string) (*SessionState, error)
	RemoveApprover(sessionID, approverID string) (*SessionState, error)
	MoveApprover(sessionID, approverID, direction string) (*SessionState, error)
}

type session struct {
	draft      *entity.Draft
	definition *wizard.Definition
	startedAt  time.Time
}

type sessionServiceImpl struct {
	mu       sync.Mutex
	sessions map[string]*session
	records  RecordService
	logger   Logger
}

// NewSessionService creates a new SessionService backed by the given
// record service for commits.
func NewSessionService(records RecordService, logger Logger) SessionService {
	return &sessionServiceImpl{
		sessions: make(map[string]*session),
		records:  records,
		logger:   logger,
	}
}

// Start opens a new wizard session. When recordID is given the draft is
// seeded from that record for an edit flow; the record must still be a
// draft.
func (s *sessionServiceImpl) Start(ctx context.Context, kind, recordID string) (*SessionState, error) {
	var seed *entity.Record
	if recordID != "" {
		record, err := s.records.GetRecord(ctx, recordID)
		if err != nil {
			return nil, err
		}
		if !record.IsDraft() {
			return nil, ErrNotEditable
		}
		seed = record
	}

	definition, err := wizard.DefinitionFor(kind)
	if err != nil {
		return nil, err
	}
	draft, err := wizard.NewDraft(kind, seed)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &session{
		draft:      draft,
		definition: definition,
		startedAt:  time.Now(),
	}

	s.logger.Info("Wizard session started", "session_id", id, "kind", kind, "editing", recordID != "")
	return snapshot(id, s.sessions[id]), nil
}

// Get returns the current state of a session.
func (s *sessionServiceImpl) Get(sessionID string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(sessionID, sess), nil
}

// Patch shallow-merges a partial update into the session's draft.
func (s *sessionServiceImpl) Patch(sessionID string, patch entity.Patch) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := wizard.ApplyPatch(sess.draft, patch); err != nil {
		return nil, err
	}
	return snapshot(sessionID, sess), nil
}

// Advance moves the session forward one step. Advancing from the last step
// commits the draft through the record service and closes the session,
// returning the committed record.
func (s *sessionServiceImpl) Advance(ctx context.Context, sessionID, actor string) (*SessionState, *entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}

	done, err := wizard.Advance(sess.draft, sess.definition)
	if err != nil {
		return nil, nil, err
	}
	if !done {
		return snapshot(sessionID, sess), nil, nil
	}

	record, err := s.records.CommitDraft(ctx, sess.draft, actor)
	if err != nil {
		// The session stays open so the caller can fix the draft and retry.
		return snapshot(sessionID, sess), nil, err
	}

	delete(s.sessions, sessionID)
	s.logger.Info("Wizard session committed", "session_id", sessionID, "record_id", record.ID)
	return nil, record, nil
}

// Retreat moves the session one step back.
func (s *sessionServiceImpl) Retreat(sessionID string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	wizard.Retreat(sess.draft)
	return snapshot(sessionID, sess), nil
}

// JumpTo moves the session back to an earlier step for review.
func (s *sessionServiceImpl) JumpTo(sessionID string, step int) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := wizard.JumpTo(sess.draft, step); err != nil {
		return nil, err
	}
	return snapshot(sessionID, sess), nil
}

// Cancel discards the session and its draft unconditionally. Nothing has
// been written to the record collection, so there is no rollback.
func (s *sessionServiceImpl) Cancel(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.logger.Info("Wizard session cancelled", "session_id", sessionID)
	return nil
}

// AddApprover appends a pending approver to the draft's chain.
func (s *sessionServiceImpl) AddApprover(sessionID, name, position string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	updated, err := chain.Add(sess.draft.ApprovalChain, name, position)
	if err != nil {
		return nil, err
	}
	sess.draft.ApprovalChain = updated
	sess.draft.Dirty = true
	return snapshot(sessionID, sess), nil
}

// RemoveApprover drops an approver from the draft's chain.
func (s *sessionServiceImpl) RemoveApprover(sessionID, approverID string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	sess.draft.ApprovalChain = chain.Remove(sess.draft.ApprovalChain, approverID)
	sess.draft.Dirty = true
	return snapshot(sessionID, sess), nil
}

// MoveApprover nudges a draft approver one position up or down.
func (s *sessionServiceImpl) MoveApprover(sessionID, approverID, direction string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	index := chain.IndexOf(sess.draft.ApprovalChain, approverID)
	if index < 0 {
		return nil, chain.ErrApproverNotFound
	}
	switch direction {
	case "up":
		sess.draft.ApprovalChain = chain.MoveUp(sess.draft.ApprovalChain, index)
	case "down":
		sess.draft.ApprovalChain = chain.MoveDown(sess.draft.ApprovalChain, index)
	default:
		return nil, errors.New("invalid move direction: " + direction)
	}
	sess.draft.Dirty = true
	return snapshot(sessionID, sess), nil
}

func (s *sessionServiceImpl) lookup(sessionID string) (*session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func snapshot(id string, sess *session) *SessionState {
	return &SessionState{
		SessionID: id,
		Draft:     sess.draft,
		StepLabel: sess.definition.Steps[sess.draft.CurrentStep-1].Label,
		Steps:     sess.definition.Len(),
		Progress:  wizard.Progress(sess.draft, sess.definition),
	}
}
