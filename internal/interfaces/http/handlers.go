package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/application/service"
	"github.com/talentops/hireflow/internal/domain/chain"
	"github.com/talentops/hireflow/internal/domain/entity"
	"github.com/talentops/hireflow/internal/domain/query"
	"github.com/talentops/hireflow/internal/domain/wizard"
	"github.com/talentops/hireflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	records  service.RecordService
	sessions service.SessionService
	letters  port.LetterDispatcher
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	records service.RecordService,
	sessions service.SessionService,
	letters port.LetterDispatcher,
	logger Logger,
) *Handlers {
	return &Handlers{
		records:  records,
		sessions: sessions,
		letters:  letters,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ListResponse represents a page of records
type ListResponse struct {
	Records  []*entity.Record `json:"records"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CommitRequest carries a full draft for direct create or edit commits
// outside a wizard session.
type CommitRequest struct {
	Kind      string          `json:"kind" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
	Approvers []ApproverInput `json:"approvers"`
}

// ApproverInput names one approval chain entry
type ApproverInput struct {
	Name     string `json:"name" binding:"required"`
	Position string `json:"position" binding:"required"`
}

// StatusRequest asks for a transition to a target status
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// DecisionRequest carries one approver's decision
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// MoveRequest reorders an approver by one position
type MoveRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// StartSessionRequest opens a wizard session, blank or seeded from an
// existing draft record.
type StartSessionRequest struct {
	Kind     string `json:"kind" binding:"required"`
	RecordID string `json:"record_id"`
}

// JumpRequest targets a previously visited wizard step
type JumpRequest struct {
	Step int `json:"step"`
}

// AdvanceResponse is the result of one wizard advance: the updated
// session state, or the committed record when the last step completed.
type AdvanceResponse struct {
	Session   *service.SessionState `json:"session,omitempty"`
	Record    *entity.Record        `json:"record,omitempty"`
	Committed bool                  `json:"committed"`
}

// actor returns the acting user for history attribution
func actor(c *gin.Context) string {
	if a := c.GetHeader("X-Actor"); a != "" {
		return a
	}
	return "user"
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps service and domain errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, chain.ErrApproverNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, service.ErrNotDeletable),
		errors.Is(err, service.ErrNotEditable),
		errors.Is(err, service.ErrKindMismatch),
		errors.Is(err, wizard.ErrStepInvalid),
		errors.Is(err, wizard.ErrStepForbidden):
		status = http.StatusConflict
	case errors.Is(err, chain.ErrInvalidApprover),
		errors.Is(err, chain.ErrInvalidDecision),
		errors.Is(err, service.ErrEmptyPayload),
		errors.Is(err, wizard.ErrStepOutOfRange):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	h.ok(c, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// buildDraft converts a commit request into a draft ready for the record
// service. Approvers get fresh IDs and pending status.
func buildDraft(req CommitRequest, recordID string) (*entity.Draft, error) {
	payload, err := entity.UnmarshalPayload(req.Kind, string(req.Payload))
	if err != nil {
		return nil, err
	}

	var approvers []entity.Approver
	for _, input := range req.Approvers {
		approvers, err = chain.Add(approvers, input.Name, input.Position)
		if err != nil {
			return nil, err
		}
	}

	return &entity.Draft{
		RecordID:      recordID,
		Kind:          req.Kind,
		Payload:       payload,
		ApprovalChain: approvers,
	}, nil
}

// CreateRecord handles POST /api/records
func (h *Handlers) CreateRecord(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	draft, err := buildDraft(req, "")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	record, err := h.records.CommitDraft(c.Request.Context(), draft, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

// UpdateRecord handles PUT /api/records/:id
func (h *Handlers) UpdateRecord(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	draft, err := buildDraft(req, c.Param("id"))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	record, err := h.records.CommitDraft(c.Request.Context(), draft, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// GetRecord handles GET /api/records/:id
func (h *Handlers) GetRecord(c *gin.Context) {
	record, err := h.records.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// parseDate accepts RFC3339 or a bare date
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListRecords handles GET /api/records
func (h *Handlers) ListRecords(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		h.badRequest(c, "invalid from date")
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		h.badRequest(c, "invalid to date")
		return
	}

	filter := query.Filter{
		Status:        c.DefaultQuery("status", query.StatusAll),
		RequisitionID: c.Query("requisitionId"),
		Search:        c.Query("q"),
		CreatedFrom:   from,
		CreatedTo:     to,
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := h.records.ListRecords(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.ok(c, ListResponse{
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// DeleteRecord handles DELETE /api/records/:id
func (h *Handlers) DeleteRecord(c *gin.Context) {
	if err := h.records.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateRecord handles POST /api/records/:id/duplicate
func (h *Handlers) DuplicateRecord(c *gin.Context) {
	record, err := h.records.DuplicateRecord(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

// TransitionStatus handles PATCH /api/records/:id/status
func (h *Handlers) TransitionStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.records.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// EnqueueLetter handles POST /api/records/:id/letter
func (h *Handlers) EnqueueLetter(c *gin.Context) {
	id := c.Param("id")

	record, err := h.records.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if record.Kind != entity.KindOffer {
		h.badRequest(c, "letters are only generated for offer records")
		return
	}

	if err := h.letters.Enqueue(id); err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data:    gin.H{"record_id": id, "queued": true},
	})
}

// AddApprover handles POST /api/records/:id/approvers
func (h *Handlers) AddApprover(c *gin.Context) {
	var req ApproverInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.records.AddApprover(c.Request.Context(), c.Param("id"), req.Name, req.Position)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// RemoveApprover handles DELETE /api/records/:id/approvers/:approverId
func (h *Handlers) RemoveApprover(c *gin.Context) {
	record, err := h.records.RemoveApprover(c.Request.Context(), c.Param("id"), c.Param("approverId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// DecideApprover handles PATCH /api/records/:id/approvers/:approverId
func (h *Handlers) DecideApprover(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.records.DecideApprover(
		c.Request.Context(), c.Param("id"), c.Param("approverId"),
		req.Decision, req.Comment, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// MoveApprover handles POST /api/records/:id/approvers/:approverId/move
func (h *Handlers) MoveApprover(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, err := h.records.MoveApprover(
		c.Request.Context(), c.Param("id"), c.Param("approverId"), req.Direction)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, record)
}

// StartSession handles POST /api/sessions
func (h *Handlers) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	state, err := h.sessions.Start(c.Request.Context(), req.Kind, req.RecordID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: state})
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	state, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// PatchSession handles PATCH /api/sessions/:id. The body is a partial
// payload; the session's kind selects the patch shape.
func (h *Handlers) PatchSession(c *gin.Context) {
	id := c.Param("id")

	state, err := h.sessions.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var patch entity.Patch
	switch state.Draft.Kind {
	case entity.KindOffer:
		patch = &entity.OfferPatch{}
	case entity.KindOnboarding:
		patch = &entity.OnboardingPatch{}
	default:
		h.badRequest(c, "unknown record kind: "+state.Draft.Kind)
		return
	}
	if err := c.ShouldBindJSON(patch); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	state, err = h.sessions.Patch(id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// AdvanceSession handles POST /api/sessions/:id/advance. Advancing past
// the final step commits the draft and closes the session.
func (h *Handlers) AdvanceSession(c *gin.Context) {
	state, record, err := h.sessions.Advance(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.ok(c, AdvanceResponse{
		Session:   state,
		Record:    record,
		Committed: record != nil,
	})
}

// RetreatSession handles POST /api/sessions/:id/retreat
func (h *Handlers) RetreatSession(c *gin.Context) {
	state, err := h.sessions.Retreat(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// JumpSession handles POST /api/sessions/:id/jump
func (h *Handlers) JumpSession(c *gin.Context) {
	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	state, err := h.sessions.JumpTo(c.Param("id"), req.Step)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// CancelSession handles DELETE /api/sessions/:id
func (h *Handlers) CancelSession(c *gin.Context) {
	if err := h.sessions.Cancel(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SessionAddApprover handles POST /api/sessions/:id/approvers
func (h *Handlers) SessionAddApprover(c *gin.Context) {
	var req ApproverInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	state, err := h.sessions.AddApprover(c.Param("id"), req.Name, req.Position)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// SessionRemoveApprover handles DELETE /api/sessions/:id/approvers/:approverId
func (h *Handlers) SessionRemoveApprover(c *gin.Context) {
	state, err := h.sessions.RemoveApprover(c.Param("id"), c.Param("approverId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}

// SessionMoveApprover handles POST /api/sessions/:id/approvers/:approverId/move
func (h *Handlers) SessionMoveApprover(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	state, err := h.sessions.MoveApprover(c.Param("id"), c.Param("approverId"), req.Direction)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, state)
}
