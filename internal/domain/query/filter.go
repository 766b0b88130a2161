// Package query is the pure projection layer over the record collection:
// order-preserving filtering and pagination with no mutation.
package query

import (
	"strings"
	"time"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter describes one listing query. Zero values mean "no constraint".
type Filter struct {
	Status        string
	RequisitionID string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// Apply returns the records matching the filter, preserving input order.
// The input slice is never mutated.
func Apply(records []*entity.Record, f Filter) []*entity.Record {
	result := make([]*entity.Record, 0, len(records))
	for _, r := range records {
		if matches(r, f) {
			result = append(result, r)
		}
	}
	return result
}

func matches(r *entity.Record, f Filter) bool {
	if f.Status != "" && f.Status != StatusAll && r.Status != f.Status {
		return false
	}
	if f.RequisitionID != "" && r.Payload.RequisitionID() != f.RequisitionID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		name, title := r.Payload.CandidateRef()
		if !strings.Contains(strings.ToLower(name), needle) &&
			!strings.Contains(strings.ToLower(title), needle) {
			return false
		}
	}
	if f.CreatedFrom != nil && r.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && r.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// Paginate slices out one 1-indexed page. Out-of-range pages return an
// empty slice rather than erroring.
func Paginate(records []*entity.Record, page, pageSize int) []*entity.Record {
	if page < 1 || pageSize < 1 {
		return []*entity.Record{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []*entity.Record{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
