// Package audit records immutable field-level diffs for entity mutations.
//
// Each auditable entity type declares an allow-list of field names; only
// those fields ever appear in a record. Updates that touch no allow-listed
// field produce no record at all, keeping the trail free of noise from
// incidental writes.
//
// Audit writes are fire-and-forget: a failed write is logged to the
// operational logger but never surfaced to the caller and never rolls
// back the entity mutation that triggered it.
package audit

import (
	"context"
	"reflect"

	"github.com/RikiSanjayaa/rengiat/internal/models"
	"go.uber.org/zap"
)

// Actions recorded in the audit trail.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// SubjectType tags the entity type of an audit record.
type SubjectType string

// Auditable entity types.
const (
	SubjectEntry SubjectType = "rengiat_entry"
	SubjectUnit  SubjectType = "unit"
	SubjectUser  SubjectType = "user"
)

// auditableFields is the per-entity-type allow-list. Fields outside this
// table never appear in old_values/new_values.
var auditableFields = map[SubjectType][]string{
	SubjectEntry: {
		"subdit_id", "unit_id", "entry_date", "time_start",
		"description", "case_number", "created_by", "updated_by",
	},
	SubjectUnit: {"name", "order_index", "active"},
	SubjectUser: {"name", "username", "role", "subdit_id", "unit_id"},
}

// Subject identifies the entity a record is about, plus the fallback
// actor data used for entry subjects when no authenticated actor exists
// (system-originated writes). Non-entry subjects have no fallback: with
// a nil actor their mutations are not recorded at all.
type Subject struct {
	Type      SubjectType
	ID        int
	CreatedBy int
	UpdatedBy *int
}

// Sink persists audit records. Implemented by repository.AuditLogRepository.
type Sink interface {
	Insert(ctx context.Context, log *models.AuditLog) error
}

// Recorder computes allow-listed diffs and writes them to a sink.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

// NewRecorder creates an audit recorder writing to the given sink.
func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger}
}

// Created records an entity creation. values is the full post-create
// snapshot; only allow-listed fields are persisted, old_values is null.
func (r *Recorder) Created(ctx context.Context, actorID *int, subject Subject, values map[string]any) {
	actor, ok := resolveActor(actorID, subject, ActionCreated)
	if !ok {
		return
	}

	r.write(ctx, &models.AuditLog{
		ActorUserID:   actor,
		Action:        ActionCreated,
		AuditableType: string(subject.Type),
		AuditableID:   subject.ID,
		NewValues:     pick(subject.Type, values),
	})
}

// Updated records an entity update. oldValues and newValues are full
// before/after snapshots; the record is restricted to allow-listed fields
// whose value actually changed. When nothing allow-listed changed, no
// record is written.
func (r *Recorder) Updated(ctx context.Context, actorID *int, subject Subject, oldValues, newValues map[string]any) {
	actor, ok := resolveActor(actorID, subject, ActionUpdated)
	if !ok {
		return
	}

	changedOld := make(map[string]any)
	changedNew := make(map[string]any)
	for _, field := range auditableFields[subject.Type] {
		before, after := oldValues[field], newValues[field]
		if !reflect.DeepEqual(before, after) {
			changedOld[field] = before
			changedNew[field] = after
		}
	}

	if len(changedNew) == 0 {
		return
	}

	r.write(ctx, &models.AuditLog{
		ActorUserID:   actor,
		Action:        ActionUpdated,
		AuditableType: string(subject.Type),
		AuditableID:   subject.ID,
		OldValues:     changedOld,
		NewValues:     changedNew,
	})
}

// Deleted records an entity deletion. values is the snapshot taken just
// before the delete; new_values is null.
func (r *Recorder) Deleted(ctx context.Context, actorID *int, subject Subject, values map[string]any) {
	actor, ok := resolveActor(actorID, subject, ActionDeleted)
	if !ok {
		return
	}

	r.write(ctx, &models.AuditLog{
		ActorUserID:   actor,
		Action:        ActionDeleted,
		AuditableType: string(subject.Type),
		AuditableID:   subject.ID,
		OldValues:     pick(subject.Type, values),
	})
}

func (r *Recorder) write(ctx context.Context, log *models.AuditLog) {
	if err := r.sink.Insert(ctx, log); err != nil {
		r.logger.Error("failed to write audit record",
			zap.String("auditable_type", log.AuditableType),
			zap.Int("auditable_id", log.AuditableID),
			zap.String("action", log.Action),
			zap.Error(err))
	}
}

// resolveActor applies the actor-fallback rule. Entry subjects always
// resolve: a system write falls back to the entry's creator (create) or
// last editor (update/delete). Unit and user subjects require an
// authenticated actor; without one the mutation is intentionally skipped.
func resolveActor(actorID *int, subject Subject, action string) (*int, bool) {
	if actorID != nil {
		return actorID, true
	}

	if subject.Type != SubjectEntry {
		return nil, false
	}

	if action != ActionCreated && subject.UpdatedBy != nil {
		return subject.UpdatedBy, true
	}

	createdBy := subject.CreatedBy
	return &createdBy, true
}

func pick(subjectType SubjectType, values map[string]any) map[string]any {
	picked := make(map[string]any)
	for _, field := range auditableFields[subjectType] {
		if v, ok := values[field]; ok {
			picked[field] = v
		}
	}
	return picked
}

// ============================================================================
// Subject and snapshot helpers
// ============================================================================

// EntrySubject builds the audit subject for an entry, carrying the
// creator/updater fallback data.
func EntrySubject(e *models.RengiatEntry) Subject {
	return Subject{
		Type:      SubjectEntry,
		ID:        e.ID,
		CreatedBy: e.CreatedBy,
		UpdatedBy: e.UpdatedBy,
	}
}

// UnitSubject builds the audit subject for a unit.
func UnitSubject(u *models.Unit) Subject {
	return Subject{Type: SubjectUnit, ID: u.ID}
}

// UserSubject builds the audit subject for a user.
func UserSubject(u *models.User) Subject {
	return Subject{Type: SubjectUser, ID: u.ID}
}

// EntrySnapshot captures an entry's auditable values. Dates are rendered
// as "YYYY-MM-DD" so the JSON payload stays a plain string.
func EntrySnapshot(e *models.RengiatEntry) map[string]any {
	return map[string]any{
		"subdit_id":   e.SubditID,
		"unit_id":     e.UnitID,
		"entry_date":  e.EntryDate.Format("2006-01-02"),
		"time_start":  derefString(e.TimeStart),
		"description": e.Description,
		"case_number": derefString(e.CaseNumber),
		"created_by":  e.CreatedBy,
		"updated_by":  derefInt(e.UpdatedBy),
	}
}

// UnitSnapshot captures a unit's auditable values.
func UnitSnapshot(u *models.Unit) map[string]any {
	return map[string]any{
		"name":        u.Name,
		"order_index": u.OrderIndex,
		"active":      u.Active,
	}
}

// UserSnapshot captures a user's auditable values. The password hash is
// deliberately not auditable.
func UserSnapshot(u *models.User) map[string]any {
	return map[string]any{
		"name":      u.Name,
		"username":  u.Username,
		"role":      u.Role,
		"subdit_id": derefInt(u.SubditID),
		"unit_id":   derefInt(u.UnitID),
	}
}

func derefString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
