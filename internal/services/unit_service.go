package services

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
)

// UnitService wraps unit repository writes with audit recording and the
// referential guard that keeps units with entries from being deleted.
type UnitService struct {
	unitRepo *repository.UnitRepository
	recorder *audit.Recorder
}

// NewUnitService creates a unit service.
func NewUnitService(recorder *audit.Recorder) *UnitService {
	return &UnitService{
		unitRepo: repository.NewUnitRepository(),
		recorder: recorder,
	}
}

// Create persists a new unit and records a "created" audit entry.
func (s *UnitService) Create(ctx context.Context, actorID *int, unit *models.Unit) error {
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return err
	}

	s.recorder.Created(ctx, actorID, audit.UnitSubject(unit), audit.UnitSnapshot(unit))
	return nil
}

// Update overwrites a unit in place and records the field-level diff.
func (s *UnitService) Update(ctx context.Context, actorID *int, before, updated *models.Unit) error {
	oldValues := audit.UnitSnapshot(before)

	if err := s.unitRepo.Update(ctx, updated); err != nil {
		return err
	}

	s.recorder.Updated(ctx, actorID, audit.UnitSubject(updated), oldValues, audit.UnitSnapshot(updated))
	return nil
}

// Delete removes a unit. Units that still have entries cannot be
// deleted; callers should deactivate them instead.
func (s *UnitService) Delete(ctx context.Context, actorID *int, unit *models.Unit) error {
	count, err := s.unitRepo.EntryCount(ctx, unit.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUnitHasEntries
	}

	oldValues := audit.UnitSnapshot(unit)

	if err := s.unitRepo.Delete(ctx, unit.ID); err != nil {
		return err
	}

	s.recorder.Deleted(ctx, actorID, audit.UnitSubject(unit), oldValues)
	return nil
}
