// Package services provides the business logic layer for the Rengiat backend.
// This file implements the entry mutation service: the write decorator
// that snapshots state, delegates to the repository, and emits audit
// records.
package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"go.uber.org/zap"
)

// EntryService wraps entry repository writes with audit recording and
// attachment cleanup. Every mutation follows the same shape: snapshot
// prior state, perform the entity write, then record the audit diff.
// The entity write always happens before its audit write, and an audit
// failure never undoes the mutation.
type EntryService struct {
	entryRepo      *repository.EntryRepository
	attachmentRepo *repository.AttachmentRepository
	recorder       *audit.Recorder
	attachmentDir  string
	logger         *zap.Logger
}

// NewEntryService creates an entry service. attachmentDir is the root
// directory holding stored attachment files.
func NewEntryService(recorder *audit.Recorder, attachmentDir string, logger *zap.Logger) *EntryService {
	return &EntryService{
		entryRepo:      repository.NewEntryRepository(),
		attachmentRepo: repository.NewAttachmentRepository(),
		recorder:       recorder,
		attachmentDir:  attachmentDir,
		logger:         logger,
	}
}

// Create persists a new entry and records a "created" audit entry.
// actorID is the authenticated user, or nil for system-originated writes
// (the audit recorder then falls back to the entry's creator).
func (s *EntryService) Create(ctx context.Context, actorID *int, entry *models.RengiatEntry) error {
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return err
	}

	s.recorder.Created(ctx, actorID, audit.EntrySubject(entry), audit.EntrySnapshot(entry))
	return nil
}

// Update overwrites an entry in place and records the field-level diff.
// before must be the entry state loaded prior to applying the changes;
// the service snapshots it for the audit old_values before writing.
func (s *EntryService) Update(ctx context.Context, actorID *int, before, updated *models.RengiatEntry) error {
	oldValues := audit.EntrySnapshot(before)

	if err := s.entryRepo.Update(ctx, updated); err != nil {
		return err
	}

	s.recorder.Updated(ctx, actorID, audit.EntrySubject(updated), oldValues, audit.EntrySnapshot(updated))
	return nil
}

// Delete removes an entry. Stored attachment files are unlinked first
// (the delete owns this side effect), then the row is removed, then the
// "deleted" audit record is written from the pre-delete snapshot.
func (s *EntryService) Delete(ctx context.Context, actorID *int, entry *models.RengiatEntry) error {
	oldValues := audit.EntrySnapshot(entry)

	paths, err := s.attachmentRepo.DeleteByEntry(ctx, entry.ID)
	if err != nil {
		return err
	}
	s.removeFiles(paths)

	if err := s.entryRepo.Delete(ctx, entry.ID); err != nil {
		return err
	}

	s.recorder.Deleted(ctx, actorID, audit.EntrySubject(entry), oldValues)
	return nil
}

// removeFiles unlinks stored attachment files. A missing or undeletable
// file is logged and skipped; the entry deletion proceeds regardless.
func (s *EntryService) removeFiles(paths []string) {
	for _, path := range paths {
		full := filepath.Join(s.attachmentDir, path)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove attachment file",
				zap.String("path", full), zap.Error(err))
		}
	}
}
