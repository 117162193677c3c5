package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/google/uuid"
)

// allowedAttachmentTypes maps accepted content types to the extension
// stored on disk. Anything else is rejected before a byte is written.
var allowedAttachmentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// AttachmentService stores uploaded entry attachments on disk and
// records them in the database. File names are random UUIDs so user
// input never reaches the filesystem.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	dir            string
	maxBytes       int64
}

// NewAttachmentService creates an attachment service rooted at dir.
// maxBytes caps the accepted upload size.
func NewAttachmentService(dir string, maxBytes int64) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: repository.NewAttachmentRepository(),
		dir:            dir,
		maxBytes:       maxBytes,
	}
}

// Store validates, writes, and records one attachment for an entry.
// The caller supplies the declared content type and size from the
// upload; the content is streamed from r.
func (s *AttachmentService) Store(ctx context.Context, entryID int, mimeType string, size int64, r io.Reader) (*models.RengiatAttachment, error) {
	ext, ok := allowedAttachmentTypes[normalizeMime(mimeType)]
	if !ok {
		return nil, ErrAttachmentType
	}
	if size <= 0 || size > s.maxBytes {
		return nil, ErrAttachmentTooLarge
	}

	relPath := filepath.Join(fmt.Sprintf("entry-%d", entryID), uuid.NewString()+ext)
	fullPath := filepath.Join(s.dir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}

	written, err := s.writeFile(fullPath, r)
	if err != nil {
		return nil, err
	}

	attachment := &models.RengiatAttachment{
		EntryID:   entryID,
		Path:      relPath,
		MimeType:  normalizeMime(mimeType),
		SizeBytes: written,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// Roll back the orphaned file; the DB row is the source of truth.
		os.Remove(fullPath)
		return nil, err
	}
	return attachment, nil
}

// ListByEntry returns the stored attachments of an entry.
func (s *AttachmentService) ListByEntry(ctx context.Context, entryID int) ([]models.RengiatAttachment, error) {
	return s.attachmentRepo.ListByEntry(ctx, entryID)
}

// Get returns one attachment row, scoped to the entry it belongs to.
// An attachment ID hanging off a different entry reads as missing, so
// callers cannot reach files across entries by guessing IDs.
func (s *AttachmentService) Get(ctx context.Context, entryID, attachmentID int) (*models.RengiatAttachment, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if attachment.EntryID != entryID {
		return nil, repository.ErrNotFound
	}
	return attachment, nil
}

// Open returns a reader over a stored attachment file. The caller
// closes it. A row whose file has gone missing from disk reads as a
// not-found, not an internal error.
func (s *AttachmentService) Open(relPath string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.dir, relPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repository.ErrNotFound
	}
	return f, err
}

// writeFile streams r into path, enforcing the size cap as it copies.
// A partial file left by a failed or oversized upload is removed.
func (s *AttachmentService) writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create attachment file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = ErrAttachmentTooLarge
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return written, nil
}

func normalizeMime(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
