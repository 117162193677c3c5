// Package repository provides the data access layer for the Rengiat backend.
// This file implements the audit log repository.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// AuditLogRepository handles audit trail persistence.
//
// Immutability Note:
//
//	Audit logs are append-only. This repository deliberately exposes no
//	update or delete operations; the table is the permanent record of
//	entity mutations.
type AuditLogRepository struct{}

// NewAuditLogRepository creates a new AuditLogRepository instance.
func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

// AuditLogFilters narrows the admin audit listing. Zero values mean
// "no restriction" for every field.
type AuditLogFilters struct {
	Action        string // "created", "updated" or "deleted"
	AuditableType string // subject tag, e.g. "rengiat_entry"
	Search        string // substring match on actor name or username
	DateFrom      string // "YYYY-MM-DD", inclusive lower bound
	DateTo        string // "YYYY-MM-DD", inclusive upper bound
	Limit         uint64 // page size (0 = repository default)
	Offset        uint64
}

const defaultAuditPageSize = 20

// Insert appends one audit record. Value maps are stored as JSONB; nil
// maps become SQL NULL (create has no old values, delete has no new ones).
//
// Side Effects: populates log.ID and log.CreatedAt.
func (r *AuditLogRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	oldJSON, err := marshalValues(log.OldValues)
	if err != nil {
		return fmt.Errorf("failed to encode old values: %w", err)
	}

	newJSON, err := marshalValues(log.NewValues)
	if err != nil {
		return fmt.Errorf("failed to encode new values: %w", err)
	}

	query := `
		INSERT INTO audit_logs (actor_user_id, action, auditable_type, auditable_id, old_values, new_values)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		log.ActorUserID, log.Action, log.AuditableType, log.AuditableID, oldJSON, newJSON,
	).Scan(&log.ID, &log.CreatedAt)
}

// List retrieves audit records newest first, applying the given filters.
// The actor's display name is joined in for the admin listing; records
// whose actor was since deleted keep an empty name.
func (r *AuditLogRepository) List(ctx context.Context, filters AuditLogFilters) ([]models.AuditLog, error) {
	query, args, err := r.buildListQuery(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var (
			log     models.AuditLog
			oldJSON []byte
			newJSON []byte
		)

		if err := rows.Scan(
			&log.ID,
			&log.ActorUserID, // nullable - NULL for system writes
			&log.Action,
			&log.AuditableType,
			&log.AuditableID,
			&oldJSON,
			&newJSON,
			&log.CreatedAt,
			&log.ActorName,
		); err != nil {
			return nil, err
		}

		if log.OldValues, err = unmarshalValues(oldJSON); err != nil {
			return nil, err
		}
		if log.NewValues, err = unmarshalValues(newJSON); err != nil {
			return nil, err
		}

		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// Count returns the total number of records matching the filters,
// for pagination.
func (r *AuditLogRepository) Count(ctx context.Context, filters AuditLogFilters) (int, error) {
	builder := r.applyFilters(
		sq.Select("COUNT(*)").
			From("audit_logs a").
			LeftJoin("users u ON u.id = a.actor_user_id").
			PlaceholderFormat(sq.Dollar),
		filters,
	)

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build audit count query: %w", err)
	}

	var count int
	if err := database.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// buildListQuery assembles the filtered listing. The filters are
// combinable in any subset, which is why this query is built dynamically
// rather than written as static SQL like the rest of the package.
func (r *AuditLogRepository) buildListQuery(filters AuditLogFilters) sq.SelectBuilder {
	limit := filters.Limit
	if limit == 0 {
		limit = defaultAuditPageSize
	}

	builder := sq.Select(
		"a.id", "a.actor_user_id", "a.action", "a.auditable_type", "a.auditable_id",
		"a.old_values", "a.new_values", "a.created_at",
		"COALESCE(u.name, '') AS actor_name",
	).
		From("audit_logs a").
		LeftJoin("users u ON u.id = a.actor_user_id").
		PlaceholderFormat(sq.Dollar).
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(limit).
		Offset(filters.Offset)

	return r.applyFilters(builder, filters)
}

func (r *AuditLogRepository) applyFilters(builder sq.SelectBuilder, filters AuditLogFilters) sq.SelectBuilder {
	if filters.Action != "" {
		builder = builder.Where(sq.Eq{"a.action": filters.Action})
	}

	if filters.AuditableType != "" {
		builder = builder.Where(sq.Eq{"a.auditable_type": filters.AuditableType})
	}

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"u.name": pattern},
			sq.ILike{"u.username": pattern},
		})
	}

	if filters.DateFrom != "" {
		builder = builder.Where(sq.GtOrEq{"a.created_at": filters.DateFrom + " 00:00:00"})
	}

	if filters.DateTo != "" {
		builder = builder.Where(sq.LtOrEq{"a.created_at": filters.DateTo + " 23:59:59"})
	}

	return builder
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}

func unmarshalValues(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode audit values: %w", err)
	}
	return values, nil
}
