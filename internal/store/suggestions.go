package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSuggestionNotFound is returned when a suggestion lookup matches no row.
var ErrSuggestionNotFound = errors.New("suggestion not found")

const suggestionColumns = `id, project_path, context, suggested_command, reason,
	confidence, times_accepted, times_rejected, created_at_unix_ms, last_suggested_unix_ms`

// StoreSuggestion persists a generated suggestion and returns its row id.
func (s *SQLiteStore) StoreSuggestion(ctx context.Context, rec SuggestionRecord) (int64, error) {
	if rec.ProjectPath == "" {
		return 0, errors.New("project_path is required")
	}
	if rec.SuggestedCommand == "" {
		return 0, errors.New("suggested_command is required")
	}

	createdAt := rec.CreatedAtMs
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suggestions (project_path, context, suggested_command,
			reason, confidence, created_at_unix_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		rec.ProjectPath,
		nullStr(rec.Context),
		rec.SuggestedCommand,
		nullStr(rec.Reason),
		rec.Confidence,
		createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to store suggestion: %w", err)
	}

	return id, nil
}

// Suggestions returns stored suggestions for a scope, highest confidence
// first, optionally filtered by context label. An empty scope matches all
// projects, like the command queries.
func (s *SQLiteStore) Suggestions(ctx context.Context, scope, contextLabel string) ([]SuggestionRecord, error) {
	query := "SELECT " + suggestionColumns + " FROM suggestions WHERE 1=1"
	args := make([]interface{}, 0, 2)
	if scope != "" {
		query += " AND project_path = ?"
		args = append(args, scope)
	}
	if contextLabel != "" {
		query += " AND context = ?"
		args = append(args, contextLabel)
	}
	query += " ORDER BY confidence DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var recs []SuggestionRecord
	for rows.Next() {
		rec, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		recs = append(recs, *rec)
	}

	return recs, rows.Err()
}

// SuggestionByID returns a single suggestion, or ErrSuggestionNotFound.
func (s *SQLiteStore) SuggestionByID(ctx context.Context, id int64) (*SuggestionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+suggestionColumns+" FROM suggestions WHERE id = ?", id)
	rec, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion %d: %w", id, err)
	}
	return rec, nil
}

// RecordFeedback increments exactly one feedback counter on a stored
// suggestion and stamps last_suggested. Stored confidence is never adjusted
// here; acceptance rate is derived by readers.
func (s *SQLiteStore) RecordFeedback(ctx context.Context, id int64, accepted bool) error {
	column := "times_rejected"
	if accepted {
		column = "times_accepted"
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE suggestions
		SET `+column+` = `+column+` + 1, last_suggested_unix_ms = ?
		WHERE id = ?
	`, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSuggestionNotFound
	}
	return nil
}

func scanSuggestion(row rowScanner) (*SuggestionRecord, error) {
	var rec SuggestionRecord
	var sugContext, reason sql.NullString
	var lastSuggested sql.NullInt64

	err := row.Scan(
		&rec.ID,
		&rec.ProjectPath,
		&sugContext,
		&rec.SuggestedCommand,
		&reason,
		&rec.Confidence,
		&rec.TimesAccepted,
		&rec.TimesRejected,
		&rec.CreatedAtMs,
		&lastSuggested,
	)
	if err != nil {
		return nil, err
	}

	if sugContext.Valid {
		rec.Context = &sugContext.String
	}
	if reason.Valid {
		rec.Reason = &reason.String
	}
	if lastSuggested.Valid {
		rec.LastSuggestedMs = &lastSuggested.Int64
	}

	return &rec, nil
}
