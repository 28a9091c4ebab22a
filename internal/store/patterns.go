package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StorePattern persists a detected pattern and returns its row id.
func (s *SQLiteStore) StorePattern(ctx context.Context, rec PatternRecord) (int64, error) {
	if rec.PatternType == "" {
		return 0, errors.New("pattern_type is required")
	}
	if len(rec.Commands) == 0 {
		return 0, errors.New("pattern commands must be non-empty")
	}

	commandsJSON, err := json.Marshal(rec.Commands)
	if err != nil {
		return 0, fmt.Errorf("failed to encode pattern commands: %w", err)
	}

	lastSeen := rec.LastSeenMs
	if lastSeen == 0 {
		lastSeen = time.Now().UnixMilli()
	}

	var projectPath sql.NullString
	if rec.ProjectPath != "" {
		projectPath = sql.NullString{String: rec.ProjectPath, Valid: true}
	}
	var metadata sql.NullString
	if rec.MetadataJSON != "" {
		metadata = sql.NullString{String: rec.MetadataJSON, Valid: true}
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO command_patterns (pattern_type, commands, project_path,
			confidence_score, occurrences, last_seen_unix_ms, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		rec.PatternType,
		string(commandsJSON),
		projectPath,
		rec.Confidence,
		rec.Occurrences,
		lastSeen,
		metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to store pattern: %w", err)
	}

	return id, nil
}

// Patterns returns stored patterns for a scope, highest confidence first.
// Global patterns (no project path) are always included.
func (s *SQLiteStore) Patterns(ctx context.Context, scope string) ([]PatternRecord, error) {
	query := `
		SELECT id, pattern_type, commands, project_path, confidence_score,
			occurrences, last_seen_unix_ms, metadata
		FROM command_patterns
	`
	args := make([]interface{}, 0, 1)
	if scope != "" {
		query += " WHERE project_path = ? OR project_path IS NULL"
		args = append(args, scope)
	}
	query += " ORDER BY confidence_score DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []PatternRecord
	for rows.Next() {
		var rec PatternRecord
		var commandsJSON string
		var projectPath, metadata sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.PatternType,
			&commandsJSON,
			&projectPath,
			&rec.Confidence,
			&rec.Occurrences,
			&rec.LastSeenMs,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}

		if err := json.Unmarshal([]byte(commandsJSON), &rec.Commands); err != nil {
			return nil, fmt.Errorf("failed to decode pattern commands: %w", err)
		}
		if projectPath.Valid {
			rec.ProjectPath = projectPath.String
		}
		if metadata.Valid {
			rec.MetadataJSON = metadata.String
		}

		patterns = append(patterns, rec)
	}

	return patterns, rows.Err()
}
