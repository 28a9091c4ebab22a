package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCommandNotFound is returned when a command lookup matches no row.
var ErrCommandNotFound = errors.New("command not found")

const commandColumns = `id, command_id, project_path, command, ts_unix_ms,
	usage_count, execution_time_ms, exit_code, tags, context, word_count`

// RecordCommand inserts a command event, or increments usage_count when the
// same (project_path, command) pair already exists. The upsert is a single
// statement so concurrent shell sessions cannot lose usage increments.
func (s *SQLiteStore) RecordCommand(ctx context.Context, input CommandInput) (int64, error) {
	if input.ProjectPath == "" {
		return 0, errors.New("project_path is required")
	}
	if input.Command == "" {
		return 0, errors.New("command is required")
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO commands (command_id, project_path, command, ts_unix_ms,
			execution_time_ms, exit_code, tags, context, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_path, command) DO UPDATE SET
			usage_count = usage_count + 1,
			ts_unix_ms = excluded.ts_unix_ms,
			execution_time_ms = excluded.execution_time_ms,
			exit_code = excluded.exit_code
		RETURNING id
	`,
		uuid.NewString(),
		input.ProjectPath,
		input.Command,
		time.Now().UnixMilli(),
		nullInt64(input.ExecutionTimeMs),
		nullInt(input.ExitCode),
		string(tagsJSON),
		nullStr(input.Context),
		input.WordCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record command: %w", err)
	}

	return id, nil
}

// RecentCommands returns up to limit commands ordered most-recent-first.
// An empty scope matches all projects.
func (s *SQLiteStore) RecentCommands(ctx context.Context, scope string, limit int) ([]Command, error) {
	return s.queryCommands(ctx, scope, "", "ts_unix_ms DESC", limit)
}

// MostUsedCommands returns up to limit commands ordered by usage_count
// descending. An empty scope matches all projects.
func (s *SQLiteStore) MostUsedCommands(ctx context.Context, scope string, limit int) ([]Command, error) {
	return s.queryCommands(ctx, scope, "", "usage_count DESC", limit)
}

// SearchCommands returns commands whose text contains query, ordered by
// usage_count descending.
func (s *SQLiteStore) SearchCommands(ctx context.Context, query, scope string, limit int) ([]Command, error) {
	return s.queryCommands(ctx, scope, query, "usage_count DESC", limit)
}

// CommandByID returns a single command, or ErrCommandNotFound.
func (s *SQLiteStore) CommandByID(ctx context.Context, id int64) (*Command, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+commandColumns+" FROM commands WHERE id = ?", id)
	cmd, err := scanCommand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load command %d: %w", id, err)
	}
	return cmd, nil
}

// queryCommands builds and executes a filtered command query.
func (s *SQLiteStore) queryCommands(ctx context.Context, scope, substring, orderBy string, limit int) ([]Command, error) {
	query := "SELECT " + commandColumns + " FROM commands WHERE 1=1"
	args := make([]interface{}, 0, 3)

	if scope != "" {
		query += " AND project_path = ?"
		args = append(args, scope)
	}
	if substring != "" {
		query += " AND command LIKE ?"
		args = append(args, "%"+substring+"%")
	}

	query += " ORDER BY " + orderBy
	if limit <= 0 {
		// Guard against unbounded queries
		limit = 1000
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		commands = append(commands, *cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commands: %w", err)
	}

	return commands, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommand(row rowScanner) (*Command, error) {
	var cmd Command
	var execTime sql.NullInt64
	var exitCode sql.NullInt32
	var cmdContext sql.NullString

	err := row.Scan(
		&cmd.ID,
		&cmd.CommandID,
		&cmd.ProjectPath,
		&cmd.Command,
		&cmd.TsUnixMs,
		&cmd.UsageCount,
		&execTime,
		&exitCode,
		&cmd.Tags,
		&cmdContext,
		&cmd.WordCount,
	)
	if err != nil {
		return nil, err
	}

	if execTime.Valid {
		cmd.ExecutionTimeMs = &execTime.Int64
	}
	if exitCode.Valid {
		ec := int(exitCode.Int32)
		cmd.ExitCode = &ec
	}
	if cmdContext.Valid {
		cmd.Context = &cmdContext.String
	}

	return &cmd, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
