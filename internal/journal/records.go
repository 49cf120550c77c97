package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hopper/internal/ingest"
)

const recordColumns = "id, cycle_id, source_path, checksum, outcome, detail, row_count, key_count, dropped_columns, archive_path, duration_ms, created_at"

// Append stores one processed-file record and fills in its ID and creation
// time.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if s == nil {
		return nil
	}
	if rec == nil {
		return errors.New("record is nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var dropped any
	if len(rec.DroppedColumns) > 0 {
		raw, err := json.Marshal(rec.DroppedColumns)
		if err != nil {
			return fmt.Errorf("encode dropped columns: %w", err)
		}
		dropped = string(raw)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO ingest_records
         (cycle_id, source_path, checksum, outcome, detail, row_count, key_count, dropped_columns, archive_path, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CycleID,
		rec.SourcePath,
		nullableString(rec.Checksum),
		string(rec.Outcome),
		nullableString(rec.Detail),
		rec.RowCount,
		rec.KeyCount,
		dropped,
		nullableString(rec.ArchivePath),
		rec.Duration.Milliseconds(),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append record id: %w", err)
	}
	rec.ID = id
	return nil
}

// List returns records newest first, narrowed by the options.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	if s == nil {
		return nil, nil
	}
	ctx = ensureContext(ctx)

	query := `SELECT ` + recordColumns + ` FROM ingest_records`
	var (
		clauses []string
		args    []any
	)
	if opts.CycleID != "" {
		clauses = append(clauses, "cycle_id = ?")
		args = append(args, opts.CycleID)
	}
	if opts.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(opts.Outcome))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestCycle returns the most recent cycle's records in processing order.
func (s *Store) LatestCycle(ctx context.Context) (string, []*Record, error) {
	if s == nil {
		return "", nil, nil
	}
	ctx = ensureContext(ctx)

	var cycleID string
	err := s.db.QueryRowContext(ctx,
		`SELECT cycle_id FROM ingest_records ORDER BY id DESC LIMIT 1`,
	).Scan(&cycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("latest cycle: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM ingest_records WHERE cycle_id = ? ORDER BY id`,
		cycleID,
	)
	if err != nil {
		return "", nil, fmt.Errorf("latest cycle records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return "", nil, err
		}
		records = append(records, rec)
	}
	return cycleID, records, rows.Err()
}

// Stats returns record counts grouped by outcome.
func (s *Store) Stats(ctx context.Context) (map[ingest.Outcome]int, error) {
	counts := make(map[ingest.Outcome]int)
	if s == nil {
		return counts, nil
	}
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM ingest_records GROUP BY outcome`,
	)
	if err != nil {
		return nil, fmt.Errorf("record stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		counts[ingest.Outcome(outcome)] = count
	}
	return counts, rows.Err()
}

// Prune removes records created before cutoff and reports how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil {
		return 0, nil
	}
	res, err := s.execWithRetry(ctx,
		`DELETE FROM ingest_records WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		cycleID    string
		sourcePath string
		checksum   sql.NullString
		outcome    string
		detail     sql.NullString
		rowCount   int64
		keyCount   int64
		dropped    sql.NullString
		archive    sql.NullString
		durationMS int64
		createdRaw string
	)
	if err := scanner.Scan(
		&id,
		&cycleID,
		&sourcePath,
		&checksum,
		&outcome,
		&detail,
		&rowCount,
		&keyCount,
		&dropped,
		&archive,
		&durationMS,
		&createdRaw,
	); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec := &Record{
		ID:          id,
		CycleID:     cycleID,
		SourcePath:  sourcePath,
		Checksum:    checksum.String,
		Outcome:     ingest.Outcome(outcome),
		Detail:      detail.String,
		RowCount:    rowCount,
		KeyCount:    keyCount,
		ArchivePath: archive.String,
		Duration:    time.Duration(durationMS) * time.Millisecond,
	}
	if dropped.Valid && dropped.String != "" {
		if err := json.Unmarshal([]byte(dropped.String), &rec.DroppedColumns); err != nil {
			return nil, fmt.Errorf("decode dropped columns: %w", err)
		}
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
