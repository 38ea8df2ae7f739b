package namestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"namearchive/internal/config"
)

// Store manages name trend persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the trend database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CanonicalName resolves a raw name to its stored display form, or "" when
// unknown. The lookup is case-insensitive.
func (s *Store) CanonicalName(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM names WHERE name = ? LIMIT 1`, raw).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("canonical name: %w", err)
	}
	return name, nil
}

// ListNames returns every stored name sorted case-insensitively ascending.
func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM names ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TrendFor returns the stored series for a name ordered by year, empty when
// the name is unknown.
func (s *Store) TrendFor(ctx context.Context, name string) ([]Point, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT t.year, t.count, t.percentage
        FROM name_trends t
        JOIN names n ON n.id = t.name_id
        WHERE n.name = ?
        ORDER BY t.year ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("trend for %q: %w", name, err)
	}
	defer rows.Close()

	var series []Point
	for rows.Next() {
		var point Point
		if err := rows.Scan(&point.Period, &point.Value, &point.Share); err != nil {
			return nil, err
		}
		series = append(series, point)
	}
	return series, rows.Err()
}

// PageFor returns the page data for a name: canonical form, full series, and
// the neighboring names in the sorted listing. Nil when the name is unknown.
func (s *Store) PageFor(ctx context.Context, raw string) (*Page, error) {
	canonical, err := s.CanonicalName(ctx, raw)
	if err != nil {
		return nil, err
	}
	if canonical == "" {
		return nil, nil
	}

	series, err := s.TrendFor(ctx, canonical)
	if err != nil {
		return nil, err
	}

	names, err := s.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	page := &Page{Name: canonical, Series: series}
	for i, name := range names {
		if name != canonical {
			continue
		}
		if i > 0 {
			page.PreviousName = &names[i-1]
		}
		if i < len(names)-1 {
			page.NextName = &names[i+1]
		}
		break
	}
	return page, nil
}

// IsRejected reports whether the name sits in the negative cache.
func (s *Store) IsRejected(ctx context.Context, raw string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rejected_names WHERE name = ?`, strings.TrimSpace(raw)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check rejected: %w", err)
	}
	return true, nil
}

// RecordRejected stores a negative-cache entry for a name judged
// inadmissible. The reason is truncated to a bounded length.
func (s *Store) RecordRejected(ctx context.Context, raw, reason string) error {
	name := strings.TrimSpace(raw)
	if name == "" {
		return errors.New("record rejected: name required")
	}
	reason = strings.TrimSpace(reason)
	if runes := []rune(reason); len(runes) > maxReasonLength {
		reason = string(runes[:maxReasonLength])
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rejected_names (name, reason, recorded_at) VALUES (?, ?, ?)`,
		name, reason, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record rejected: %w", err)
	}
	return nil
}

// ClearRejected removes a negative-cache entry, if any.
func (s *Store) ClearRejected(ctx context.Context, raw string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rejected_names WHERE name = ?`, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("clear rejected: %w", err)
	}
	return nil
}

// Upsert interpolates a complete series from the anchors and replaces any
// existing series for the name in a single transaction. The name is stored in
// display form and any matching negative-cache entry is cleared. Readers never
// observe a partially replaced series.
func (s *Store) Upsert(ctx context.Context, raw string, anchors AnchorSet) error {
	display := DisplayForm(raw)
	if display == "" {
		return errors.New("upsert: name required")
	}

	series, err := InterpolateSeries(anchors)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", display, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Wholesale replacement: the cascade drops any previous trend rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM names WHERE name = ?`, display); err != nil {
		return fmt.Errorf("delete existing name: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO names (name) VALUES (?)`, display)
	if err != nil {
		return fmt.Errorf("insert name: %w", err)
	}
	nameID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO name_trends (name_id, year, count, percentage) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trend insert: %w", err)
	}
	defer insert.Close()

	for _, point := range series {
		if _, err := insert.ExecContext(ctx, nameID, point.Period, point.Value, point.Share); err != nil {
			return fmt.Errorf("insert trend point: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rejected_names WHERE name = ?`, display); err != nil {
		return fmt.Errorf("clear rejection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Count returns the number of stored names.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM names`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count names: %w", err)
	}
	return count, nil
}
