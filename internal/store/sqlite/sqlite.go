package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"econdash/internal/series"
	"econdash/internal/store"
	"econdash/internal/summary"
)

// Observation is one archived indicator value.
type Observation struct {
	Country       string
	IndicatorCode string
	series.Row
	IngestedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSummary upserts every row of every table in one transaction.
func (s *Store) SaveSummary(ctx context.Context, sum *summary.CountrySummary) (err error) {
	if sum == nil || sum.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO indicator_observations (
			country, indicator_code, indicator, year, value, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(country, indicator_code, year)
		DO UPDATE SET
			indicator = excluded.indicator,
			value = excluded.value,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ingestedAt := s.now().UTC().Format(time.RFC3339)
	for _, ind := range sum.Indicators() {
		table, ok := sum.Get(ind.Name)
		if !ok {
			continue
		}
		for _, r := range table.Rows() {
			if _, err = stmt.ExecContext(ctx, sum.Country, ind.Code, r.Indicator, r.Year, r.Value, ingestedAt); err != nil {
				return fmt.Errorf("sqlite: upsert %s/%s/%d: %w", sum.Country, ind.Code, r.Year, err)
			}
		}
	}

	return tx.Commit()
}

// Observations lists archived rows for a country ordered by indicator then year.
func (s *Store) Observations(ctx context.Context, country string) ([]Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country, indicator_code, indicator, year, value, ingested_at
		FROM indicator_observations
		WHERE country = ?
		ORDER BY indicator, year
	`, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var (
			o          Observation
			ingestedAt string
		)
		if err := rows.Scan(&o.Country, &o.IndicatorCode, &o.Indicator, &o.Year, &o.Value, &ingestedAt); err != nil {
			return nil, err
		}
		if o.IngestedAt, err = time.Parse(time.RFC3339, ingestedAt); err != nil {
			return nil, fmt.Errorf("sqlite: ingested_at %q: %w", ingestedAt, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS indicator_observations (
			country TEXT NOT NULL,
			indicator_code TEXT NOT NULL,
			indicator TEXT NOT NULL,
			year INTEGER NOT NULL,
			value REAL NOT NULL,
			ingested_at TEXT NOT NULL,
			PRIMARY KEY (country, indicator_code, year)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
