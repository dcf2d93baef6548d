package fitnesslog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/evopool/core/fitnesslog"
)

// SQLiteWriter persists fitness logs to a SQLite database.
type SQLiteWriter struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLiteWriter opens or creates the database at path and ensures schema.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS generations (
        generation INTEGER PRIMARY KEY,
        started_at INTEGER,
        mean REAL,
        stdev REAL,
        best REAL,
        median REAL
    );
    CREATE TABLE IF NOT EXISTS genome_fitness (
        generation INTEGER NOT NULL,
        genome_key INTEGER NOT NULL,
        fitness REAL NOT NULL
    );
    CREATE INDEX IF NOT EXISTS genome_fitness_generation ON genome_fitness (generation);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteWriter{db: db, timeout: 5 * time.Second}, nil
}

func (s *SQLiteWriter) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// StartGeneration records the generation. Generation 0 clears the previous run.
func (s *SQLiteWriter) StartGeneration(gen int) error {
	ctx, cancel := s.ctx()
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if gen == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM generations`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM genome_fitness`); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO generations (generation, started_at) VALUES (?, ?)`,
		gen, time.Now().UnixNano()); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendSummary fills the statistics of sum.Generation.
func (s *SQLiteWriter) AppendSummary(sum core.Summary) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (generation, mean, stdev, best, median) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(generation) DO UPDATE SET mean = excluded.mean, stdev = excluded.stdev,
         best = excluded.best, median = excluded.median`,
		sum.Generation, sum.Mean, sum.Stdev, sum.Best, sum.Median)
	return err
}

// AppendGenomes inserts rows in a single transaction.
func (s *SQLiteWriter) AppendGenomes(gen int, rows []core.Row) error {
	ctx, cancel := s.ctx()
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO genome_fitness (generation, genome_key, fitness) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, gen, r.Key, r.Fitness); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Summaries returns the complete generation records in generation order.
func (s *SQLiteWriter) Summaries(ctx context.Context) ([]core.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT generation, mean, stdev, best, median FROM generations WHERE mean IS NOT NULL ORDER BY generation`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []core.Summary
	for rows.Next() {
		var sum core.Summary
		if err := rows.Scan(&sum.Generation, &sum.Mean, &sum.Stdev, &sum.Best, &sum.Median); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Genomes returns the fitness rows of one generation ordered by genome key.
func (s *SQLiteWriter) Genomes(ctx context.Context, gen int) ([]core.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT generation, genome_key, fitness FROM genome_fitness WHERE generation = ? ORDER BY genome_key`, gen)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []core.Row
	for rows.Next() {
		var r core.Row
		if err := rows.Scan(&r.Generation, &r.Key, &r.Fitness); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteWriter) Close() error { return s.db.Close() }

var _ core.Writer = (*SQLiteWriter)(nil)
