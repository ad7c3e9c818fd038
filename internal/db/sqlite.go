package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a file-backed CompanyStore for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serialises writers
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(sqlDB, "sqlite3"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite store opened", "path", path)
	return &SQLiteStore{db: sqlDB}, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	query, args := listQuery(f, questionPlaceholder)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := make([]models.Company, 0)
	for rows.Next() {
		c, err := scanSQLiteCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *SQLiteStore) GetCompany(ctx context.Context, ticker string) (models.Company, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticker, company_name, sector, expansion_rank, about, present_in_india, present_in_tn
		FROM companies WHERE ticker = ?`, ticker)
	c, err := scanSQLiteCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Company{}, ErrNotFound
	}
	return c, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteCompany(row scanner) (models.Company, error) {
	var (
		c    models.Company
		rank sql.NullInt64
	)
	if err := row.Scan(&c.Ticker, &c.Name, &c.Sector, &rank, &c.About, &c.PresentInIndia, &c.PresentInTN); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan company: %w", err)
	}
	if rank.Valid {
		n := int(rank.Int64)
		c.Rank = &n
	}
	return c.WithRankColor(), nil
}

func (s *SQLiteStore) Sectors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT sector FROM companies WHERE sector <> '' ORDER BY sector")
	if err != nil {
		return nil, fmt.Errorf("query sectors: %w", err)
	}
	defer rows.Close()

	sectors := make([]string, 0)
	for rows.Next() {
		var sector string
		if err := rows.Scan(&sector); err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	return sectors, rows.Err()
}

func (s *SQLiteStore) Ranks(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT expansion_rank FROM companies WHERE expansion_rank IS NOT NULL ORDER BY expansion_rank")
	if err != nil {
		return nil, fmt.Errorf("query ranks: %w", err)
	}
	defer rows.Close()

	ranks := make([]int, 0)
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}
	return ranks, rows.Err()
}

func (s *SQLiteStore) ReplaceCompanies(ctx context.Context, companies []models.Company) (int, error) {
	companies = dedupeTickers(companies)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM companies"); err != nil {
		return 0, fmt.Errorf("clear companies: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies (
			ticker, company_name, sector, expansion_rank, about,
			present_in_india, present_in_tn, sort_order, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range companies {
		var rank interface{}
		if c.Rank != nil {
			rank = *c.Rank
		}
		if _, err := stmt.ExecContext(ctx, c.Ticker, c.Name, c.Sector, rank, c.About, c.PresentInIndia, c.PresentInTN, i, now); err != nil {
			return 0, fmt.Errorf("insert company %s: %w", c.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(companies), nil
}

func (s *SQLiteStore) UpdateSectors(ctx context.Context, sectors map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0
	for ticker, sector := range sectors {
		res, err := s.db.ExecContext(ctx, "UPDATE companies SET sector = ?, updated_at = ? WHERE ticker = ?", strings.TrimSpace(sector), now, ticker)
		if err != nil {
			return count, fmt.Errorf("update sector %s: %w", ticker, err)
		}
		n, _ := res.RowsAffected()
		count += int(n)
	}
	return count, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		last sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(updated_at) FROM companies").Scan(&st.Companies, &last); err != nil {
		return st, fmt.Errorf("query stats: %w", err)
	}
	if last.Valid {
		if t, err := time.Parse(time.RFC3339, last.String); err == nil {
			st.LastImport = t
		}
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
