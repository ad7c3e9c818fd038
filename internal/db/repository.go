package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mauv0809/expansion-radar/internal/models"
)

// Repository is the Postgres-backed CompanyStore.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pgx pool and checks it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// ListCompanies returns the companies matching f in sheet order.
func (r *Repository) ListCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	query, args := listQuery(f, dollarPlaceholder)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	companies := make([]models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// GetCompany returns a single company by ticker.
func (r *Repository) GetCompany(ctx context.Context, ticker string) (models.Company, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT ticker, company_name, sector, expansion_rank, about, present_in_india, present_in_tn
		FROM companies WHERE ticker = $1
	`, ticker)

	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Company{}, ErrNotFound
	}
	return c, err
}

func scanCompany(row pgx.Row) (models.Company, error) {
	var (
		c    models.Company
		rank *int32
	)
	err := row.Scan(&c.Ticker, &c.Name, &c.Sector, &rank, &c.About, &c.PresentInIndia, &c.PresentInTN)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scanning company: %w", err)
	}
	if rank != nil {
		n := int(*rank)
		c.Rank = &n
	}
	return c.WithRankColor(), nil
}

// Sectors returns the distinct non-empty sectors, sorted.
func (r *Repository) Sectors(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT sector FROM companies WHERE sector <> '' ORDER BY sector")
	if err != nil {
		return nil, fmt.Errorf("querying sectors: %w", err)
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

// Ranks returns the distinct ranks, ascending.
func (r *Repository) Ranks(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT expansion_rank FROM companies WHERE expansion_rank IS NOT NULL ORDER BY expansion_rank")
	if err != nil {
		return nil, fmt.Errorf("querying ranks: %w", err)
	}
	defer rows.Close()

	ranks := make([]int, 0)
	for rows.Next() {
		var rank int32
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		ranks = append(ranks, int(rank))
	}

	return ranks, rows.Err()
}

// ReplaceCompanies deletes the current company set and batch-inserts the
// new one in a single transaction.
func (r *Repository) ReplaceCompanies(ctx context.Context, companies []models.Company) (int, error) {
	companies = dedupeTickers(companies)
	count := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM companies"); err != nil {
			return fmt.Errorf("clearing companies: %w", err)
		}
		if len(companies) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, c := range companies {
			batch.Queue(`
				INSERT INTO companies (
					ticker, company_name, sector, expansion_rank, about,
					present_in_india, present_in_tn, sort_order, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			`, c.Ticker, c.Name, c.Sector, c.Rank, c.About, c.PresentInIndia, c.PresentInTN, i)
		}

		br := tx.SendBatch(ctx, batch)
		for range companies {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("inserting company: %w", err)
			}
			count++
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// UpdateSectors fills in sectors for the given tickers.
func (r *Repository) UpdateSectors(ctx context.Context, sectors map[string]string) (int, error) {
	if len(sectors) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for ticker, sector := range sectors {
		batch.Queue("UPDATE companies SET sector = $2, updated_at = NOW() WHERE ticker = $1", ticker, strings.TrimSpace(sector))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range sectors {
		tag, err := br.Exec()
		if err != nil {
			return count, fmt.Errorf("updating sector: %w", err)
		}
		count += int(tag.RowsAffected())
	}

	return count, nil
}

// Stats returns the company count and the time of the last import.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var (
		s    Stats
		last *time.Time
	)
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*), MAX(updated_at) FROM companies").Scan(&s.Companies, &last)
	if err != nil {
		return s, fmt.Errorf("querying stats: %w", err)
	}
	if last != nil {
		s.LastImport = *last
	}
	return s, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
