package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
)

// ErrNotFound is returned when a ticker is not in the store.
var ErrNotFound = errors.New("company not found")

// CompanyStore is the read/write surface the handlers and importer need.
// Implementations must be safe for concurrent use.
type CompanyStore interface {
	// ListCompanies returns companies matching f in import order.
	ListCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error)
	GetCompany(ctx context.Context, ticker string) (models.Company, error)
	Sectors(ctx context.Context) ([]string, error)
	Ranks(ctx context.Context) ([]int, error)
	// ReplaceCompanies swaps the whole company set for companies, keeping
	// their order. A repeated ticker keeps its first position and takes the
	// data of its last row. Returns the number of rows written.
	ReplaceCompanies(ctx context.Context, companies []models.Company) (int, error)
	// UpdateSectors sets the sector of each ticker key. Unknown tickers are
	// skipped. Returns the number of rows changed.
	UpdateSectors(ctx context.Context, sectors map[string]string) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarises the store contents for the admin status endpoint.
type Stats struct {
	Companies  int
	LastImport time.Time
}

// listQuery builds the WHERE clause for a company filter. placeholder
// renders the n-th (1-based) bind parameter in the target dialect.
func listQuery(f models.CompanyFilter, placeholder func(n int) string) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if !models.IsAll(f.Sector) {
		args = append(args, f.Sector)
		conds = append(conds, "sector = "+placeholder(len(args)))
	}
	if rank, ok := f.RankNumber(); ok {
		args = append(args, rank)
		conds = append(conds, "expansion_rank = "+placeholder(len(args)))
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		args = append(args, pattern)
		byName := placeholder(len(args))
		args = append(args, pattern)
		byTicker := placeholder(len(args))
		conds = append(conds, fmt.Sprintf(`(LOWER(company_name) LIKE %s ESCAPE '\' OR LOWER(ticker) LIKE %s ESCAPE '\')`, byName, byTicker))
	}

	query := `SELECT ticker, company_name, sector, expansion_rank, about, present_in_india, present_in_tn FROM companies`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sort_order, ticker"
	return query, args
}

// dedupeTickers collapses repeated tickers. Each ticker stays where it
// first appears and carries the fields of its last occurrence.
func dedupeTickers(companies []models.Company) []models.Company {
	pos := make(map[string]int, len(companies))
	out := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if i, ok := pos[c.Ticker]; ok {
			out[i] = c
			continue
		}
		pos[c.Ticker] = len(out)
		out = append(out, c)
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }
