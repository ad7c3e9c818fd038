package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
)

// MemoryStore keeps companies in process memory. Used when no database is
// configured and in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	companies  []models.Company
	lastImport time.Time
}

func NewMemoryStore(companies ...models.Company) *MemoryStore {
	s := &MemoryStore{}
	if len(companies) > 0 {
		s.companies = append(s.companies, companies...)
		s.lastImport = time.Now()
	}
	return s
}

func (s *MemoryStore) ListCompanies(_ context.Context, f models.CompanyFilter) ([]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		if f.Matches(c) {
			out = append(out, c.WithRankColor())
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCompany(_ context.Context, ticker string) (models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.companies {
		if c.Ticker == ticker {
			return c.WithRankColor(), nil
		}
	}
	return models.Company{}, ErrNotFound
}

func (s *MemoryStore) Sectors(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	sectors := make([]string, 0)
	for _, c := range s.companies {
		if c.Sector == "" || seen[c.Sector] {
			continue
		}
		seen[c.Sector] = true
		sectors = append(sectors, c.Sector)
	}
	sort.Strings(sectors)
	return sectors, nil
}

func (s *MemoryStore) Ranks(context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]bool)
	ranks := make([]int, 0)
	for _, c := range s.companies {
		if c.Rank == nil || seen[*c.Rank] {
			continue
		}
		seen[*c.Rank] = true
		ranks = append(ranks, *c.Rank)
	}
	sort.Ints(ranks)
	return ranks, nil
}

func (s *MemoryStore) ReplaceCompanies(_ context.Context, companies []models.Company) (int, error) {
	next := dedupeTickers(companies)

	s.mu.Lock()
	s.companies = next
	s.lastImport = time.Now()
	s.mu.Unlock()
	return len(next), nil
}

func (s *MemoryStore) UpdateSectors(_ context.Context, sectors map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i, c := range s.companies {
		if sector, ok := sectors[c.Ticker]; ok {
			s.companies[i].Sector = strings.TrimSpace(sector)
			count++
		}
	}
	if count > 0 {
		s.lastImport = time.Now()
	}
	return count, nil
}

func (s *MemoryStore) Stats(context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Companies: len(s.companies), LastImport: s.lastImport}, nil
}

func (s *MemoryStore) Close() error { return nil }
