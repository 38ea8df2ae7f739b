package namestore

import (
	"context"
	"fmt"
)

type trendSeed struct {
	name       string
	startCount int64
	peakYear   int
	peakCount  int64
	endCount   int64
}

// seedNames is the bundled starter dataset. Each entry describes a trend
// shape that Upsert densifies through the shared interpolation path.
var seedNames = []trendSeed{
	{"Emma", 1200, 2018, 19800, 15200},
	{"Olivia", 800, 2020, 18500, 16800},
	{"Liam", 500, 2019, 20500, 19200},
	{"Noah", 600, 2016, 19300, 17500},
	{"Sophia", 1500, 2012, 22500, 14200},
	{"Isabella", 900, 2010, 22900, 12800},
	{"Ava", 400, 2014, 15200, 13500},
	{"Mia", 300, 2015, 14800, 13200},
	{"Charlotte", 1800, 2019, 13200, 12900},
	{"Amelia", 600, 2021, 13000, 12800},
	{"James", 8500, 1950, 86000, 12800},
	{"William", 7200, 1947, 58000, 11200},
	{"Benjamin", 2100, 2018, 13500, 12900},
	{"Lucas", 400, 2020, 11900, 11600},
	{"Henry", 3200, 1920, 14200, 11100},
	{"Alexander", 1800, 2009, 16900, 11800},
	{"Mason", 200, 2011, 19200, 9800},
	{"Michael", 12000, 1961, 92400, 9300},
	{"Ethan", 150, 2010, 17800, 9500},
	{"Daniel", 3500, 1985, 40000, 9200},
	{"Emily", 8200, 1999, 25900, 8900},
	{"Abigail", 1200, 2005, 15900, 7600},
	{"Madison", 300, 2001, 22200, 6500},
	{"Elizabeth", 9500, 1965, 27500, 7800},
	{"Harper", 100, 2015, 10900, 10200},
	{"Evelyn", 4200, 1920, 15600, 9800},
	{"Ella", 800, 2012, 11900, 10200},
	{"Grace", 2800, 2003, 12900, 6900},
	{"Claude", 1800, 1910, 9200, 2800},
	{"ChatGPT", 0, 2026, 2600, 2500},
	{"Grok", 0, 2026, 1400, 1350},
}

func (seed trendSeed) anchors() AnchorSet {
	anchors := AnchorSet{
		YearStart: seed.startCount,
		YearEnd:   seed.endCount,
	}
	switch {
	case seed.peakYear <= YearStart:
		anchors[YearStart] = seed.peakCount
	case seed.peakYear >= YearEnd:
		anchors[YearEnd] = seed.peakCount
	default:
		anchors[seed.peakYear] = seed.peakCount
	}
	return anchors
}

// SeedIfEmpty loads the bundled dataset when the store holds no names. It
// returns the number of names inserted (zero when the store was already
// populated).
func (s *Store) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	return s.seed(ctx)
}

// Reseed replaces the series of every bundled name regardless of current
// store contents.
func (s *Store) Reseed(ctx context.Context) (int, error) {
	return s.seed(ctx)
}

func (s *Store) seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, seed := range seedNames {
		if err := s.Upsert(ctx, seed.name, seed.anchors()); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", seed.name, err)
		}
		inserted++
	}
	return inserted, nil
}
