package stats

import (
	"sort"

	"cinelog/internal/movies"
)

// DefaultTopGenres is the number of named slices before the fallback bucket.
const DefaultTopGenres = 4

// Slice is one genre bucket.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Distribution is the genre breakdown of watched movies. Total counts every
// genre occurrence, including those folded into the fallback bucket.
type Distribution struct {
	Data  []Slice `json:"data"`
	Total int     `json:"total"`
}

// GenreDistribution counts genre names over WATCHED records. Records without
// genres count toward fallback. The topN largest named buckets are kept
// (ties by name); the rest are summed with the existing fallback bucket into
// one trailing slice. topN <= 0 uses DefaultTopGenres.
func GenreDistribution(records []movies.Record, resolve func(int64) string, fallback string, topN int) Distribution {
	if topN <= 0 {
		topN = DefaultTopGenres
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Status != movies.StatusWatched {
			continue
		}
		if len(rec.Genres) == 0 {
			counts[fallback]++
			continue
		}
		for _, id := range rec.Genres {
			name := ""
			if resolve != nil {
				name = resolve(id)
			}
			if name == "" {
				name = fallback
			}
			counts[name]++
		}
	}

	dist := Distribution{Data: []Slice{}}
	named := make([]Slice, 0, len(counts))
	for name, n := range counts {
		dist.Total += n
		if name == fallback {
			continue
		}
		named = append(named, Slice{Name: name, Value: n})
	}
	sort.Slice(named, func(i, j int) bool {
		if named[i].Value != named[j].Value {
			return named[i].Value > named[j].Value
		}
		return named[i].Name < named[j].Name
	})

	rest := counts[fallback]
	for i, s := range named {
		if i < topN {
			dist.Data = append(dist.Data, s)
			continue
		}
		rest += s.Value
	}
	if rest > 0 {
		dist.Data = append(dist.Data, Slice{Name: fallback, Value: rest})
	}
	return dist
}
