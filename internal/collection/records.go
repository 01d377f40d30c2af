package collection

import "cinelog/internal/movies"

func statusOf(list []movies.Record, id int64) movies.Status {
	if r, ok := movies.Find(list, id); ok {
		return r.Status
	}
	return ""
}

func watchlistRecord(in MovieInput, now string) movies.Record {
	return movies.Sanitize(movies.Record{
		MovieID:     in.MovieID,
		Title:       in.Title,
		PosterPath:  in.PosterPath,
		ReleaseDate: in.ReleaseDate,
		Genres:      in.Genres,
		Status:      movies.StatusWatchlist,
		AddedAt:     now,
	})
}

func watchedRecord(in MovieInput, existing movies.Record, hasExisting bool, now string) movies.Record {
	rec := movies.Record{
		MovieID:     in.MovieID,
		Title:       in.Title,
		PosterPath:  in.PosterPath,
		ReleaseDate: in.ReleaseDate,
		Genres:      in.Genres,
		Status:      movies.StatusWatched,
		AddedAt:     now,
		WatchedAt:   movies.StringPtr(now),
	}
	if hasExisting {
		if len(rec.Genres) == 0 {
			rec.Genres = existing.Genres
		}
		if existing.AddedAt != "" {
			rec.AddedAt = existing.AddedAt
		}
		rec.Rating = existing.Rating
		rec.Review = existing.Review
		rec.Tags = existing.Tags
		rec.RewatchCount = existing.RewatchCount
	}
	return movies.Sanitize(rec)
}

func overlayReview(rec movies.Record, review ReviewInput) movies.Record {
	rec.Rating = review.Rating
	rec.Review = review.Review
	rec.Tags = review.Tags
	return movies.Sanitize(rec)
}

// putRecord replaces the record with the same id in place or appends it.
func putRecord(list []movies.Record, rec movies.Record) ([]movies.Record, movies.Record) {
	if i := movies.Index(list, rec.MovieID); i >= 0 {
		list[i] = rec
		return list, rec
	}
	return append(list, rec), rec
}

func without(list []movies.Record, id int64) []movies.Record {
	out := make([]movies.Record, 0, len(list))
	for _, r := range list {
		if r.MovieID != id {
			out = append(out, r)
		}
	}
	return out
}
