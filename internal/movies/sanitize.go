package movies

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Sanitize returns the canonical form of r. It never fails and
// Sanitize(Sanitize(r)) equals Sanitize(r).
func Sanitize(r Record) Record {
	out := Record{
		MovieID:      r.MovieID,
		Title:        validUTF8(r.Title),
		PosterPath:   validUTF8Ptr(r.PosterPath),
		ReleaseDate:  validUTF8Ptr(r.ReleaseDate),
		Genres:       append([]int64{}, r.Genres...),
		Status:       normalizeStatus(string(r.Status)),
		AddedAt:      validUTF8(r.AddedAt),
		WatchedAt:    validUTF8Ptr(r.WatchedAt),
		Review:       validUTF8(r.Review),
		Tags:         make([]string, 0, len(r.Tags)),
		RewatchCount: max(r.RewatchCount, 0),
	}
	for _, tag := range r.Tags {
		out.Tags = append(out.Tags, validUTF8(tag))
	}
	if r.Rating != nil && isFinite(*r.Rating) {
		rating := *r.Rating
		out.Rating = &rating
	}
	if out.Status == StatusWatchlist {
		out.WatchedAt = nil
	}
	return out
}

// SanitizeValue coerces an untyped value into a Record. It accepts a decoded
// JSON object, a Record or a *Record; anything else yields the default record.
func SanitizeValue(value any) Record {
	switch v := value.(type) {
	case Record:
		return Sanitize(v)
	case *Record:
		if v == nil {
			return Sanitize(Record{})
		}
		return Sanitize(*v)
	case map[string]any:
		return sanitizeObject(v)
	default:
		return Sanitize(Record{})
	}
}

func sanitizeObject(obj map[string]any) Record {
	r := Record{
		MovieID:      toInt64(obj["movieId"]),
		Title:        toString(obj["title"]),
		PosterPath:   toNullableString(obj["posterPath"]),
		ReleaseDate:  toNullableString(obj["releaseDate"]),
		Genres:       toGenres(obj["genres"]),
		Status:       normalizeStatus(toString(obj["status"])),
		AddedAt:      toString(obj["addedAt"]),
		WatchedAt:    toNullableString(obj["watchedAt"]),
		Review:       toString(obj["review"]),
		Tags:         toTags(obj["tags"]),
		RewatchCount: int(max(toInt64(obj["rewatchCount"]), 0)),
	}
	if raw, ok := obj["rating"]; ok && raw != nil {
		if f, ok := toNumber(raw); ok {
			r.Rating = &f
		}
	}
	return Sanitize(r)
}

func normalizeStatus(value string) Status {
	if Status(strings.ToUpper(strings.TrimSpace(value))) == StatusWatched {
		return StatusWatched
	}
	return StatusWatchlist
}

// toNumber mirrors JavaScript's Number() for the types JSON can carry. ok is
// false for nil, objects, arrays and anything non-finite.
func toNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if v {
			f = 1
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !isFinite(f) {
		return 0, false
	}
	return f, true
}

func toInt64(value any) int64 {
	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, ok := toNumber(value)
	if !ok || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func toNullableString(value any) *string {
	switch value.(type) {
	case string, json.Number, bool, float64, int, int64:
		s := toString(value)
		return &s
	default:
		return nil
	}
}

func toGenres(value any) []int64 {
	out := []int64{}
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if f, ok := toNumber(item); ok && math.Abs(f) < math.MaxInt64 {
				out = append(out, int64(math.Trunc(f)))
			}
		}
	case []int64:
		out = append(out, v...)
	case []int:
		for _, item := range v {
			out = append(out, int64(item))
		}
	}
	return out
}

func toTags(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			switch item.(type) {
			case string, json.Number, bool, float64, int, int64:
				out = append(out, toString(item))
			}
		}
	case []string:
		out = append(out, v...)
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validUTF8 replaces invalid byte sequences with U+FFFD, the form
// encoding/json writes them in, so a stored record reads back unchanged.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func validUTF8Ptr(p *string) *string {
	if p == nil {
		return nil
	}
	v := validUTF8(*p)
	return &v
}
