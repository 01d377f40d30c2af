package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"cinelog/internal/collection"
	"cinelog/internal/services"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// movieRequest carries optional metadata. An empty title means "use the
// stored record or look the movie up".
type movieRequest struct {
	Title       string  `json:"title" validate:"max=512"`
	PosterPath  *string `json:"posterPath" validate:"omitnil,max=512"`
	ReleaseDate *string `json:"releaseDate" validate:"omitnil,max=32"`
	Genres      []int64 `json:"genres" validate:"omitempty,max=32,dive,gt=0"`
}

type reviewRequest struct {
	movieRequest
	Rating *float64 `json:"rating" validate:"omitnil,gte=0,lte=10"`
	Review string   `json:"review" validate:"max=10000"`
	Tags   []string `json:"tags" validate:"omitempty,max=64,dive,max=64"`
}

type memoRequest struct {
	Memo string `json:"memo" validate:"max=10000"`
}

func (m movieRequest) input(id int64) collection.MovieInput {
	return collection.MovieInput{
		MovieID:     id,
		Title:       strings.TrimSpace(m.Title),
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Genres:      m.Genres,
	}
}

// decodeBody reads an optional JSON body into dst and validates it.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return services.Wrap(services.ErrValidation, "httpapi", "decode body", err.Error(), nil)
	}
	if err := validate.Struct(dst); err != nil {
		return services.Wrap(services.ErrValidation, "httpapi", "validate body", validationMessage(err), nil)
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func movieID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "httpapi", "parse id", fmt.Sprintf("invalid movie id %q", raw), nil)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, services.Wrap(services.ErrValidation, "httpapi", "parse query",
			fmt.Sprintf("%s must be an integer between %d and %d", key, lo, hi), nil)
	}
	return n, nil
}
