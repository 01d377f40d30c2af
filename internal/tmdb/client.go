package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinelog/internal/services"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "ko-KR"

// Genre is a TMDB genre id and display name.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is the subset of TMDB movie details the collection stores.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate *string `json:"release_date"`
	Genres      []Genre `json:"genres"`
	GenreIDList []int64 `json:"genre_ids"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

// GenreIDs returns genre ids from either the details or the list payload shape.
func (m Movie) GenreIDs() []int64 {
	if len(m.Genres) == 0 {
		return append([]int64{}, m.GenreIDList...)
	}
	ids := make([]int64, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// Page models TMDB paginated list responses.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Options configures a Client.
type Options struct {
	Token    string
	APIKey   string
	BaseURL  string
	Language string
}

// Client provides access to the TMDB API.
type Client struct {
	token      string
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client. It fails with ErrConfiguration when neither a
// token nor an API key is set.
func New(opts Options, options ...Option) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	apiKey := strings.TrimSpace(opts.APIKey)
	if token == "" && apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client",
			"tmdb.token or tmdb.api_key is required (TMDB_TOKEN / TMDB_API_KEY)", nil)
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "tmdb base url required", nil)
	}
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = DefaultLanguage
	}
	client := &Client{
		token:      token,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Language returns the tag sent with every request.
func (c *Client) Language() string {
	return c.language
}

// MovieDetails fetches a single movie.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (Movie, error) {
	if movieID <= 0 {
		return Movie{}, services.Wrap(services.ErrValidation, "tmdb", "movie details", fmt.Sprintf("invalid movie id %d", movieID), nil)
	}
	var movie Movie
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), nil, &movie); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// GenreList fetches every movie genre in the client language.
func (c *Client) GenreList(ctx context.Context) ([]Genre, error) {
	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

// SearchMovies searches titles. Pages start at 1.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, services.Wrap(services.ErrValidation, "tmdb", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("include_adult", "false")
	var payload Page
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return Page{}, err
	}
	return payload, nil
}

// TrendingMovies lists the weekly trending movies.
func (c *Client) TrendingMovies(ctx context.Context, page int) (Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	var payload Page
	if err := c.get(ctx, "/trending/movie/week", params, &payload); err != nil {
		return Page{}, err
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("language", c.language)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrExternal, "tmdb", path, fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return services.Wrap(services.ErrExternal, "tmdb", path,
			fmt.Sprintf("returned %d (latency=%v): %s", resp.StatusCode, latency, text), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternal, "tmdb", path, "decode response", err)
	}
	return nil
}
