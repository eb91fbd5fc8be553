package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-tracker/internal/domain"
)

// Client define la interfaz para buscar en el catálogo externo.
type Client interface {
	Search(ctx context.Context, query string, page int) (SearchResponse, error)
}

type SearchResponse struct {
	Page         int                `json:"page"`
	Results      []domain.MediaItem `json:"results"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
}

// HTTPClient implementa Client contra la API v3 de TMDB.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) Search(ctx context.Context, query string, page int) (SearchResponse, error) {
	if c.apiKey == "" {
		return SearchResponse{}, fmt.Errorf("tmdb api key is not configured")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/multi?"+params.Encode(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return SearchResponse{}, fmt.Errorf("tmdb http error: status=%d", resp.StatusCode)
	}

	var sr SearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return SearchResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	// El endpoint multi no siempre rellena media_type; los resultados de
	// película traen title, los de TV traen name.
	for i := range sr.Results {
		if sr.Results[i].MediaType == "" {
			if sr.Results[i].Title != "" {
				sr.Results[i].MediaType = domain.MediaTypeMovie
			} else {
				sr.Results[i].MediaType = domain.MediaTypeTV
			}
		}
	}

	return sr, nil
}
