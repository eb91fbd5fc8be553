package tmdb

import "context"

// MockClient permite tests sin llamar a la API real de TMDB.
type MockClient struct {
	Response SearchResponse
	Err      error

	LastQuery string
	LastPage  int
}

func (m *MockClient) Search(_ context.Context, query string, page int) (SearchResponse, error) {
	m.LastQuery = query
	m.LastPage = page
	return m.Response, m.Err
}
