package catalog

import (
	"context"
	"sync"
)

// MockClient is a mock catalog client for testing
type MockClient struct {
	mu       sync.Mutex
	covers   map[string]*Cover
	fetchErr error
	requests []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCover registers a cover for a reference
func WithCover(ref string, data []byte, contentType string) MockOption {
	return func(m *MockClient) {
		m.covers[ref] = &Cover{Data: data, ContentType: contentType}
	}
}

// WithFetchError sets an error to return from FetchCover
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// NewMockClient creates a new mock catalog client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{covers: make(map[string]*Cover)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchCover returns the registered cover or ErrCoverNotFound
func (m *MockClient) FetchCover(ctx context.Context, ref string) (*Cover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, ref)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	cover, ok := m.covers[ref]
	if !ok {
		return nil, ErrCoverNotFound
	}
	return cover, nil
}

// Requests returns the references requested so far
func (m *MockClient) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
