package github

import (
	"context"
)

// MockClient is a mock implementation of Client for testing purposes.
// It records calls and serves repositories from an in-memory map
// without touching the network.
type MockClient struct {
	owner string
	repos map[string]*RepositoryInfo

	// Call records, in order
	GetCalls     []string
	CreateCalls  []string
	DisableCalls []string

	// When set, the corresponding call fails with this error
	GetErr     error
	CreateErr  error
	DisableErr error
}

// NewMockClient creates a new MockClient for the given owner.
func NewMockClient(owner string) *MockClient {
	return &MockClient{
		owner: owner,
		repos: make(map[string]*RepositoryInfo),
	}
}

// AddRepository seeds an existing repository.
func (m *MockClient) AddRepository(name string) {
	m.repos[name] = &RepositoryInfo{
		Owner:     m.owner,
		Name:      name,
		CloneURL:  "https://github.com/" + m.owner + "/" + name + ".git",
		HasIssues: true,
		HasWiki:   true,
	}
}

// GetOwner implements Client.
func (m *MockClient) GetOwner() string {
	return m.owner
}

// GetRepository implements Client.
func (m *MockClient) GetRepository(_ context.Context, name string) (*RepositoryInfo, error) {
	m.GetCalls = append(m.GetCalls, name)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.repos[name], nil
}

// CreateRepository implements Client.
func (m *MockClient) CreateRepository(_ context.Context, name string, _ CreateRepositoryOptions) (*RepositoryInfo, error) {
	m.CreateCalls = append(m.CreateCalls, name)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.AddRepository(name)
	return m.repos[name], nil
}

// DisableProjectFeatures implements Client.
func (m *MockClient) DisableProjectFeatures(_ context.Context, name string) error {
	m.DisableCalls = append(m.DisableCalls, name)
	if m.DisableErr != nil {
		return m.DisableErr
	}
	if repo, ok := m.repos[name]; ok {
		repo.HasIssues = false
		repo.HasWiki = false
	}
	return nil
}
