package challenge

import "context"

// MockProvider is a test double for the Provider interface.
type MockProvider struct {
	ProviderName string

	// Function mocks - set these to customize behavior
	PublishFunc func(ctx context.Context, req Request) error
	CleanupFunc func(ctx context.Context, req Request) error

	// Call tracking - check these to verify interactions
	PublishCalls []Request
	CleanupCalls []Request
}

// NewMockProvider creates a MockProvider with default no-op behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{ProviderName: "mock"}
}

// Name returns the configured provider name.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Publish records the call and invokes the mock function if set.
func (m *MockProvider) Publish(ctx context.Context, req Request) error {
	m.PublishCalls = append(m.PublishCalls, req)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, req)
	}
	return nil
}

// Cleanup records the call and invokes the mock function if set.
func (m *MockProvider) Cleanup(ctx context.Context, req Request) error {
	m.CleanupCalls = append(m.CleanupCalls, req)
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx, req)
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockProvider) Reset() {
	m.PublishCalls = nil
	m.CleanupCalls = nil
}
