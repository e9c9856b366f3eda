package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic provider for tests and dry runs. Unknown
// texts come back as "[<lang>] text".
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set
	FailTimes    int               // Fail this many calls with Err before succeeding
	ProviderName string            // Reported by Name (default: "mock")

	mu          sync.Mutex
	callCount   int
	lastRequest *TranslateRequest
}

// NewMockProvider creates a new mock provider with a few default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Bonjour",
			"World":                "Monde",
			"Hello World":          "Bonjour le monde",
			"Welcome to our site.": "Bienvenue sur notre site.",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil && (m.FailTimes == 0 || m.callCount <= m.FailTimes) {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s] %s", req.TargetLang, text)
		}
	}
	return results, nil
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

// CallCount returns the number of Translate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

var _ Provider = (*MockProvider)(nil)
