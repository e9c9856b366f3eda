package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	result, err := m.Translate(context.Background(), TranslateRequest{
		Texts:      []string{"Hello", "Unknown text"},
		TargetLang: "fr",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bonjour", "[fr] Unknown text"}, result)
	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, "fr", m.LastRequest().TargetLang)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.LastRequest())
}

func TestMockProvider_FailTimes(t *testing.T) {
	m := NewMockProvider()
	m.Err = &sitetrans.ProviderError{Message: "flaky", Retryable: true}
	m.FailTimes = 1

	_, err := m.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}})
	require.Error(t, err)

	out, err := m.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, out)
}

func TestFallback(t *testing.T) {
	primary := NewMockProvider()
	primary.ProviderName = "deepl"
	primary.Err = &sitetrans.ProviderError{Message: "quota exceeded"}
	secondary := NewMockProvider()
	secondary.ProviderName = "openai"

	f := NewFallback(primary, secondary)
	out, err := f.Translate(context.Background(), TranslateRequest{Texts: []string{"World"}, TargetLang: "fr"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Monde"}, out)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, secondary.CallCount())
	assert.Equal(t, "deepl>openai", f.Name())
	assert.Len(t, f.Providers(), 2)
}

func TestFallback_AllFail(t *testing.T) {
	a := NewMockProvider()
	a.Err = &sitetrans.ProviderError{Message: "down", Retryable: true}
	b := NewMockProvider()
	b.Err = errors.New("bad credentials")

	_, err := NewFallback(a, b).Translate(context.Background(), TranslateRequest{Texts: []string{"x"}})

	var provErr *sitetrans.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.True(t, provErr.Retryable, "any retryable cause keeps the chain retryable")
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestFallback_StopsOnCancel(t *testing.T) {
	a := NewMockProvider()
	b := NewMockProvider()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFallback(a, b).Translate(ctx, TranslateRequest{Texts: []string{"x"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, b.CallCount())
}

type stubRefiner struct {
	err    error
	suffix string
}

func (s *stubRefiner) Refine(ctx context.Context, req TranslateRequest, drafts []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = d + s.suffix
	}
	return out, nil
}

func (s *stubRefiner) Name() string { return "stub" }

func TestRefiningProvider(t *testing.T) {
	base := NewMockProvider()

	p := NewRefiningProvider(base, &stubRefiner{suffix: "!"})
	out, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour!"}, out)
	assert.Equal(t, "mock+stub", p.Name())

	p = NewRefiningProvider(base, &stubRefiner{err: errors.New("refiner down")})
	out, err = p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, out, "drafts survive a failed refinement")
}

func TestAvailable(t *testing.T) {
	assert.Empty(t, Available(Credentials{LibreServers: []string{""}}))
	assert.Equal(t,
		[]string{NameDeepL, NameOpenAI, NameLibreTranslate},
		Available(Credentials{DeepLKey: "d", OpenAIKey: "o", LibreServers: []string{"http://lt"}}))
}

func TestNewChain(t *testing.T) {
	creds := Credentials{DeepLKey: "d", OpenAIKey: "o", LibreServers: []string{"http://lt"}}

	tests := []struct {
		name     string
		creds    Credentials
		opts     ChainOptions
		wantName string
		wantErr  bool
	}{
		{"no credentials", Credentials{}, ChainOptions{}, "", true},
		{"single provider", Credentials{DeepLKey: "d"}, ChainOptions{}, "deepl", false},
		{"priority order", creds, ChainOptions{}, "deepl>openai>libretranslate", false},
		{"preferred first", creds, ChainOptions{Preferred: "LibreTranslate"}, "libretranslate>deepl>openai", false},
		{"preferred without key", Credentials{DeepLKey: "d"}, ChainOptions{Preferred: "openai"}, "", true},
		{"unknown preferred", creds, ChainOptions{Preferred: "babelfish"}, "", true},
		{"refined", Credentials{DeepLKey: "d", OpenAIKey: "o"}, ChainOptions{Refine: true}, "deepl>openai+openai", false},
		{"refine needs openai", Credentials{DeepLKey: "d"}, ChainOptions{Refine: true}, "", true},
		{"refine skipped for openai primary", Credentials{OpenAIKey: "o"}, ChainOptions{Refine: true}, "openai", false},
		{"wrapped", Credentials{DeepLKey: "d"}, ChainOptions{
			Retry:     sitetrans.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond},
			RateLimit: sitetrans.RateLimitConfig{RequestsPerMinute: 120},
		}, "deepl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewChain(tt.creds, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, sitetrans.IsConfigError(err), "got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
