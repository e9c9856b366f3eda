package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/samber/lo"
)

// Provider names accepted by ChainOptions.Preferred.
const (
	NameDeepL          = "deepl"
	NameOpenAI         = "openai"
	NameLibreTranslate = "libretranslate"
)

// Credentials holds everything needed to construct the HTTP providers.
type Credentials struct {
	DeepLKey      string
	DeepLURL      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LibreServers  []string
	LibreKey      string
}

// ChainOptions shapes the provider chain built by NewChain.
type ChainOptions struct {
	Preferred   string                    // Move this provider to the front
	Refine      bool                      // Refine drafts with OpenAI
	Retry       sitetrans.RetryConfig     // Per-provider retry policy
	RateLimit   sitetrans.RateLimitConfig // Applied to the whole chain; zero disables
	HTTPTimeout time.Duration             // Per-request timeout for HTTP providers
}

// Available returns the names of providers with usable credentials, in
// priority order: DeepL, then OpenAI, then LibreTranslate.
func Available(creds Credentials) []string {
	var names []string
	if creds.DeepLKey != "" {
		names = append(names, NameDeepL)
	}
	if creds.OpenAIKey != "" {
		names = append(names, NameOpenAI)
	}
	if len(lo.Compact(creds.LibreServers)) > 0 {
		names = append(names, NameLibreTranslate)
	}
	return names
}

// NewChain builds the provider used for a run: every available provider
// wrapped in retries, composed as primary plus fallbacks, optionally refined
// and rate limited. It returns a ConfigError when nothing is usable or the
// options ask for a provider without credentials.
func NewChain(creds Credentials, opts ChainOptions) (Provider, error) {
	names := Available(creds)
	if len(names) == 0 {
		return nil, &sitetrans.ConfigError{
			Message: "no translation provider configured: set DEEPL_API_KEY, OPENAI_API_KEY or LIBRETRANSLATE_URL",
		}
	}

	if pref := strings.ToLower(strings.TrimSpace(opts.Preferred)); pref != "" {
		if !lo.Contains([]string{NameDeepL, NameOpenAI, NameLibreTranslate}, pref) {
			return nil, &sitetrans.ConfigError{Message: fmt.Sprintf("unknown provider %q", opts.Preferred)}
		}
		if !lo.Contains(names, pref) {
			return nil, &sitetrans.ConfigError{Message: fmt.Sprintf("provider %q selected but its credentials are not set", pref)}
		}
		names = append([]string{pref}, lo.Without(names, pref)...)
	}

	var openaiProvider *OpenAIProvider
	if creds.OpenAIKey != "" {
		openaiProvider = NewOpenAIProvider(OpenAIConfig{
			APIKey:  creds.OpenAIKey,
			BaseURL: creds.OpenAIBaseURL,
			Model:   creds.OpenAIModel,
		})
	}

	chain := make([]Provider, 0, len(names))
	for _, name := range names {
		var p Provider
		switch name {
		case NameDeepL:
			p = NewDeepLProvider(DeepLConfig{APIKey: creds.DeepLKey, BaseURL: creds.DeepLURL, Timeout: opts.HTTPTimeout})
		case NameOpenAI:
			p = openaiProvider
		case NameLibreTranslate:
			p = NewLibreTranslateProvider(LibreTranslateConfig{Servers: creds.LibreServers, APIKey: creds.LibreKey, Timeout: opts.HTTPTimeout})
		}
		if opts.Retry.MaxRetries > 0 {
			p = sitetrans.NewRetryableProvider(p, opts.Retry)
		}
		chain = append(chain, p)
	}

	var result Provider = NewFallback(chain[0], chain[1:]...)
	if len(chain) == 1 {
		result = chain[0]
	}

	if opts.Refine {
		switch {
		case openaiProvider == nil:
			return nil, &sitetrans.ConfigError{Message: "refinement requires OPENAI_API_KEY"}
		case names[0] == NameOpenAI:
			log.Infow("primary provider is OpenAI, skipping refinement")
		default:
			result = NewRefiningProvider(result, openaiProvider)
		}
	}

	if opts.RateLimit.RequestsPerMinute > 0 {
		result = sitetrans.NewRateLimitedProvider(result, opts.RateLimit)
	}

	log.Debugw("provider chain ready", "chain", result.Name())
	return result, nil
}
