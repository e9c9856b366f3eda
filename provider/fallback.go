package provider

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// Fallback tries its providers in order and returns the first successful
// result. It fails only when every provider has failed.
type Fallback struct {
	providers []Provider
}

// NewFallback creates a fallback chain. The first provider is the primary.
func NewFallback(primary Provider, fallbacks ...Provider) *Fallback {
	return &Fallback{providers: append([]Provider{primary}, fallbacks...)}
}

// Translate implements Provider.
func (f *Fallback) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	var errs *multierror.Error
	retryable := false

	for i, p := range f.providers {
		out, err := p.Translate(ctx, req)
		if err == nil {
			if i > 0 {
				log.Infow("fallback provider succeeded", "provider", p.Name(), "texts", len(req.Texts))
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		log.Warnw("provider failed", "provider", p.Name(), "err", err)
		errs = multierror.Append(errs, err)
		if sitetrans.IsRetryable(err) {
			retryable = true
		}
	}

	return nil, &sitetrans.ProviderError{
		Message:   "all providers failed (" + f.Name() + ")",
		Cause:     errs.ErrorOrNil(),
		Retryable: retryable,
	}
}

// Name lists the chain, e.g. "deepl>openai>libretranslate".
func (f *Fallback) Name() string {
	return strings.Join(lo.Map(f.providers, func(p Provider, _ int) string {
		return p.Name()
	}), ">")
}

// Providers returns the chain in order.
func (f *Fallback) Providers() []Provider {
	return f.providers
}

var _ Provider = (*Fallback)(nil)
