package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-multierror"
)

// LibreTranslateConfig holds configuration for the LibreTranslate provider.
type LibreTranslateConfig struct {
	Servers []string      // Server base URLs, tried in order
	APIKey  string        // Optional API key
	Timeout time.Duration // Per-request timeout (default: DefaultHTTPTimeout)
}

// LibreTranslateProvider translates with one of several LibreTranslate
// servers, moving to the next server when one fails.
type LibreTranslateProvider struct {
	servers []string
	apiKey  string
	http    *resty.Client
}

// NewLibreTranslateProvider creates a new LibreTranslate provider.
func NewLibreTranslateProvider(cfg LibreTranslateConfig) *LibreTranslateProvider {
	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		if s = strings.TrimRight(strings.TrimSpace(s), "/"); s != "" {
			servers = append(servers, s)
		}
	}
	return &LibreTranslateProvider{
		servers: servers,
		apiKey:  cfg.APIKey,
		http:    newHTTPClient(cfg.Timeout),
	}
}

type libreRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText []string `json:"translatedText"`
}

// Translate implements Provider.
func (p *LibreTranslateProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}
	if len(p.servers) == 0 {
		return nil, &sitetrans.ProviderError{Message: "no LibreTranslate servers configured"}
	}

	source := sitetrans.BaseLang(req.SourceLang)
	if source == "" {
		source = "auto"
	}
	body := libreRequest{
		Q:      req.Texts,
		Source: source,
		Target: sitetrans.BaseLang(req.TargetLang),
		Format: "text",
		APIKey: p.apiKey,
	}

	var errs *multierror.Error
	retryable := false
	for _, server := range p.servers {
		out, err := p.translateOn(ctx, server, body)
		if err == nil {
			return out, nil
		}
		if isContextErr(err) {
			return nil, transportError("LibreTranslate", err)
		}
		log.Debugw("LibreTranslate server failed", "server", server, "err", err)
		errs = multierror.Append(errs, err)
		if sitetrans.IsRetryable(err) {
			retryable = true
		}
	}

	return nil, &sitetrans.ProviderError{
		Message:   "all LibreTranslate servers failed",
		Cause:     errs.ErrorOrNil(),
		Retryable: retryable,
	}
}

func (p *LibreTranslateProvider) translateOn(ctx context.Context, server string, body libreRequest) ([]string, error) {
	var resp libreResponse
	r, err := p.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(server + "/translate")
	if err != nil {
		if isContextErr(ctx.Err()) {
			return nil, ctx.Err()
		}
		return nil, transportError(server, err)
	}
	if r.IsError() {
		return nil, statusError(server, r)
	}
	if len(resp.TranslatedText) != len(body.Q) {
		return nil, &sitetrans.CountMismatchError{Expected: len(body.Q), Got: len(resp.TranslatedText)}
	}
	return resp.TranslatedText, nil
}

// Name implements Provider.
func (p *LibreTranslateProvider) Name() string { return "libretranslate" }

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

var _ Provider = (*LibreTranslateProvider)(nil)
