package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/go-resty/resty/v2"
)

// DeepL API endpoints. Keys ending in ":fx" belong to the free plan.
const (
	DeepLFreeURL = "https://api-free.deepl.com"
	DeepLProURL  = "https://api.deepl.com"
)

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	APIKey  string        // DeepL authentication key
	BaseURL string        // Override the API host (default: chosen from the key)
	Timeout time.Duration // Per-request timeout (default: DefaultHTTPTimeout)
}

// DeepLProvider translates with the DeepL REST API.
type DeepLProvider struct {
	apiKey  string
	baseURL string
	http    *resty.Client
}

// NewDeepLProvider creates a new DeepL provider.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	base := cfg.BaseURL
	if base == "" {
		base = DeepLProURL
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			base = DeepLFreeURL
		}
	}
	return &DeepLProvider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		http:    newHTTPClient(cfg.Timeout),
	}
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate sends all texts in a single /v2/translate call.
func (p *DeepLProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	form := url.Values{}
	for _, text := range req.Texts {
		form.Add("text", text)
	}
	form.Set("target_lang", sitetrans.DeepLTargetCode(req.TargetLang))
	if req.SourceLang != "" {
		form.Set("source_lang", strings.ToUpper(sitetrans.BaseLang(req.SourceLang)))
	}
	if req.Context != "" {
		form.Set("context", req.Context)
	}
	switch req.Style {
	case sitetrans.StyleFormal:
		form.Set("formality", "prefer_more")
	case sitetrans.StyleCasual:
		form.Set("formality", "prefer_less")
	}

	var resp deeplResponse
	r, err := p.http.R().SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+p.apiKey).
		SetFormDataFromValues(form).
		SetResult(&resp).
		Post(p.baseURL + "/v2/translate")
	if err != nil {
		return nil, transportError("DeepL", err)
	}
	if r.IsError() {
		return nil, statusError("DeepL", r)
	}

	if len(resp.Translations) != len(req.Texts) {
		return nil, &sitetrans.CountMismatchError{Expected: len(req.Texts), Got: len(resp.Translations)}
	}
	out := make([]string, len(resp.Translations))
	for i, t := range resp.Translations {
		out[i] = t.Text
	}
	return out, nil
}

// Name implements Provider.
func (p *DeepLProvider) Name() string { return "deepl" }

var _ Provider = (*DeepLProvider)(nil)
