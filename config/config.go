// Package config — credentials from the environment and the optional
// .sitetrans.yaml project file.
//
// Settings are resolved in three layers: built-in defaults, then the
// project file, then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/cache"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/provider"
	"github.com/ZaguanLabs/sitetrans/runner"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// Env holds secrets and endpoints read from the environment.
type Env struct {
	OpenAIKey     string   `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string   `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel   string   `envconfig:"OPENAI_MODEL"`
	DeepLKey      string   `envconfig:"DEEPL_API_KEY"`
	DeepLURL      string   `envconfig:"DEEPL_API_URL"`
	LibreServers  []string `envconfig:"LIBRETRANSLATE_URL"`
	LibreKey      string   `envconfig:"LIBRETRANSLATE_API_KEY"`
	RedisURL      string   `envconfig:"REDIS_URL"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, &sitetrans.ConfigError{Message: "reading environment", Cause: err}
	}
	env.LibreServers = lo.Compact(lo.Map(env.LibreServers, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	return env, nil
}

// Credentials converts the environment into provider credentials. model
// overrides OPENAI_MODEL when set.
func (e Env) Credentials(model string) provider.Credentials {
	if model == "" {
		model = e.OpenAIModel
	}
	return provider.Credentials{
		DeepLKey:      e.DeepLKey,
		DeepLURL:      e.DeepLURL,
		OpenAIKey:     e.OpenAIKey,
		OpenAIBaseURL: e.OpenAIBaseURL,
		OpenAIModel:   model,
		LibreServers:  e.LibreServers,
		LibreKey:      e.LibreKey,
	}
}

// ---------------------------------------------------------------------------
// Project file
// ---------------------------------------------------------------------------

// FileName is the project file looked up in the site root.
const FileName = ".sitetrans.yaml"

// File is the .sitetrans.yaml structure. Pointer fields distinguish "unset"
// from an explicit false or zero.
type File struct {
	Include     []string      `yaml:"include,omitempty"`
	Exclude     []string      `yaml:"exclude,omitempty"`
	Recursive   *bool         `yaml:"recursive,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Ledger      string        `yaml:"ledger,omitempty"`
	Memory      string        `yaml:"memory,omitempty"`
	CacheTTL    time.Duration `yaml:"cache_ttl,omitempty"`

	Provider   string `yaml:"provider,omitempty"`
	Refine     *bool  `yaml:"refine,omitempty"`
	Model      string `yaml:"model,omitempty"`
	MaxRetries *int   `yaml:"max_retries,omitempty"`
	RateLimit  int    `yaml:"rate_limit,omitempty"` // requests per minute

	SourceLang    string            `yaml:"source_lang,omitempty"`
	Context       string            `yaml:"context,omitempty"`
	Style         string            `yaml:"style,omitempty"`
	Glossary      map[string]string `yaml:"glossary,omitempty"`
	ExcludedTerms []string          `yaml:"excluded_terms,omitempty"`
	Batch         Batch             `yaml:"batch,omitempty"`

	SetLang      *bool  `yaml:"set_lang,omitempty"`
	RewriteLinks *bool  `yaml:"rewrite_links,omitempty"`
	Inject       Inject `yaml:"inject,omitempty"`
}

// Batch bounds provider requests.
type Batch struct {
	MaxTexts int `yaml:"max_texts,omitempty"`
	MaxChars int `yaml:"max_chars,omitempty"`
}

// Inject lists snippets appended to translated pages. Each entry is either
// inline markup or the path of a file (relative to the site root).
type Inject struct {
	Head []string `yaml:"head,omitempty"`
	Body []string `yaml:"body,omitempty"`
}

// LoadFile reads a project file. A missing file yields an empty File.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is user configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, &sitetrans.ConfigError{Message: "reading " + path, Cause: err}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &sitetrans.ConfigError{Message: "parsing " + path, Cause: err}
	}
	return &f, nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings is the fully resolved configuration of a run.
type Settings struct {
	Root        string
	Lang        string
	Force       bool
	DryRun      bool
	FailOnEmpty bool
	Include     []string
	Exclude     []string
	Recursive   bool
	Concurrency int
	Timeout     time.Duration
	Ledger      string
	Memory      string
	CacheTTL    time.Duration

	Provider   string
	Refine     bool
	Model      string
	MaxRetries int
	RateLimit  int

	SourceLang    string
	Context       string
	Style         sitetrans.TranslationStyle
	Glossary      map[string]string
	ExcludedTerms []string
	Batch         sitetrans.BatchLimits
	Localize      sitetrans.LocalizeOptions

	Env Env
}

// Defaults returns the built-in settings for root.
func Defaults(root string) Settings {
	return Settings{
		Root:        root,
		Concurrency: runner.DefaultConcurrency,
		Ledger:      ledger.FileName,
		MaxRetries:  sitetrans.DefaultRetryConfig().MaxRetries,
		SourceLang:  "en",
		Style:       sitetrans.StyleNeutral,
		Batch: sitetrans.BatchLimits{
			MaxTexts: sitetrans.DefaultMaxBatchTexts,
			MaxChars: sitetrans.DefaultMaxBatchChars,
		},
		Localize: sitetrans.DefaultLocalizeOptions(),
	}
}

// Apply overlays the project file on s. Snippet files named in Inject are
// read relative to s.Root.
func (f *File) Apply(s *Settings) error {
	if len(f.Include) > 0 {
		s.Include = f.Include
	}
	if len(f.Exclude) > 0 {
		s.Exclude = f.Exclude
	}
	if f.Recursive != nil {
		s.Recursive = *f.Recursive
	}
	if f.Concurrency > 0 {
		s.Concurrency = f.Concurrency
	}
	if f.Timeout > 0 {
		s.Timeout = f.Timeout
	}
	if f.Ledger != "" {
		s.Ledger = f.Ledger
	}
	if f.Memory != "" {
		s.Memory = f.Memory
	}
	if f.CacheTTL > 0 {
		s.CacheTTL = f.CacheTTL
	}
	if f.Provider != "" {
		s.Provider = f.Provider
	}
	if f.Refine != nil {
		s.Refine = *f.Refine
	}
	if f.Model != "" {
		s.Model = f.Model
	}
	if f.MaxRetries != nil {
		s.MaxRetries = *f.MaxRetries
	}
	if f.RateLimit > 0 {
		s.RateLimit = f.RateLimit
	}
	if f.SourceLang != "" {
		s.SourceLang = f.SourceLang
	}
	if f.Context != "" {
		s.Context = f.Context
	}
	if f.Style != "" {
		style, ok := sitetrans.ParseStyle(f.Style)
		if !ok {
			return &sitetrans.ConfigError{Message: fmt.Sprintf("unknown style %q", f.Style)}
		}
		s.Style = style
	}
	if len(f.Glossary) > 0 {
		s.Glossary = f.Glossary
	}
	if len(f.ExcludedTerms) > 0 {
		s.ExcludedTerms = f.ExcludedTerms
	}
	if f.Batch.MaxTexts > 0 {
		s.Batch.MaxTexts = f.Batch.MaxTexts
	}
	if f.Batch.MaxChars > 0 {
		s.Batch.MaxChars = f.Batch.MaxChars
	}
	if f.SetLang != nil {
		s.Localize.SetLang = *f.SetLang
	}
	if f.RewriteLinks != nil {
		s.Localize.RewriteLinks = *f.RewriteLinks
	}

	var err error
	if s.Localize.HeadInject, err = snippets(s.Root, f.Inject.Head); err != nil {
		return err
	}
	if s.Localize.BodyInject, err = snippets(s.Root, f.Inject.Body); err != nil {
		return err
	}
	return nil
}

// snippets resolves inject entries. Entries that look like markup are used
// as is; anything else is a file path.
func snippets(root string, entries []string) ([]string, error) {
	var out []string
	for _, entry := range entries {
		if strings.HasPrefix(strings.TrimSpace(entry), "<") {
			out = append(out, entry)
			continue
		}
		p := entry
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		data, err := os.ReadFile(p) // #nosec G304 - path is user configuration
		if err != nil {
			return nil, &sitetrans.ConfigError{Message: "reading inject snippet " + entry, Cause: err}
		}
		out = append(out, string(data))
	}
	return out, nil
}

// Validate checks the settings a run cannot start without.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Lang) == "" {
		return &sitetrans.ConfigError{Message: "--lang is required"}
	}
	if s.Concurrency <= 0 {
		return &sitetrans.ConfigError{Message: fmt.Sprintf("concurrency must be positive, got %d", s.Concurrency)}
	}
	if s.MaxRetries < 0 {
		return &sitetrans.ConfigError{Message: fmt.Sprintf("max_retries must not be negative, got %d", s.MaxRetries)}
	}
	return nil
}

// LedgerPath returns the ledger location, resolved against Root.
func (s *Settings) LedgerPath() string {
	return s.resolve(s.Ledger)
}

// MemoryPath returns the translation memory export location. It defaults to
// a file next to the ledger.
func (s *Settings) MemoryPath() string {
	if s.Memory != "" {
		return s.resolve(s.Memory)
	}
	return filepath.Join(filepath.Dir(s.LedgerPath()), cache.DefaultMemoryFile)
}

func (s *Settings) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}

// RunnerConfig returns the runner view of the settings.
func (s *Settings) RunnerConfig(providerName string) runner.Config {
	return runner.Config{
		Root:         s.Root,
		Lang:         s.Lang,
		Force:        s.Force,
		Include:      s.Include,
		Exclude:      s.Exclude,
		Recursive:    s.Recursive,
		Concurrency:  s.Concurrency,
		Timeout:      s.Timeout,
		FailOnEmpty:  s.FailOnEmpty,
		DryRun:       s.DryRun,
		ProviderName: providerName,
	}
}

// ChainOptions returns the provider chain options.
func (s *Settings) ChainOptions() provider.ChainOptions {
	retry := sitetrans.DefaultRetryConfig()
	retry.MaxRetries = s.MaxRetries
	return provider.ChainOptions{
		Preferred:   s.Provider,
		Refine:      s.Refine,
		Retry:       retry,
		RateLimit:   sitetrans.RateLimitConfig{RequestsPerMinute: s.RateLimit},
		HTTPTimeout: provider.DefaultHTTPTimeout,
	}
}

// TranslatorOptions returns the translator options for the settings.
func (s *Settings) TranslatorOptions() []sitetrans.TranslatorOption {
	return []sitetrans.TranslatorOption{
		sitetrans.WithSourceLang(s.SourceLang),
		sitetrans.WithContext(s.Context),
		sitetrans.WithStyle(s.Style),
		sitetrans.WithGlossary(s.Glossary),
		sitetrans.WithExcludedTerms(s.ExcludedTerms),
		sitetrans.WithBatchLimits(s.Batch),
		sitetrans.WithLocalization(s.Localize),
	}
}
