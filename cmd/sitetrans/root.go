package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/cache"
	"github.com/ZaguanLabs/sitetrans/config"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/processor"
	"github.com/ZaguanLabs/sitetrans/provider"
	"github.com/ZaguanLabs/sitetrans/runner"
	"github.com/ZaguanLabs/sitetrans/writer"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
)

// options holds the raw flag values.
type options struct {
	dir         string
	lang        string
	configPath  string
	ledger      string
	memory      string
	include     []string
	exclude     []string
	recursive   bool
	force       bool
	debug       bool
	dryRun      bool
	failOnEmpty bool
	concurrency int
	timeout     time.Duration
	provider    string
	refine      bool
	model       string

	stdout io.Writer
	stderr io.Writer
}

// ---------------------------------------------------------------------------
// Root command (translate)
// ---------------------------------------------------------------------------

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sitetrans --lang <code> [flags]",
		Short: "Translate a static HTML site",
		Long: `sitetrans translates every eligible page of a static site into a target
language and writes it next to the source as <name>-<lang>.html.

A ledger (translation_db.json) records which source version each translation
was made from, so repeated runs only translate new, changed or failed pages.

Providers are picked from the environment, in priority order:
  DEEPL_API_KEY        DeepL (free keys end in :fx)
  OPENAI_API_KEY       OpenAI (OPENAI_BASE_URL, OPENAI_MODEL)
  LIBRETRANSLATE_URL   LibreTranslate servers, comma separated

Exit status is 2 for configuration errors, 1 for other fatal errors and 0
otherwise, including runs where individual pages failed.`,
		Version:       sitetrans.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.debug {
				logging.SetAllLoggers(logging.LevelDebug)
			} else {
				logging.SetAllLoggers(logging.LevelInfo)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, o)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &sitetrans.ConfigError{Message: "invalid arguments", Cause: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&o.dir, "dir", ".", "Site root directory")
	pf.StringVarP(&o.lang, "lang", "l", "", "Target language code (e.g. fr, de, pt_BR)")
	pf.StringVar(&o.configPath, "config", "", "Project file (default: <dir>/"+config.FileName+")")
	pf.StringVar(&o.ledger, "ledger", "", "Ledger file (default: <dir>/"+ledger.FileName+")")
	pf.StringVar(&o.memory, "memory", "", "Translation memory file (default: next to the ledger)")
	pf.StringSliceVar(&o.include, "include", nil, "Only translate these files (comma separated, globs allowed)")
	pf.StringSliceVar(&o.exclude, "exclude", nil, "Never translate these files, in addition to head/body/template/injection.html")
	pf.BoolVarP(&o.recursive, "recursive", "r", false, "Descend into subdirectories")
	pf.BoolVar(&o.debug, "debug", false, "Enable debug logging")

	f := root.Flags()
	f.BoolVarP(&o.force, "force", "f", false, "Retranslate every selected page")
	f.BoolVar(&o.dryRun, "dry-run", false, "Show what would be translated without calling a provider")
	f.BoolVar(&o.failOnEmpty, "fail-on-empty", false, "Exit with a configuration error when no page is selected")
	addRunFlags(root, o)

	root.AddCommand(
		newStatusCmd(o),
		newPruneCmd(o),
		newWatchCmd(o),
		newVersionCmd(o),
	)

	return root
}

// addRunFlags registers the flags shared by translate and watch.
func addRunFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.IntVar(&o.concurrency, "concurrency", runner.DefaultConcurrency, "Pages translated in parallel")
	f.DurationVar(&o.timeout, "timeout", 0, "Stop scheduling new pages after this long (0 = no limit)")
	f.StringVar(&o.provider, "provider", "", "Preferred provider: deepl, openai or libretranslate")
	f.BoolVar(&o.refine, "refine", false, "Refine drafts from DeepL/LibreTranslate with OpenAI")
	f.StringVar(&o.model, "model", "", "OpenAI model (default: OPENAI_MODEL or "+provider.DefaultOpenAIModel+")")
}

// settings resolves defaults, the project file and flags, in that order.
func (o *options) settings(cmd *cobra.Command) (*config.Settings, error) {
	root, err := filepath.Abs(o.dir)
	if err != nil {
		return nil, &sitetrans.ConfigError{Message: "resolving --dir", Cause: err}
	}
	s := config.Defaults(root)

	cfgPath := o.configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.FileName)
	} else if _, err := os.Stat(cfgPath); err != nil {
		return nil, &sitetrans.ConfigError{Message: "project file " + cfgPath, Cause: err}
	}
	file, err := config.LoadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := file.Apply(&s); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	s.Lang = strings.TrimSpace(o.lang)
	s.Force = o.force
	s.DryRun = o.dryRun
	s.FailOnEmpty = o.failOnEmpty
	if changed("include") {
		s.Include = trimAll(o.include)
	}
	if changed("exclude") {
		s.Exclude = append(s.Exclude, trimAll(o.exclude)...)
	}
	if changed("recursive") {
		s.Recursive = o.recursive
	}
	if changed("concurrency") {
		s.Concurrency = o.concurrency
	}
	if changed("timeout") {
		s.Timeout = o.timeout
	}
	if changed("ledger") {
		s.Ledger = o.ledger
	}
	if changed("memory") {
		s.Memory = o.memory
	}
	if changed("provider") {
		s.Provider = o.provider
	}
	if changed("refine") {
		s.Refine = o.refine
	}
	if changed("model") {
		s.Model = o.model
	}

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	s.Env = env
	return &s, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Pipeline wiring
// ---------------------------------------------------------------------------

type pipeline struct {
	settings *config.Settings
	runner   *runner.Runner
	ledger   *ledger.Ledger
	memory   sitetrans.TranslationCache
	runID    string
}

func buildPipeline(s *config.Settings) (*pipeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var chain sitetrans.Provider
	providerName := ""
	if !s.DryRun {
		c, err := provider.NewChain(s.Env.Credentials(s.Model), s.ChainOptions())
		if err != nil {
			return nil, err
		}
		chain = c
		providerName = c.Name()
	}

	l, err := ledger.Open(s.LedgerPath())
	if err != nil {
		return nil, err
	}

	memory := openMemory(s)
	opts := append(s.TranslatorOptions(),
		sitetrans.WithProcessor(processor.NewHTMLProcessor()),
		sitetrans.WithCache(memory),
	)
	if _, remote := memory.(*cache.RedisCache); remote {
		opts = append(opts, sitetrans.WithLookupWorkers(0))
	}
	translator := sitetrans.NewTranslator(s.Lang, chain, opts...)

	runID := uuid.NewString()
	w := writer.New(s.Root, l, runID)
	r := runner.New(s.RunnerConfig(providerName), translator, l, w)

	return &pipeline{settings: s, runner: r, ledger: l, memory: memory, runID: runID}, nil
}

// openMemory returns the Redis memory when REDIS_URL is set and reachable,
// otherwise an in-memory one seeded from the memory file.
func openMemory(s *config.Settings) sitetrans.TranslationCache {
	memory, err := cache.New(cache.Config{RedisURL: s.Env.RedisURL, TTL: s.CacheTTL})
	if err != nil {
		log.Warnw("translation memory unavailable, using a local one", "err", err)
		memory = cache.NewInMemoryCache(s.CacheTTL)
	}

	if _, local := memory.(*cache.InMemoryCache); local {
		res, err := cache.NewImporter(memory).ImportFromFile(s.MemoryPath())
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			log.Warnw("ignoring unreadable translation memory", "path", s.MemoryPath(), "err", err)
		default:
			log.Debugw("translation memory loaded", "path", s.MemoryPath(), "entries", res.Imported)
		}
	}
	return memory
}

// saveMemory exports a local memory after a run that translated something.
func (p *pipeline) saveMemory(ctx context.Context) {
	if _, local := p.memory.(*cache.InMemoryCache); !local {
		return
	}
	n, err := cache.NewExporter(p.memory).ExportToFile(context.WithoutCancel(ctx), p.settings.MemoryPath(), map[string]string{
		"run_id": p.runID,
		"lang":   p.settings.Lang,
	})
	if err != nil {
		log.Warnw("saving translation memory failed", "path", p.settings.MemoryPath(), "err", err)
		return
	}
	log.Debugw("translation memory saved", "path", p.settings.MemoryPath(), "entries", n)
}

func (p *pipeline) close() {
	if rc, ok := p.memory.(*cache.RedisCache); ok {
		_ = rc.Close()
	}
}

func runTranslate(cmd *cobra.Command, o *options) error {
	s, err := o.settings(cmd)
	if err != nil {
		return err
	}
	p, err := buildPipeline(s)
	if err != nil {
		return err
	}
	defer p.close()

	report, err := p.runner.Run(cmd.Context())
	if report != nil {
		printReport(o.stdout, report)
		if report.Changed() {
			p.saveMemory(cmd.Context())
		}
	}
	return err
}
