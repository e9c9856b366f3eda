// Package runner drives one translation run: select pages, consult the
// ledger, translate what is stale with bounded parallelism and record the
// results.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/selector"
	"github.com/ZaguanLabs/sitetrans/writer"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("sitetrans/runner")

// DefaultConcurrency is the number of pages translated at once.
const DefaultConcurrency = 4

// Config controls a run.
type Config struct {
	Root      string
	Lang      string
	Force     bool
	Include   []string
	Exclude   []string
	Recursive bool

	// Concurrency bounds the pages in flight. Defaults to DefaultConcurrency.
	Concurrency int

	// Timeout stops scheduling new pages once elapsed. Pages already in
	// flight are allowed to finish. Zero means no timeout.
	Timeout time.Duration

	// FailOnEmpty turns an empty selection into a ConfigError.
	FailOnEmpty bool

	// DryRun reports what would be translated without calling the backend
	// or touching the ledger.
	DryRun bool

	// ProviderName is recorded when the backend does not report one.
	ProviderName string
}

// Runner executes runs against one site.
type Runner struct {
	cfg     Config
	backend sitetrans.MarkupTranslator
	ledger  *ledger.Ledger
	writer  *writer.Writer

	// OnReport, when set, receives the outcome of every run started by Watch.
	OnReport func(*Report, error)
}

// New creates a Runner.
func New(cfg Config, backend sitetrans.MarkupTranslator, l *ledger.Ledger, w *writer.Writer) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Runner{cfg: cfg, backend: backend, ledger: l, writer: w}
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

type job struct {
	path   string
	data   []byte
	hash   string
	reason string
}

// Run performs one pass over the site. Per-page failures are recorded in the
// ledger and the report; the returned error is reserved for problems that
// prevent the run itself.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	if strings.TrimSpace(r.cfg.Lang) == "" {
		return nil, &sitetrans.ConfigError{Message: "target language is required"}
	}

	sel, err := selector.Select(selector.Options{
		Root:       r.cfg.Root,
		TargetLang: r.cfg.Lang,
		Include:    r.cfg.Include,
		Exclude:    r.cfg.Exclude,
		Recursive:  r.cfg.Recursive,
	})
	if err != nil {
		return nil, err
	}

	report := newReport(r.writer.RunID(), r.cfg.Lang, r.cfg.DryRun)
	report.Selected = len(sel.Files)
	report.Warnings = append(report.Warnings, sel.Warnings...)

	if sel.Empty() {
		report.finish(start)
		if r.cfg.FailOnEmpty {
			return report, &sitetrans.ConfigError{Message: "no eligible HTML files under " + r.cfg.Root}
		}
		return report, nil
	}

	jobs := r.plan(sel.Files, report)
	log.Infow("run planned",
		"run", report.RunID,
		"lang", r.cfg.Lang,
		"selected", len(sel.Files),
		"pending", len(jobs),
		"force", r.cfg.Force)

	if r.cfg.DryRun {
		for _, j := range jobs {
			report.plan(j.path, j.reason)
		}
		report.finish(start)
		return report, nil
	}

	schedCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		schedCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for _, j := range jobs {
		j := j
		if schedCtx.Err() != nil {
			report.unschedule(j.path)
			continue
		}
		g.Go(func() error {
			// The slot may have opened after the deadline.
			if schedCtx.Err() != nil {
				report.unschedule(j.path)
				return nil
			}
			r.process(ctx, j, report)
			return nil
		})
	}
	_ = g.Wait()

	if n := len(report.Unscheduled); n > 0 {
		log.Warnw("run stopped before all pages were scheduled", "unscheduled", n, "cause", context.Cause(schedCtx))
	}

	report.finish(start)
	return report, nil
}

// plan reads and hashes every selected page and keeps those needing work.
func (r *Runner) plan(files []string, report *Report) []job {
	var jobs []job
	for _, rel := range files {
		full := filepath.Join(r.cfg.Root, filepath.FromSlash(rel))
		data, err := os.ReadFile(full) // #nosec G304 - selected from the site root
		if err != nil {
			err = &sitetrans.IOError{Op: "read", Path: full, Err: err}
			if !r.cfg.DryRun {
				if ferr := r.writer.Fail(rel, r.cfg.Lang, "", err); ferr != nil {
					err = multierror.Append(err, ferr)
				}
			}
			report.fail(rel, err)
			continue
		}

		if strings.TrimSpace(string(data)) == "" {
			report.empty(rel)
			continue
		}

		hash := sitetrans.HashContent(data)
		reason := r.needs(rel, hash)
		if reason == "" {
			report.skip(rel)
			continue
		}
		jobs = append(jobs, job{path: rel, data: data, hash: hash, reason: reason})
	}
	return jobs
}

// needs returns why rel must be translated, or "" when it is up to date.
func (r *Runner) needs(rel, hash string) string {
	rec, ok := r.ledger.Lookup(rel, r.cfg.Lang)
	switch {
	case r.cfg.Force:
		return "forced"
	case !ok:
		return "new"
	case rec.Status != ledger.StatusDone:
		return string(rec.Status)
	case rec.ContentHash != hash:
		return "changed"
	}

	out := rec.TranslatedPath
	if out == "" {
		out = writer.OutputPath(rel, r.cfg.Lang)
	}
	if !selector.Exists(r.cfg.Root, out) {
		return "output missing"
	}
	return ""
}

func (r *Runner) process(ctx context.Context, j job, report *Report) {
	log.Debugw("translating", "source", j.path, "lang", r.cfg.Lang, "reason", j.reason)
	r.ledger.MarkPending(j.path, r.cfg.Lang, j.hash, r.writer.RunID())

	res, err := r.backend.TranslateMarkup(ctx, string(j.data), r.cfg.Lang)
	if err != nil {
		r.fail(j, err, report)
		return
	}

	provider := res.Provider
	if provider == "" {
		provider = r.cfg.ProviderName
	}
	out, err := r.writer.Write(ctx, writer.Result{
		Source:     j.path,
		Lang:       r.cfg.Lang,
		SourceHash: j.hash,
		Content:    res.Content,
		Provider:   provider,
	})
	if err != nil {
		r.fail(j, err, report)
		return
	}

	report.done(j.path, res, out.Bytes)
	log.Infow("translated", "source", j.path, "output", out.Record.TranslatedPath,
		"nodes", res.TotalNodes, "cached", res.CachedCount, "provider", provider)
}

func (r *Runner) fail(j job, err error, report *Report) {
	if ferr := r.writer.Fail(j.path, r.cfg.Lang, j.hash, err); ferr != nil {
		err = multierror.Append(err, ferr)
	}
	report.fail(j.path, err)
}
