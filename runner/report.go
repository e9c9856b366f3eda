package runner

import (
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/hashicorp/go-multierror"
)

// Failure is a page that could not be translated.
type Failure struct {
	Path string
	Kind string
	Err  error
}

// Planned is a page a dry run would translate.
type Planned struct {
	Path   string
	Reason string
}

// Report summarizes a run. Lists are sorted once the run finishes.
type Report struct {
	RunID  string
	Lang   string
	DryRun bool

	Selected    int
	Translated  []string
	Skipped     []string
	Empty       []string
	Failed      []Failure
	Unscheduled []string
	Planned     []Planned
	Warnings    []string

	Nodes        int
	Cached       int
	Fresh        int
	Batches      int
	BytesWritten int64
	Duration     time.Duration

	mu sync.Mutex
}

func newReport(runID, lang string, dryRun bool) *Report {
	return &Report{RunID: runID, Lang: lang, DryRun: dryRun}
}

func (r *Report) done(path string, res *sitetrans.ProcessedContent, bytes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Translated = append(r.Translated, path)
	r.Nodes += res.TotalNodes
	r.Cached += res.CachedCount
	r.Fresh += res.TranslatedCount
	r.Batches += res.Batches
	r.BytesWritten += int64(bytes)
}

func (r *Report) fail(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, Failure{Path: path, Kind: sitetrans.ErrorKind(err), Err: err})
}

func (r *Report) skip(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, path)
}

func (r *Report) empty(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Empty = append(r.Empty, path)
	r.Warnings = append(r.Warnings, path+" is empty, skipped")
}

func (r *Report) unschedule(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Unscheduled = append(r.Unscheduled, path)
}

func (r *Report) plan(path, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Planned = append(r.Planned, Planned{Path: path, Reason: reason})
}

func (r *Report) finish(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Strings(r.Translated)
	sort.Strings(r.Skipped)
	sort.Strings(r.Empty)
	sort.Strings(r.Unscheduled)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Path < r.Failed[j].Path })
	sort.Slice(r.Planned, func(i, j int) bool { return r.Planned[i].Path < r.Planned[j].Path })
	r.Duration = time.Since(start)
}

// Err aggregates per-page failures, or returns nil when every page succeeded.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for _, f := range r.Failed {
		result = multierror.Append(result, &pageError{path: f.Path, err: f.Err})
	}
	return result.ErrorOrNil()
}

// Changed reports whether the run wrote or recorded anything.
func (r *Report) Changed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Translated) > 0 || len(r.Failed) > 0
}

type pageError struct {
	path string
	err  error
}

func (e *pageError) Error() string { return e.path + ": " + e.err.Error() }
func (e *pageError) Unwrap() error { return e.err }
