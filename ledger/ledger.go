// Package ledger implements translation_db.json, the persistent record of
// which (source page, language) pairs have been translated and from which
// version of the source.
//
// The file format is read by other tooling, so field names and the
// (source_path, target_lang) identity are stable across versions:
//
//	{
//	  "version": 1,
//	  "records": [
//	    {
//	      "source_path": "about.html",
//	      "target_lang": "fr",
//	      "content_hash": "<sha256 of about.html>",
//	      "translated_path": "about-fr.html",
//	      "status": "done",
//	      "provider": "deepl",
//	      "run_id": "…",
//	      "created_at": "2026-01-02T15:04:05Z",
//	      "updated_at": "2026-01-02T15:04:05Z"
//	    }
//	  ]
//	}
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/google/renameio/v2"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans/ledger")

// FileName is the default ledger file name, stored in the site root.
const FileName = "translation_db.json"

// SchemaVersion is the ledger format version written by this package.
const SchemaVersion = 1

// Status is the state of a ledger record.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is one (source, language) entry.
type Record struct {
	SourcePath     string    `json:"source_path"`
	TargetLang     string    `json:"target_lang"`
	ContentHash    string    `json:"content_hash"`
	TranslatedPath string    `json:"translated_path"`
	Status         Status    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Provider       string    `json:"provider,omitempty"`
	RunID          string    `json:"run_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Key identifies a record.
type Key struct {
	Source string
	Lang   string
}

// Key returns the record's identity.
func (r Record) Key() Key {
	return Key{Source: r.SourcePath, Lang: r.TargetLang}
}

// Stale reports whether a done record no longer matches the source hash.
func (r Record) Stale(hash string) bool {
	return r.Status == StatusDone && r.ContentHash != hash
}

type document struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

// Ledger is the in-memory ledger. All methods are safe for concurrent use;
// mutations and saves are serialized.
type Ledger struct {
	mu        sync.Mutex
	path      string
	records   []Record
	index     map[Key]int
	dirty     bool
	mutations int
	now       func() time.Time
}

// New returns an empty ledger that will be saved to path.
func New(path string) *Ledger {
	return &Ledger{
		path:  path,
		index: make(map[Key]int),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Open loads the ledger at path. A missing file yields an empty ledger; an
// unreadable or malformed file is a ConfigError so that a broken ledger is
// never silently replaced by an empty one.
func Open(path string) (*Ledger, error) {
	l := New(path)

	data, err := os.ReadFile(path) // #nosec G304 - path is user configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugw("no ledger yet", "path", path)
			return l, nil
		}
		return nil, &sitetrans.ConfigError{Message: "reading ledger " + path, Cause: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &sitetrans.ConfigError{Message: "parsing ledger " + path, Cause: err}
	}
	if doc.Version > SchemaVersion {
		return nil, &sitetrans.ConfigError{
			Message: fmt.Sprintf("ledger %s has version %d, newest supported is %d", path, doc.Version, SchemaVersion),
		}
	}

	for _, r := range doc.Records {
		if r.SourcePath == "" || r.TargetLang == "" {
			return nil, &sitetrans.ConfigError{Message: "ledger " + path + " has a record without source_path or target_lang"}
		}
		r.SourcePath = normalize(r.SourcePath)
		if i, dup := l.index[r.Key()]; dup {
			log.Warnw("duplicate ledger record, keeping the later one", "source", r.SourcePath, "lang", r.TargetLang)
			l.records[i] = r
			l.dirty = true
			continue
		}
		l.index[r.Key()] = len(l.records)
		l.records = append(l.records, r)
	}

	log.Debugw("ledger loaded", "path", path, "records", len(l.records))
	return l, nil
}

// Path returns the file the ledger is saved to.
func (l *Ledger) Path() string {
	return l.path
}

// NeedsTranslation decides whether (source, lang) must be translated: always
// when forced, otherwise when there is no record, the record is not done,
// or the stored hash differs from hash.
func (l *Ledger) NeedsTranslation(source, lang, hash string, force bool) bool {
	if force {
		return true
	}
	r, ok := l.Lookup(source, lang)
	if !ok {
		return true
	}
	if r.Status != StatusDone {
		return true
	}
	return r.ContentHash != hash
}

// Lookup returns the record for (source, lang).
func (l *Ledger) Lookup(source, lang string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[Key{Source: normalize(source), Lang: lang}]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// Records returns a copy of all records in insertion order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Upsert inserts r or replaces the record with the same key in place. The
// original CreatedAt is kept and UpdatedAt is set to now.
func (l *Ledger) Upsert(r Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upsertLocked(r)
}

func (l *Ledger) upsertLocked(r Record) Record {
	r.SourcePath = normalize(r.SourcePath)
	r.TranslatedPath = normalize(r.TranslatedPath)
	now := l.now()
	r.UpdatedAt = now

	if i, ok := l.index[r.Key()]; ok {
		r.CreatedAt = l.records[i].CreatedAt
		l.records[i] = r
	} else {
		r.CreatedAt = now
		l.index[r.Key()] = len(l.records)
		l.records = append(l.records, r)
	}

	l.dirty = true
	l.mutations++
	return r
}

// MarkPending records that work on (source, lang) has started.
func (l *Ledger) MarkPending(source, lang, hash, runID string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.existingLocked(source, lang)
	r.ContentHash = hash
	r.Status = StatusPending
	r.Reason = ""
	r.RunID = runID
	return l.upsertLocked(r)
}

// MarkDone records a successful translation of the source version hash.
func (l *Ledger) MarkDone(source, lang, hash, translatedPath, provider, runID string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.existingLocked(source, lang)
	r.ContentHash = hash
	r.TranslatedPath = translatedPath
	r.Status = StatusDone
	r.Reason = ""
	r.Provider = provider
	r.RunID = runID
	return l.upsertLocked(r)
}

// MarkFailed records a failed attempt. The next run retries it without
// needing force.
func (l *Ledger) MarkFailed(source, lang, hash, reason, provider, runID string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.existingLocked(source, lang)
	r.ContentHash = hash
	r.Status = StatusFailed
	r.Reason = reason
	r.Provider = provider
	r.RunID = runID
	return l.upsertLocked(r)
}

func (l *Ledger) existingLocked(source, lang string) Record {
	key := Key{Source: normalize(source), Lang: lang}
	if i, ok := l.index[key]; ok {
		return l.records[i]
	}
	return Record{SourcePath: key.Source, TargetLang: lang}
}

// Prune removes records whose source no longer exists and returns them.
func (l *Ledger) Prune(exists func(source string) bool) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var kept, removed []Record
	for _, r := range l.records {
		if exists(r.SourcePath) {
			kept = append(kept, r)
		} else {
			removed = append(removed, r)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	l.records = kept
	l.index = make(map[Key]int, len(kept))
	for i, r := range kept {
		l.index[r.Key()] = i
	}
	l.dirty = true
	l.mutations += len(removed)
	return removed
}

// Mutations returns the number of record changes since the ledger was opened.
func (l *Ledger) Mutations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mutations
}

// Save writes the ledger atomically if anything changed since the last save.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}

	doc := document{Version: SchemaVersion, Records: l.records}
	if doc.Records == nil {
		doc.Records = []Record{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(l.path, data, 0o644); err != nil {
		return &sitetrans.IOError{Op: "write", Path: l.path, Err: err}
	}
	l.dirty = false
	log.Debugw("ledger saved", "path", l.path, "records", len(l.records))
	return nil
}

// normalize converts a path to the slash-separated, cleaned form stored in
// the ledger.
func normalize(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(p))
}
