// Package writer persists translated pages next to their sources and records
// the outcome in the ledger.
package writer

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/google/renameio/v2"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans/writer")

// OutputPath returns the translation path of src: about.html becomes
// about-fr.html in the same directory. Paths are slash-separated.
func OutputPath(src, lang string) string {
	src = filepath.ToSlash(src)
	dir, base := path.Split(src)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return dir + stem + "-" + lang + ".html"
}

// Result is a translated page ready to be written.
type Result struct {
	Source     string // root-relative source path
	Lang       string
	SourceHash string // hash of the source bytes the translation was made from
	Content    string
	Provider   string
}

// Outcome describes a completed write.
type Outcome struct {
	Record ledger.Record
	Bytes  int
}

// Writer writes translations under a site root.
type Writer struct {
	root   string
	ledger *ledger.Ledger
	runID  string
}

// New returns a Writer for root that records into l under runID.
func New(root string, l *ledger.Ledger, runID string) *Writer {
	return &Writer{root: root, ledger: l, runID: runID}
}

// RunID returns the identifier stamped on every record this writer touches.
func (w *Writer) RunID() string {
	return w.runID
}

// Root returns the site root.
func (w *Writer) Root() string {
	return w.root
}

// Write stores the translation and marks the ledger record done. The file
// is written before the ledger so that a crash leaves at worst an output
// without a record, which the next run simply overwrites.
func (w *Writer) Write(ctx context.Context, res Result) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := OutputPath(res.Source, res.Lang)
	full := filepath.Join(w.root, filepath.FromSlash(out))
	data := []byte(res.Content)

	if err := renameio.WriteFile(full, data, 0o644); err != nil {
		return nil, &sitetrans.IOError{Op: "write", Path: full, Err: err}
	}

	rec := w.ledger.MarkDone(res.Source, res.Lang, res.SourceHash, out, res.Provider, w.runID)
	if err := w.ledger.Save(); err != nil {
		return nil, fmt.Errorf("recording %s: %w", res.Source, err)
	}

	log.Debugw("wrote translation", "source", res.Source, "output", out, "bytes", len(data))
	return &Outcome{Record: rec, Bytes: len(data)}, nil
}

// Fail records a failed attempt for (src, lang) and saves the ledger.
func (w *Writer) Fail(src, lang, hash string, cause error) error {
	reason := Reason(cause)
	w.ledger.MarkFailed(src, lang, hash, reason, "", w.runID)
	if err := w.ledger.Save(); err != nil {
		return fmt.Errorf("recording failure of %s: %w", src, err)
	}

	log.Warnw("translation failed", "source", src, "lang", lang, "reason", reason)
	return nil
}

// Reason formats err as "<kind>: <message>" for the ledger.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return sitetrans.ErrorKind(err) + ": " + err.Error()
}
