// Package selector enumerates the HTML pages of a site that are eligible for
// translation.
package selector

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZaguanLabs/sitetrans"
	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"
)

var log = logging.Logger("sitetrans/selector")

// DefaultExclude lists the site fragments that are never translated on
// their own. They are injected into other pages.
var DefaultExclude = []string{"head.html", "body.html", "template.html", "injection.html"}

// Options controls Select.
type Options struct {
	Root       string
	TargetLang string

	// Include narrows the selection to matching files. Entries match the
	// base name or the root-relative path and may be path.Match patterns.
	Include []string

	// Exclude is added to DefaultExclude.
	Exclude []string

	// Recursive descends into subdirectories. Hidden directories and
	// node_modules are skipped.
	Recursive bool

	// KnownLangs are the suffixes that mark a file as a translation.
	// Defaults to sitetrans.KnownLanguageCodes.
	KnownLangs []string
}

// Selection is the result of Select.
type Selection struct {
	// Files are slash-separated paths relative to Root, sorted.
	Files []string

	// UnmatchedIncludes are include entries that matched no file.
	UnmatchedIncludes []string

	// Warnings are human-readable notes about the selection.
	Warnings []string
}

// Empty reports whether no file was selected.
func (s *Selection) Empty() bool {
	return len(s.Files) == 0
}

// Select lists eligible pages under opts.Root.
func Select(opts Options) (*Selection, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, &sitetrans.ConfigError{Message: "site root " + opts.Root, Cause: err}
	}
	if !info.IsDir() {
		return nil, &sitetrans.ConfigError{Message: "site root " + opts.Root + " is not a directory"}
	}

	m := newMatcher(opts)
	includeHits := make(map[string]bool, len(opts.Include))
	var files []string

	err = filepath.WalkDir(opts.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == opts.Root {
				return nil
			}
			if !opts.Recursive || skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(opts.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		ok, hit := m.eligible(rel)
		if hit != "" {
			includeHits[hit] = true
		}
		if ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, &sitetrans.IOError{Op: "walk", Path: opts.Root, Err: err}
	}

	sort.Strings(files)
	sel := &Selection{Files: files}

	for _, inc := range opts.Include {
		if !includeHits[inc] {
			sel.UnmatchedIncludes = append(sel.UnmatchedIncludes, inc)
			sel.Warnings = append(sel.Warnings, "include entry "+inc+" matched no eligible file")
		}
	}
	if sel.Empty() {
		sel.Warnings = append(sel.Warnings, "no eligible HTML files under "+opts.Root)
	}
	for _, w := range sel.Warnings {
		log.Warn(w)
	}

	log.Debugw("selection", "root", opts.Root, "files", len(files), "recursive", opts.Recursive)
	return sel, nil
}

// IsTranslation reports whether name already carries a language suffix from
// langs, such as about-fr.html or about-pt_BR.html.
func IsTranslation(name string, langs []string) bool {
	base := strings.ToLower(path.Base(filepath.ToSlash(name)))
	stem := strings.TrimSuffix(base, ".html")
	if stem == base {
		return false
	}
	for _, lang := range langs {
		if lang != "" && strings.HasSuffix(stem, "-"+strings.ToLower(lang)) {
			return true
		}
	}
	return false
}

// Exists reports whether rel exists under root as a regular file.
func Exists(root, rel string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

type matcher struct {
	include []string
	exclude []string
	langs   []string
}

func newMatcher(opts Options) *matcher {
	langs := opts.KnownLangs
	if len(langs) == 0 {
		langs = sitetrans.KnownLanguageCodes()
	}
	if opts.TargetLang != "" {
		langs = append([]string{opts.TargetLang, sitetrans.NormalizeLocale(opts.TargetLang), sitetrans.ToHTMLLang(opts.TargetLang)}, langs...)
	}
	return &matcher{
		include: opts.Include,
		exclude: lo.Uniq(append(append([]string{}, DefaultExclude...), opts.Exclude...)),
		langs:   lo.Uniq(langs),
	}
}

// eligible decides whether rel is selected. hit is the include entry that
// matched rel, if any, regardless of the outcome.
func (m *matcher) eligible(rel string) (ok bool, hit string) {
	if !strings.EqualFold(path.Ext(rel), ".html") {
		return false, ""
	}
	if IsTranslation(rel, m.langs) {
		return false, ""
	}
	if len(m.include) > 0 {
		hit, _ = lo.Find(m.include, func(entry string) bool { return matches(entry, rel) })
		if hit == "" {
			return false, ""
		}
	}
	if lo.ContainsBy(m.exclude, func(entry string) bool { return matches(entry, rel) }) {
		return false, hit
	}
	return true, hit
}

// matches tests entry against the base name and the relative path.
func matches(entry, rel string) bool {
	entry = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(entry)), "./")
	if entry == "" {
		return false
	}
	if entry == rel || entry == path.Base(rel) {
		return true
	}
	if ok, err := path.Match(entry, rel); err == nil && ok {
		return true
	}
	ok, err := path.Match(entry, path.Base(rel))
	return err == nil && ok
}
