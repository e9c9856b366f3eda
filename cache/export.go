package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/renameio/v2"
)

// DefaultMemoryFile is the translation memory file written next to the ledger.
const DefaultMemoryFile = "translation_memory.json"

// ExportFormat is the on-disk translation memory document.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is a single cache entry.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter writes a cache's contents as JSON.
type Exporter struct {
	cache TranslationCache
	now   func() time.Time
}

// NewExporter creates a new cache exporter.
func NewExporter(cache TranslationCache) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes the cache contents to w, sorted by key.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) (int, error) {
	entries, err := e.entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting cache entries: %w", err)
	}

	doc := ExportFormat{
		Version:    "1.0",
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}
	return len(entries), nil
}

// ExportToFile replaces path atomically with the cache contents.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	var buf bytes.Buffer
	n, err := e.Export(ctx, &buf, metadata)
	if err != nil {
		return 0, err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return n, nil
}

func (e *Exporter) entries(ctx context.Context) ([]ExportEntry, error) {
	var data map[string]string
	switch c := e.cache.(type) {
	case *InMemoryCache:
		data = c.Entries()
	case *RedisCache:
		var err error
		if data, err = c.Entries(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cache type %T does not support export", e.cache)
	}

	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, ExportEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Importer loads exported entries into a cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads an export document from r into the cache.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var doc ExportFormat
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  doc.Version,
		Metadata: doc.Metadata,
	}
	for _, entry := range doc.Entries {
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports path. A missing file wraps fs.ErrNotExist.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is user configuration
	if err != nil {
		return nil, fmt.Errorf("opening translation memory: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
