package writer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src, lang, want string
	}{
		{"about.html", "fr", "about-fr.html"},
		{"blog/post.html", "de", "blog/post-de.html"},
		{"index.HTML", "pt_BR", "index-pt_BR.html"},
		{"v1.2/page.html", "es", "v1.2/page-es.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.src, tt.lang), tt.src)
	}
}

func newWriter(t *testing.T) (*Writer, *ledger.Ledger, string) {
	t.Helper()
	root := t.TempDir()
	l := ledger.New(filepath.Join(root, ledger.FileName))
	return New(root, l, "run-1"), l, root
}

func TestWrite(t *testing.T) {
	w, l, root := newWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "blog"), 0o755))

	out, err := w.Write(context.Background(), Result{
		Source:     "blog/post.html",
		Lang:       "fr",
		SourceHash: "abc",
		Content:    "<p>Bonjour</p>",
		Provider:   "mock",
	})
	require.NoError(t, err)
	assert.Equal(t, 14, out.Bytes)

	data, err := os.ReadFile(filepath.Join(root, "blog", "post-fr.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>Bonjour</p>", string(data))

	rec, ok := l.Lookup("blog/post.html", "fr")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusDone, rec.Status)
	assert.Equal(t, "abc", rec.ContentHash)
	assert.Equal(t, "blog/post-fr.html", rec.TranslatedPath)
	assert.Equal(t, "mock", rec.Provider)
	assert.Equal(t, "run-1", rec.RunID)

	reopened, err := ledger.Open(l.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len(), "ledger saved after each write")
}

func TestWrite_FileErrorLeavesLedgerUntouched(t *testing.T) {
	w, l, _ := newWriter(t)

	_, err := w.Write(context.Background(), Result{Source: "missing-dir/page.html", Lang: "fr", SourceHash: "h", Content: "x"})
	require.Error(t, err)

	var ioErr *sitetrans.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, 0, l.Len())
}

func TestWrite_CancelledContext(t *testing.T) {
	w, l, root := newWriter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Write(ctx, Result{Source: "a.html", Lang: "fr", SourceHash: "h", Content: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(root, "a-fr.html"))
	assert.Equal(t, 0, l.Len())
}

func TestFail(t *testing.T) {
	w, l, _ := newWriter(t)

	cause := &sitetrans.ProviderError{Message: "quota exceeded"}
	require.NoError(t, w.Fail("a.html", "fr", "h", cause))

	rec, ok := l.Lookup("a.html", "fr")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusFailed, rec.Status)
	assert.Contains(t, rec.Reason, "provider: ")
	assert.Contains(t, rec.Reason, "quota exceeded")
	assert.True(t, l.NeedsTranslation("a.html", "fr", "h", false))
}

func TestReason(t *testing.T) {
	assert.Empty(t, Reason(nil))
	assert.Equal(t, "timeout: context deadline exceeded", Reason(context.DeadlineExceeded))
}
