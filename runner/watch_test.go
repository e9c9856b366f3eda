package runner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	langs := []string{"fr", "de"}
	assert.True(t, relevant("/site/about.html", langs))
	assert.False(t, relevant("/site/about-fr.html", langs))
	assert.False(t, relevant("/site/translation_db.json", langs))
	assert.False(t, relevant("/site/.about-fr.html123", langs))
	assert.False(t, relevant("/site/style.css", langs))
}

func TestWatch_RerunsOnSourceChange(t *testing.T) {
	s := newSite(t, map[string]string{"a.html": "<p>Hello</p>"})
	l, err := ledger.Open(filepath.Join(s.root, ledger.FileName))
	require.NoError(t, err)

	r := New(Config{Root: s.root, Lang: "fr"}, s.backend, l, writer.New(s.root, l, "watch"))
	reports := make(chan *Report, 8)
	r.OnReport = func(rep *Report, err error) {
		assert.NoError(t, err)
		reports <- rep
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, 50*time.Millisecond) }()

	first := receive(t, reports)
	assert.Equal(t, []string{"a.html"}, first.Translated)

	writePage(t, s.root, "a.html", "<p>Hello there</p>")
	second := receive(t, reports)
	assert.Equal(t, []string{"a.html"}, second.Translated)
	assert.Equal(t, "<p>Bonjour there</p>", s.read(t, "a-fr.html"))

	// Writing the output above must not have scheduled another run.
	select {
	case extra := <-reports:
		require.Failf(t, "unexpected run", "%+v", extra.Translated)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.Fail(t, "Watch did not stop after cancel")
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	l := ledger.New(filepath.Join(t.TempDir(), ledger.FileName))
	r := New(Config{Root: root, Lang: "fr"}, &fakeBackend{}, l, writer.New(root, l, "w"))

	err := r.Watch(context.Background(), time.Millisecond)
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan *Report) *Report {
	t.Helper()
	select {
	case rep := <-ch:
		return rep
	case <-time.After(3 * time.Second):
		require.Fail(t, "timed out waiting for a run")
		return nil
	}
}
