package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/runner"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

func printReport(w io.Writer, r *runner.Report) {
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", warnColor("warning:"), warning)
	}

	if r.DryRun {
		fmt.Fprintf(w, "Dry run for %s: %d of %d page(s) would be translated\n", r.Lang, len(r.Planned), r.Selected)
		for _, p := range r.Planned {
			fmt.Fprintf(w, "  ~ %s %s\n", p.Path, dimColor("("+p.Reason+")"))
		}
		return
	}

	for _, path := range r.Translated {
		fmt.Fprintf(w, "  %s %s\n", okColor("+"), path)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  %s %s: %v\n", failColor("x"), f.Path, f.Err)
	}
	for _, path := range r.Unscheduled {
		fmt.Fprintf(w, "  %s %s %s\n", warnColor("-"), path, dimColor("(not scheduled)"))
	}

	fmt.Fprintf(w, "%s %s: %s translated, %s up to date, %s failed",
		dimColor("run "+shortID(r.RunID)),
		r.Lang,
		okColor(len(r.Translated)),
		humanize.Comma(int64(len(r.Skipped))),
		failCount(len(r.Failed)),
	)
	if n := len(r.Unscheduled); n > 0 {
		fmt.Fprintf(w, ", %s not scheduled", warnColor(n))
	}
	fmt.Fprintln(w)

	if len(r.Translated) > 0 {
		fmt.Fprintf(w, "  %s strings (%s from memory) in %s request(s), wrote %s in %s\n",
			humanize.Comma(int64(r.Nodes)),
			humanize.Comma(int64(r.Cached)),
			humanize.Comma(int64(r.Batches)),
			humanize.Bytes(uint64(r.BytesWritten)),
			r.Duration.Round(time.Millisecond),
		)
	}
}

func failCount(n int) string {
	if n == 0 {
		return "0"
	}
	return failColor(n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printStatus(w io.Writer, path string, stats ledger.Stats, rows []statusRow) {
	if stats.Total == 0 {
		fmt.Fprintf(w, "%s: no records\n", path)
		return
	}

	fmt.Fprintf(w, "%s: %s record(s)\n", path, humanize.Comma(int64(stats.Total)))
	fmt.Fprintf(w, "  %s done, %s failed, %s pending\n",
		okColor(stats.ByStatus[ledger.StatusDone]),
		failCount(stats.ByStatus[ledger.StatusFailed]),
		warnColor(stats.ByStatus[ledger.StatusPending]))
	for _, lang := range stats.Languages() {
		fmt.Fprintf(w, "  %-8s %d\n", lang, stats.ByLang[lang])
	}

	for _, row := range rows {
		state := row.State
		switch state {
		case "current":
			state = okColor(state)
		case "failed", "orphaned":
			state = failColor(state)
		default:
			state = warnColor(state)
		}
		line := fmt.Sprintf("  %-14s %s", state, row.SourcePath)
		if row.Reason != "" {
			line += " " + dimColor(row.Reason)
		}
		if !row.UpdatedAt.IsZero() {
			line += " " + dimColor(humanize.Time(row.UpdatedAt))
		}
		fmt.Fprintln(w, line)
	}
}

func joinRoot(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
