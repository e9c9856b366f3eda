package main

import (
	"fmt"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/ZaguanLabs/sitetrans/ledger"
	"github.com/ZaguanLabs/sitetrans/runner"
	"github.com/ZaguanLabs/sitetrans/selector"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// status (read-only ledger report)
// ---------------------------------------------------------------------------

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ledger statistics and stale or orphaned records",
		Long: `Summarize the translation ledger per language and status. With --lang,
list every record for that language and flag records whose source changed
(stale) or disappeared (orphaned). Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.settings(cmd)
			if err != nil {
				return err
			}
			l, err := ledger.Open(s.LedgerPath())
			if err != nil {
				return err
			}

			var rows []statusRow
			if s.Lang != "" {
				for _, rec := range l.Filter(s.Lang) {
					rows = append(rows, statusRow{Record: rec, State: recordState(s.Root, rec)})
				}
			}
			printStatus(o.stdout, s.LedgerPath(), l.Summary(), rows)
			return nil
		},
	}
}

type statusRow struct {
	ledger.Record
	State string
}

// recordState compares a record with the files on disk.
func recordState(root string, rec ledger.Record) string {
	if !selector.Exists(root, rec.SourcePath) {
		return "orphaned"
	}
	if rec.Status != ledger.StatusDone {
		return string(rec.Status)
	}
	hash, err := sitetrans.HashFile(joinRoot(root, rec.SourcePath))
	if err != nil {
		return "unreadable"
	}
	if rec.Stale(hash) {
		return "stale"
	}
	if !selector.Exists(root, rec.TranslatedPath) {
		return "missing output"
	}
	return "current"
}

// ---------------------------------------------------------------------------
// prune (drop records of deleted sources)
// ---------------------------------------------------------------------------

func newPruneCmd(o *options) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove ledger records whose source page no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.settings(cmd)
			if err != nil {
				return err
			}
			l, err := ledger.Open(s.LedgerPath())
			if err != nil {
				return err
			}

			removed := l.Prune(func(source string) bool { return selector.Exists(s.Root, source) })
			for _, rec := range removed {
				fmt.Fprintf(o.stdout, "  - %s (%s)\n", rec.SourcePath, rec.TargetLang)
			}
			if dryRun {
				fmt.Fprintf(o.stdout, "%d record(s) would be removed\n", len(removed))
				return nil
			}
			if err := l.Save(); err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "%d record(s) removed\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List records without removing them")
	return cmd
}

// ---------------------------------------------------------------------------
// watch (re-run on source changes)
// ---------------------------------------------------------------------------

func newWatchCmd(o *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Translate, then retranslate pages as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.settings(cmd)
			if err != nil {
				return err
			}
			p, err := buildPipeline(s)
			if err != nil {
				return err
			}
			defer p.close()

			p.runner.OnReport = func(report *runner.Report, err error) {
				if err != nil {
					log.Warnw("run failed", "err", err)
				}
				if report == nil {
					return
				}
				printReport(o.stdout, report)
				if report.Changed() {
					p.saveMemory(cmd.Context())
				}
			}
			log.Infow("watching for changes", "root", s.Root, "lang", s.Lang)
			return p.runner.Watch(cmd.Context(), debounce)
		},
	}
	addRunFlags(cmd, o)
	cmd.Flags().DurationVar(&debounce, "debounce", runner.DefaultDebounce, "Quiet period before a re-run")
	return cmd
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(o.stdout, "%s %s\n", sitetrans.Name, sitetrans.FullVersion())
			if sitetrans.GitCommit != "unknown" && sitetrans.GitCommit != "" {
				fmt.Fprintf(o.stdout, "  commit:  %s\n", sitetrans.GitCommit)
			}
			if sitetrans.BuildDate != "unknown" && sitetrans.BuildDate != "" {
				fmt.Fprintf(o.stdout, "  built:   %s\n", sitetrans.BuildDate)
			}
		},
	}
}
