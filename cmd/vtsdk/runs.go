package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/geomichelon/vtsdk/internal/store"
)

type runsOptions struct {
	dataDir       string
	keepLast      int
	olderThanDays int
	force         bool
	testName      string
}

func newRunsCmd() *cobra.Command {
	opts := &runsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage stored comparison runs",
		Long: `Manage comparison runs recorded by "vtsdk serve --data-dir".
Each run keeps its request, result and a copy of the diff image.`,
	}
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "./data", "Base directory for run storage")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.list(cmd)
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Delete old runs",
		Long: `Delete runs by retention policy: keep only the newest N runs, delete runs
older than N days, or both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.clean(cmd)
		},
	}
	clean.Flags().IntVar(&opts.keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	clean.Flags().IntVar(&opts.olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	clean.Flags().BoolVarP(&opts.force, "force", "f", false, "Skip confirmation prompt")

	history := &cobra.Command{
		Use:   "history",
		Short: "Show the similarity history of stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.history(cmd)
		},
	}
	history.Flags().StringVar(&opts.testName, "test", "", "Only show runs of this test name")

	cmd.AddCommand(list, clean, history)
	return cmd
}

func (o *runsOptions) list(cmd *cobra.Command) error {
	runStore, err := store.NewFSStore(o.dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTEST\tSIMILARITY\tSTATUS\tCREATED\tSIZE")
	fmt.Fprintln(w, "------\t----\t----------\t------\t-------\t----")

	for _, info := range infos {
		sizeStr := "unknown"
		if size, err := dirSize(filepath.Join(o.dataDir, "runs", info.ID)); err == nil {
			sizeStr = humanize.Bytes(uint64(size))
		}

		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			shortID(info.ID),
			orDash(info.TestName),
			info.Similarity,
			orDash(string(info.Status)),
			humanize.Time(info.Timestamp),
			sizeStr,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %s\n", humanize.Comma(int64(len(infos))))
	return nil
}

func (o *runsOptions) clean(cmd *cobra.Command) error {
	if o.keepLast == 0 && o.olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(o.dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	toDelete := selectRunsForDeletion(infos, o.keepLast, o.olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n", shortID(info.ID), orDash(info.TestName), humanize.Time(info.Timestamp))
	}

	if !o.force {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.ID, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted run", "run_id", info.ID)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

func (o *runsOptions) history(cmd *cobra.Command) error {
	entries, err := store.ReadHistory(o.dataDir, o.testName)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tTEST\tSIMILARITY\tSTATUS\tRUN ID")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			orDash(e.TestName),
			e.Similarity,
			orDash(string(e.Status)),
			shortID(e.RunID),
		)
	}
	return w.Flush()
}

// selectRunsForDeletion applies the retention policy. Runs matching either
// rule are selected once, oldest first.
func selectRunsForDeletion(infos []store.RunInfo, keepLast, olderThanDays int, now time.Time) []store.RunInfo {
	sorted := make([]store.RunInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	selected := make(map[string]bool)
	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range sorted {
			if info.Timestamp.Before(cutoff) {
				selected[info.ID] = true
			}
		}
	}
	if keepLast > 0 && len(sorted) > keepLast {
		for _, info := range sorted[:len(sorted)-keepLast] {
			selected[info.ID] = true
		}
	}

	var toDelete []store.RunInfo
	for _, info := range sorted {
		if selected[info.ID] {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
