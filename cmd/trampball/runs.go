package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/trampball/internal/config"
	"github.com/san-kum/trampball/internal/storage"
)

const maxPlots = 6

func runStore() *storage.Store {
	if dataDir != "" {
		return storage.New(dataDir)
	}
	return storage.New(config.DefaultOutput)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := runStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tDURATION\tINTERVAL\tTICKS\tBALLS\tTRAMPOLINES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.2fms\t%d\t%d\t%d\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.IntervalMs,
			run.Ticks,
			run.Balls,
			run.Trampolines,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := runStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(trace) == 0 {
		return fmt.Errorf("no data to plot")
	}

	seen := make(map[int]bool)
	var ids []int
	for _, row := range trace {
		if !seen[row.Ball] {
			seen[row.Ball] = true
			ids = append(ids, row.Ball)
		}
	}
	sort.Ints(ids)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("samples: %d\n\n", len(trace))

	for i, id := range ids {
		if i == maxPlots {
			fmt.Printf("(%d more balls not shown)\n", len(ids)-maxPlots)
			break
		}
		_, heights := storage.Series(trace, id)
		if len(heights) < 2 {
			continue
		}
		graph := asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("ball %d height", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := runStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(outputPath, *meta, trace)
}
