package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/jobboard"
	"github.com/aretw0/jobboard/pkg/adapters/snapshot"
	"github.com/aretw0/jobboard/pkg/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	boardJSON    bool
	boardYAML    bool
	boardOffline bool
	boardFollow  bool
	boardFilter  = map[core.FilterKey]*string{}
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the board, one column per stage",
	Long: `Board fetches the jobs matching the filter flags and prints them by stage.
With --offline the last board loaded on this machine is shown instead.
With --follow the board is printed again whenever another jobboard
process reloads it.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if boardJSON && boardYAML {
			fatal("Invalid flags", errors.New("--json and --yaml are exclusive"))
		}
		ctx, cancel := signalContext()
		defer cancel()

		var store *snapshot.Store
		var extra []jobboard.Option
		if boardFollow {
			store = followStore()
			extra = append(extra, jobboard.WithSnapshotter(store))
		}

		var svc *jobboard.Service
		if boardOffline {
			svc, _ = openService(extra...)
			snap, err := svc.RestoreSnapshot(ctx)
			if errors.Is(err, core.ErrNotFound) {
				fatal("No saved board", errors.New("run 'jobboard board' online first"))
			}
			if err != nil {
				fatal("Error restoring board", err)
			}
			slog.Info("showing saved board", "saved_at", snap.SavedAt)
		} else {
			svc, _ = startService(ctx, extra...)
			spec := filterFromFlags()
			if !spec.IsZero() {
				if _, err := svc.ApplyFilter(ctx, spec); err != nil {
					fatal("Error filtering board", err)
				}
			}
		}

		printColumns(os.Stdout, svc.Board().Filter(), svc.Columns())

		if boardFollow {
			follow(ctx, store)
		}
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVar(&boardJSON, "json", false, "Output in JSON format")
	boardCmd.Flags().BoolVar(&boardYAML, "yaml", false, "Output in YAML format")
	boardCmd.Flags().BoolVar(&boardOffline, "offline", false, "Show the last saved board without contacting the server")
	boardCmd.Flags().BoolVarP(&boardFollow, "follow", "f", false, "Keep printing the board when it is reloaded elsewhere")
	for _, k := range core.FilterKeys() {
		boardFilter[k] = boardCmd.Flags().String(flagName(k), "", "Filter by "+strings.ReplaceAll(string(k), "_", " "))
	}
}

func flagName(k core.FilterKey) string {
	return strings.ReplaceAll(string(k), "_", "-")
}

func filterFromFlags() core.FilterSpec {
	var spec core.FilterSpec
	for k, v := range boardFilter {
		spec = spec.With(k, *v)
	}
	return spec
}

// followStore opens the snapshot file the service writes to.
func followStore() *snapshot.Store {
	path, err := resolveConfig()
	if err != nil {
		fatal("Failed to locate config", err)
	}
	cfg, err := jobboard.LoadConfig(path)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if cfg.Snapshot.Enabled != nil && !*cfg.Snapshot.Enabled {
		fatal("Cannot follow", errors.New("snapshot.enabled is false"))
	}
	snapPath := cfg.Snapshot.Path
	if snapPath == "" {
		if snapPath, err = jobboard.DefaultSnapshotPath(); err != nil {
			fatal("Failed to resolve snapshot path", err)
		}
	}
	return snapshot.New(snapPath,
		snapshot.WithLogger(slog.Default().With("component", "snapshot")),
		snapshot.WithReadOnly(readOnly || cfg.ReadOnly),
	)
}

func follow(ctx context.Context, store *snapshot.Store) {
	updates, err := store.Follow(ctx)
	if err != nil {
		fatal("Cannot follow", err)
	}
	for snap := range updates {
		b := core.NewBoardStore()
		if err := b.Load(snap.Items); err != nil {
			slog.Warn("ignoring unreadable board", "error", err)
			continue
		}
		if !boardJSON && !boardYAML {
			fmt.Println()
		}
		printColumns(os.Stdout, snap.Filter, b.Columns())
	}
}

func printColumns(w io.Writer, filter core.FilterSpec, cols []core.Column) {
	switch {
	case boardJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cols); err != nil {
			fatal("Error encoding JSON", err)
		}
		return
	case boardYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(cols); err != nil {
			fatal("Error encoding YAML", err)
		}
		_ = encoder.Close()
		return
	}

	if q := core.BuildQuery(filter); len(q) > 0 {
		fmt.Fprintf(w, "Filter: %s\n\n", q.Encode())
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range cols {
		fmt.Fprintf(tw, "%s (%d)\n", col.Stage, len(col.Items))
		for _, it := range col.Items {
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\t%s\n", it.ID, it.Title, it.Company, it.LocationType, salary(it.Salary))
		}
	}
	_ = tw.Flush()
}

func salary(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
