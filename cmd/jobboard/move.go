package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	boardevents "github.com/aretw0/jobboard/pkg/adapters/lifecycle"
	"github.com/aretw0/jobboard/pkg/core"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [id] [stage]",
	Short: "Move a job to another stage",
	Long: `Move changes the stage of a job. The board shows the new stage at once;
if the server refuses the change the job goes back where it was.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		stage, err := core.ParseStage(args[1])
		if err != nil {
			fatal("Invalid stage", err)
		}

		ctx, cancel := signalContext()
		defer cancel()
		svc, _ := startService(ctx)

		src := boardevents.NewSource(svc.Events(),
			boardevents.WithTypes(core.EventMoved, core.EventCommitted, core.EventRolledBack))
		evCtx, stopEvents := context.WithCancel(ctx)
		defer stopEvents()
		if err := src.Start(evCtx); err != nil {
			fatal("Failed to watch board events", err)
		}
		go func() {
			for e := range src.Events() {
				slog.Debug("board event", "event", e.String())
			}
		}()

		t, err := svc.Drop(ctx, id, stage)
		if err != nil {
			fatal("Error moving job", err)
		}
		if err := t.Wait(ctx); err != nil {
			fatal(fmt.Sprintf("Move of job #%d rolled back to %s", id, t.From), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), moveResult(id, stage, t))
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

// moveResult describes a move that finished without being rolled back.
func moveResult(id int64, stage core.Stage, t *core.Transition) string {
	if t.State() == core.TransitionIdle {
		return fmt.Sprintf("Job #%d is already in %s", id, stage)
	}
	return fmt.Sprintf("Job #%d moved: %s -> %s", id, t.From, t.To)
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fatal("Invalid job id", fmt.Errorf("%q is not a job id", s))
	}
	return id
}
