package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/spf13/cobra"
)

var statusDiagram bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session, the board and the adapters' state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		svc, cfg := openService()

		if _, err := svc.Start(ctx); err != nil {
			// The state still shows what failed.
			slog.Warn("board not loaded", "error", err)
		}
		st := svc.State().(core.ServiceState)

		if statusDiagram {
			fmt.Println(boardDiagram(st, svc.Columns()))
			return
		}

		out := struct {
			Config string            `json:"config,omitempty"`
			State  core.ServiceState `json:"state"`
		}{Config: cfg.Source, State: st}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
}
