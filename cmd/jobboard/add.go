package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addForm jobForm

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job to the board",
	Long: `Add creates a job on the server. New jobs start as Saved, Remote and
Full-time unless the flags say otherwise.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		svc, _ := startService(ctx)

		draft := svc.NewDraft()
		if err := addForm.apply(cmd, draft); err != nil {
			fatal("Invalid job", err)
		}
		job, err := svc.Submit(ctx, draft)
		if err != nil {
			fatal("Error creating job", err)
		}
		if !job.Persisted() {
			fmt.Fprintln(cmd.OutOrStdout(), "Job created.")
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), "Job created: ")
		printJob(cmd.OutOrStdout(), job)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addForm.register(addCmd)
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("company")
}
