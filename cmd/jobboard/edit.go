package main

import (
	"fmt"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/spf13/cobra"
)

var (
	editForm        jobForm
	editRemoveNotes []int64
	editDetach      []int64
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a job",
	Long: `Edit changes the fields set by flags and leaves the others alone.
Notes can be added with --note and removed by id with --remove-note;
documents can be attached with --attach and removed by id with --detach.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx, cancel := signalContext()
		defer cancel()
		svc, _ := startService(ctx)

		sess, err := svc.Edit(id)
		if err != nil {
			fatal("Error opening job", err)
		}
		for _, noteID := range editRemoveNotes {
			if err := removeNoteByID(sess, noteID); err != nil {
				fatal("Invalid note", err)
			}
		}
		for _, docID := range editDetach {
			if err := sess.Detach(docID); err != nil {
				fatal("Invalid document", err)
			}
		}
		if err := editForm.apply(cmd, sess); err != nil {
			fatal("Invalid job", err)
		}

		job, err := svc.Submit(ctx, sess)
		if err != nil {
			fatal("Error updating job", err)
		}
		if !job.Persisted() {
			fmt.Fprintf(cmd.OutOrStdout(), "Job #%d updated.\n", id)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), "Job updated: ")
		printJob(cmd.OutOrStdout(), job)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editForm.register(editCmd)
	editCmd.Flags().Int64SliceVar(&editRemoveNotes, "remove-note", nil, "Remove the note with this id")
	editCmd.Flags().Int64SliceVar(&editDetach, "detach", nil, "Remove the document with this id")
}

func removeNoteByID(sess *core.EditSession, noteID int64) error {
	for i, n := range sess.Notes() {
		if n.ID == noteID {
			return sess.RemoveNote(i)
		}
	}
	return fmt.Errorf("note %d: %w", noteID, core.ErrNotFound)
}
