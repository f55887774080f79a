package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a job from the board",
	Long:  `Delete permanently removes a job from the server after asking for confirmation.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx, cancel := signalContext()
		defer cancel()
		svc, _ := startService(ctx)

		job, err := svc.Board().Get(id)
		if err != nil {
			fatal("Error deleting job", err)
		}
		if err := svc.RequestDelete(id); err != nil {
			fatal("Error deleting job", err)
		}

		prompt := fmt.Sprintf("Delete #%d %s @ %s? [y/N] ", id, job.Title, job.Company)
		if !deleteYes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt) {
			svc.CancelDelete()
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
			return
		}

		deleted, err := svc.ConfirmDelete(ctx)
		if err != nil {
			fatal("Error deleting job", err)
		}
		if deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Job deleted: #%d\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

// confirm asks prompt on out and reads a yes or no answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
