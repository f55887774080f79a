package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the saved board",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		svc, cfg := openService()

		if err := svc.Logout(ctx); err != nil {
			fatal("Error logging out", err)
		}
		fmt.Println("Logged out.")
		if cfg.Session.CookieValue != "" {
			fmt.Println("Tip: remove session.cookie_value from", configLabel(cfg.Source))
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func configLabel(source string) string {
	if source == "" {
		return "your environment (JOBBOARD_SESSION)"
	}
	return source
}
