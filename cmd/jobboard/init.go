package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/jobboard"
	"github.com/spf13/cobra"
)

var (
	initAPIURL  string
	initSession string
	initLocal   bool
	initForce   bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a jobboard config file",
	Long: `Init writes a config file pointing at your jobs server. By default it goes
to the user config directory; with --local it is written as .jobboard.yaml
in the current directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := jobboard.UserConfigPath()
		if initLocal {
			path, err = ".jobboard.yaml", nil
		}
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			fatal("Refusing to overwrite", fmt.Errorf("%s exists (use --force)", path))
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			fatal("Failed to check config path", err)
		}

		cfg := &jobboard.Config{
			APIURL:  initAPIURL,
			Timeout: jobboard.Duration(30 * time.Second),
		}
		cfg.Session.CookieValue = initSession
		if err := cfg.Validate(); err != nil {
			fatal("Invalid config", err)
		}
		if err := jobboard.WriteConfig(path, cfg); err != nil {
			fatal("Failed to write config", err)
		}
		fmt.Println("Wrote", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initAPIURL, "api-url", "", "Base URL of the jobs server")
	initCmd.Flags().StringVar(&initSession, "session", "", "Session cookie value (or use ${JOBBOARD_SESSION} later)")
	initCmd.Flags().BoolVar(&initLocal, "local", false, "Write .jobboard.yaml in the current directory")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	_ = initCmd.MarkFlagRequired("api-url")
}
