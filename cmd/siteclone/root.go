package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for siteclone.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "siteclone",
		Short: "Clone a web page and its same-origin assets into a zip archive",
		Long: `siteclone downloads a page together with the stylesheets, scripts, images,
fonts and videos it references on the same site, and packages everything
into one zip archive laid out like the site's URL paths.

Targets that resolve to private, loopback or link-local addresses are refused.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCloneCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
