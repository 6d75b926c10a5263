package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// newRootCommand builds the drinktab command tree. Running the binary with
// no subcommand starts the kiosk server.
func newRootCommand(stdin *os.File, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "drinktab",
		Short: "Self-service drink tab kiosk",
		Long: `drinktab runs a small kiosk where users tap their name and the drinks
they take. Administrators manage users and products behind Basic Auth.

Configuration comes from the environment or a .env file in the working
directory (PORT, DATABASE_URL, ADMIN_USERNAME, ADMIN_PASSWORD_HASH, ...).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.SetIn(stdin)
	root.SetOut(out)

	root.AddCommand(
		newServeCommand(),
		newUsersCommand(),
		newProductsCommand(),
		newReportCommand(),
		newHashPasswordCommand(stdin),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the kiosk HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}
