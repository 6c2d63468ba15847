package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trelloimport/internal/username"
)

var usernameCmd = &cobra.Command{
	Use:   "username USERNAME FULL_NAME",
	Short: "Print the username an imported Trello member would get",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), username.MakeUsername(args[0], args[1]))
		return err
	},
}

func init() {
	rootCmd.AddCommand(usernameCmd)
}
