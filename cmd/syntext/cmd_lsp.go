package main

import (
	"github.com/spf13/cobra"

	"github.com/syntpump/syntext/lsp"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server for grammar files",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.New(version)
			return server.RunStdio()
		},
	}
}
