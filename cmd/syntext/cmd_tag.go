package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <sentence>",
		Short: "Tokenize and tag a sentence without parsing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			lex, err := newTagger(cfg)
			if err != nil {
				return err
			}
			tokens, err := lex.Tag(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("tag: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for i, t := range tokens {
				category := t.Category
				if category == "" {
					category = "_"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, t.Text, category, t.Features, t.CategoryKey())
			}
			return w.Flush()
		},
	}
}
