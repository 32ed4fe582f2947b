package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syntpump/syntext/cyk"
	"github.com/syntpump/syntext/format"
)

func rootPolicy(root string, preferAgreeing bool) cyk.RootPolicy {
	switch {
	case root != "":
		return cyk.PreferCategory(root)
	case preferAgreeing:
		return cyk.PreferAgreeing
	default:
		return cyk.FirstRoot
	}
}

func newParseCmd() *cobra.Command {
	var outputFormat string
	var root string
	var preferAgreeing bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse <sentence>",
		Short: "Tag and parse a sentence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			p, err := newParser(cfg, cyk.WithRootPolicy(rootPolicy(root, preferAgreeing)))
			if err != nil {
				return err
			}
			encoder, err := format.New(outputFormat, os.Stdout)
			if err != nil {
				return err
			}

			sentence := strings.Join(args, " ")
			res, err := p.Parse(sentence)
			if err != nil {
				var incomplete *cyk.IncompleteParseError
				if errors.As(err, &incomplete) && outputFormat == format.Chart {
					if out, rerr := format.RenderChart(incomplete.Chart, cyk.Annotate(incomplete.Chart)); rerr == nil {
						fmt.Print(out)
					}
				}
				return fmt.Errorf("parse: %w", err)
			}

			if err := encoder.Encode(res); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if strict && !res.Agrees() {
				return fmt.Errorf("%d agreement violations", len(res.Violations))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", format.JSON, "output format (json, tree, chart)")
	cmd.Flags().StringVar(&root, "root", "", "prefer a root of this category among ambiguous parses")
	cmd.Flags().BoolVar(&preferAgreeing, "prefer-agreeing", false, "prefer a root whose subtree has no agreement violation")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when agreement is violated")

	return cmd
}
