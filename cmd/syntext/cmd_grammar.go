package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/lsp"
	"github.com/syntpump/syntext/store"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Grammar file tools",
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarListCmd())
	cmd.AddCommand(newGrammarConvertCmd())
	cmd.AddCommand(newGrammarImportCmd())

	return cmd
}

func readRules(filename, formatName string) ([]grammar.Rule, error) {
	f, err := store.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return store.File{Path: filename, Format: f}.LoadRules()
}

func newGrammarCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Report syntax errors and duplicate rules in a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}

			errorCount := 0
			for _, d := range lsp.Diagnostics(filename, string(data)) {
				fmt.Printf("%s:%d: %s\n", filename, d.Range.Start.Line+1, d.Message)
				if d.Severity != nil && *d.Severity == protocol.DiagnosticSeverityError {
					errorCount++
				}
			}
			if errorCount > 0 {
				return fmt.Errorf("%d errors", errorCount)
			}
			return nil
		},
	}
}

func newGrammarListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the configured grammar in text notation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			g, err := store.LoadGrammar(cfg.Grammar)
			if err != nil {
				return err
			}
			return store.WriteText(os.Stdout, g.Rules())
		},
	}
}

func newGrammarConvertCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a grammar file to text or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := readRules(args[0], from)
			if err != nil {
				return err
			}
			switch store.Format(to) {
			case store.FormatText:
				return store.WriteText(os.Stdout, rules)
			case store.FormatJSON:
				return store.EncodeJSON(os.Stdout, rules)
			}
			return fmt.Errorf("cannot convert to %q (want text or json)", to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: by extension)")
	cmd.Flags().StringVar(&to, "to", "text", "output format (text, json)")

	return cmd
}

func newGrammarImportCmd() *cobra.Command {
	var from, table string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a grammar file and append its rules to the Postgres store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Grammar.DSN == "" {
				return fmt.Errorf("import needs a dsn (--dsn, grammar.dsn or SYNTEXT_DSN)")
			}
			if table == "" {
				table = cfg.Grammar.Table
			}

			rules, err := readRules(args[0], from)
			if err != nil {
				return err
			}
			if _, err := grammar.New(rules); err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			db, err := store.OpenSQL(cfg.Grammar.DSN, table)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			if err := db.SaveRules(cmd.Context(), rules); err != nil {
				return err
			}
			fmt.Printf("imported %d rules\n", len(rules))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: by extension)")
	cmd.Flags().StringVar(&table, "table", "", "target table (default: grammar.table)")

	return cmd
}
