package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/syntpump/syntext/config"
	"github.com/syntpump/syntext/cyk"
	"github.com/syntpump/syntext/morph"
	"github.com/syntpump/syntext/store"
)

const version = "0.1.0"

type globalOptions struct {
	configPath    string
	grammarPath   string
	grammarFormat string
	dsn           string
	lexicon       []string
	verbosity     int
	logFile       string
}

var global globalOptions

// loadConfig reads the config file and applies command-line overrides.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.grammarPath != "" {
		cfg.Grammar.Path = o.grammarPath
	}
	if o.grammarFormat != "" {
		cfg.Grammar.Format = o.grammarFormat
	}
	if o.dsn != "" {
		cfg.Grammar.DSN = o.dsn
	}
	if len(o.lexicon) > 0 {
		cfg.Lexicon.Paths = o.lexicon
	}
	return cfg, nil
}

// logSettings returns the verbosity and log file from the config file,
// replaced by the -v and --log flags when changed reports them as set.
func (o *globalOptions) logSettings(changed func(name string) bool) (int, *string) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		// The command reports a broken config file when it loads it.
		cfg = config.Default()
	}
	verbosity, path := cfg.Log.Verbosity, cfg.Log.File
	if changed("verbose") {
		verbosity = o.verbosity
	}
	if changed("log") {
		path = nil
		if o.logFile != "" {
			path = &o.logFile
		}
	}
	return verbosity, path
}

func newTagger(cfg config.Config) (*morph.Lexicon, error) {
	lex, err := morph.LoadLexicon(cfg.Lexicon.Paths, morph.WithLiteralClasses(cfg.Lexicon.LiteralClasses...))
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return lex, nil
}

func newParser(cfg config.Config, opts ...cyk.Option) (*cyk.Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lex, err := newTagger(cfg)
	if err != nil {
		return nil, err
	}
	g, err := store.LoadGrammar(cfg.Grammar)
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}
	return cyk.NewParser(lex, g, opts...), nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "syntext",
		Short:         "Rule-based morphology and syntax parser",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(global.logSettings(cmd.Flags().Changed))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&global.configPath, "config", "c", "", "path to syntext.json")
	flags.StringVarP(&global.grammarPath, "grammar", "g", "", "grammar file (overrides config)")
	flags.StringVar(&global.grammarFormat, "grammar-format", "", "grammar format: text, json, ebnf or sql (default: by extension)")
	flags.StringVar(&global.dsn, "dsn", "", "Postgres connection string for the sql grammar store")
	flags.StringSliceVarP(&global.lexicon, "lexicon", "l", nil, "CoNLL-U lexicon files (overrides config)")
	flags.CountVarP(&global.verbosity, "verbose", "v", "increase log verbosity")
	flags.StringVar(&global.logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
