package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/format"
)

func readSentences(r io.Reader) ([]string, error) {
	var sentences []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sentences = append(sentences, line)
	}
	return sentences, scanner.Err()
}

type batchLine struct {
	Index    int    `json:"index"`
	Sentence string `json:"sentence"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var workers int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Parse every line of a file, one sentence per line (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open sentences: %w", err)
				}
				defer f.Close()
				in = f
			}
			sentences, err := readSentences(in)
			if err != nil {
				return fmt.Errorf("read sentences: %w", err)
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			p, err := newParser(cfg)
			if err != nil {
				return err
			}

			runner := batch.New(p, workers)
			defer runner.Close()

			id, err := runner.Submit(sentences)
			if err != nil {
				return err
			}
			res, err := runner.Wait(cmd.Context(), id)
			if err != nil {
				return err
			}

			if err := writeBatch(os.Stdout, res, outputFormat); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d sentences, %d failed\n", res.Total, res.Failed)
			if res.Status == batch.StatusFailed {
				return fmt.Errorf("batch failed: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "sentences parsed in parallel")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", format.JSON, "output format (json lines, tree)")

	return cmd
}

func writeBatch(w io.Writer, res *batch.Result, outputFormat string) error {
	switch outputFormat {
	case format.JSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, item := range res.Items {
			line := batchLine{Index: item.Index, Sentence: item.Sentence}
			if item.Err != nil {
				line.Error = item.Err.Error()
			} else {
				line.Result = format.ResultData(item.Result)
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
	case format.Tree:
		for _, item := range res.Items {
			fmt.Fprintf(w, "# %d: %s\n", item.Index, item.Sentence)
			if item.Err != nil {
				fmt.Fprintf(w, "error: %v\n\n", item.Err)
				continue
			}
			if err := format.NewTreeEncoder(w).Encode(item.Result); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	default:
		return fmt.Errorf("unknown batch format %q (want json or tree)", outputFormat)
	}
	return nil
}
