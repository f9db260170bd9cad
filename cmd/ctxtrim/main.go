// ctxtrim truncates a JSON conversation transcript against a token budget.
//
// It reads an array of messages from a file (or stdin), runs the sliding
// window truncation engine, writes the surviving transcript as JSON to
// stdout, and reports what was evicted on stderr. When stderr is a
// terminal the report is expanded for humans.
//
// Usage:
//
//	ctxtrim -budget 100000 -recent 3 transcript.json
//	cat transcript.json | ctxtrim -model claude-sonnet-4
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"contextwindow/pkg/config"
	"contextwindow/pkg/msg"
	"contextwindow/pkg/tokens"
	"contextwindow/pkg/window"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ctxtrim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	budget := flag.Int("budget", 0, "token budget (0 = derive from -model)")
	recent := flag.Int("recent", window.DefaultRecentCount, "number of trailing messages protected from eviction")
	model := flag.String("model", config.ModelClaudeSonnet, "model name used for budget defaults and tiktoken counting")
	splitPairs := flag.Bool("split-pairs", false, "allow tool call/result pairs to be evicted separately (unsafe for most providers)")
	exact := flag.Bool("exact", false, "count text with a tiktoken codec instead of the character heuristic")
	flag.Parse()

	messages, err := readTranscript(flag.Arg(0))
	if err != nil {
		return err
	}

	target := *budget
	if target <= 0 {
		modelCfg := config.Defaults(*model)
		target = modelCfg.TruncationTarget()
	}

	opts := window.DefaultOptions(target)
	opts.RecentCount = *recent
	opts.PreserveToolPairs = !*splitPairs
	if *exact {
		est, terr := tokens.NewTiktokenEstimator(*model)
		if terr != nil {
			return terr
		}
		opts.Tokenizer = est
	}

	before := tokens.EstimateMessages(messages)
	result := window.Truncate(messages, opts)

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(result.Messages); err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	reportResult(before, target, result)
	return nil
}

func readTranscript(path string) ([]msg.Message, error) {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript: %w", err)
		}
		defer file.Close() //nolint:errcheck // read-only file
		reader = file
	}

	var messages []msg.Message
	if err := json.NewDecoder(reader).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return messages, nil
}

func reportResult(before, target int, result window.Result) {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "evicted %d message(s): %d -> %d tokens (budget %d)\n",
			result.RemovedCount, before, result.TokenCount, target)
		for _, id := range result.RemovedIDs {
			fmt.Fprintf(os.Stderr, "  - %s\n", id)
		}
		if result.TokenCount > target {
			fmt.Fprintf(os.Stderr, "warning: still %d tokens over budget; remaining messages are protected\n",
				result.TokenCount-target)
		}
		return
	}
	summary, _ := json.Marshal(map[string]any{
		"removed_count": result.RemovedCount,
		"removed_ids":   result.RemovedIDs,
		"token_count":   result.TokenCount,
		"budget":        target,
		"budget_met":    result.TokenCount <= target,
	})
	fmt.Fprintln(os.Stderr, string(summary))
}
