package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"factstream/internal/config"
	"factstream/internal/verify"
)

var (
	checkContext string
	checkTimeout time.Duration
	checkJSON    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <statement>",
	Short: "Fact-check a single statement",
	Long: `Check verifies one factual statement against web sources and prints
the verdict, confidence, explanation, and citations.

Without a PERPLEXITY_API_KEY the verdict comes from the offline fallback
checker, marked accordingly in the explanation.

Example:
  factstream check "The Earth orbits the Sun"
  factstream check "GDP grew 3% last quarter" --context "2024 economics debate"
  factstream check "Water boils at 100C" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkContext, "context", "", "surrounding context for the statement")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the full result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	statement := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newCLILogger()
	checker := verify.NewChecker(cfg.Verify, logger)

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", statement)
		fmt.Fprintf(os.Stderr, "Live verification: %v\n\n", checker.Configured())
	}

	result := checker.Check(ctx, statement, checkContext)

	if checkJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Statement:  %s\n", result.Statement)
	fmt.Printf("Verdict:    %s\n", result.Verdict)
	fmt.Printf("Confidence: %.2f\n", result.ConfidenceScore)
	fmt.Printf("Explanation:\n  %s\n", result.Explanation)
	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, src := range result.Sources {
			fmt.Printf("  - %s (%s)\n", src.Title, src.Domain)
			if src.URL != "" {
				fmt.Printf("    %s\n", src.URL)
			}
		}
	}
	fmt.Printf("Took %dms\n", result.ProcessingTimeMs)

	return nil
}
