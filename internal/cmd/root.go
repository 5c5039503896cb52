// Package cmd wires the graft command line: flag parsing, logging setup,
// and the mapping from runner reports to exit status and JSON output.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	charmlog "charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/nymphium/graft/internal/languages"
	"github.com/nymphium/graft/internal/runner"
)

var errRunFailed = errors.New("run failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graft [flags] [files...]",
		Short: "Structural search and replace for source code",
		Long: `Graft parses source files into syntax trees, finds subtrees with
tree-sitter queries, and rewrites them from templates bound to the query
captures. Rewrites that would introduce a syntax error are rejected.

With no file arguments, graft reads from stdin and writes to stdout;
--language is required in that mode.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	flags := cmd.Flags()
	flags.StringArrayP("query", "q", nil, "Tree-sitter query (repeatable, pairs with --template)")
	flags.StringArrayP("template", "t", nil, "Replacement template (repeatable, pairs with --query)")
	flags.String("rules", "", "TOML rule file")
	flags.StringP("language", "l", "", "Language label; overrides extension detection")
	flags.BoolP("in-place", "i", false, "Rewrite files in place instead of printing to stdout")
	flags.Bool("json", false, "Emit a JSON report instead of transformed source")
	flags.Int("jobs", 0, "Max files processed in parallel (0 = number of CPUs)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newLanguagesCmd())
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts := loadRunnerOptions(cmd, args)
	verbose, _ := cmd.Flags().GetBool("verbose")
	setupLogging(verbose)

	if opts.Language != "" && !languages.Supports(opts.Language) {
		return fmt.Errorf("unknown language %q; run %q for the supported set", opts.Language, "graft languages")
	}

	report, err := runner.Run(cmd.Context(), opts)

	if opts.JSON {
		if report.Status == "" {
			report.Status = runner.StatusError
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return encErr
		}
		if err != nil || report.Failed() {
			return errRunFailed
		}
		return nil
	}

	if err != nil {
		return err
	}
	if report.Failed() {
		for _, f := range report.Files {
			if f.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "graft: %s: %s\n", f.File, f.Error)
			}
		}
		return errRunFailed
	}
	return nil
}

func loadRunnerOptions(cmd *cobra.Command, args []string) runner.Options {
	queries, _ := cmd.Flags().GetStringArray("query")
	templates, _ := cmd.Flags().GetStringArray("template")
	ruleFile, _ := cmd.Flags().GetString("rules")
	language, _ := cmd.Flags().GetString("language")
	inPlace, _ := cmd.Flags().GetBool("in-place")
	jsonOut, _ := cmd.Flags().GetBool("json")
	jobs, _ := cmd.Flags().GetInt("jobs")

	return runner.Options{
		Patterns:  args,
		Queries:   queries,
		Templates: templates,
		RuleFile:  ruleFile,
		Language:  language,
		InPlace:   inPlace,
		JSON:      jsonOut,
		Jobs:      jobs,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
	}
}

func setupLogging(verbose bool) {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	slog.SetDefault(slog.New(handler))
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "graft: %v\n", err)
		}
		return 1
	}
	return 0
}
