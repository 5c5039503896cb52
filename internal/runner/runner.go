// Package runner orchestrates per-file transformations: glob expansion,
// bounded parallel workers, rule resolution, output writing, and the JSON
// report. Each worker owns its Transformer; shared state is limited to the
// append-only result list and the stdout lock.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/nymphium/graft/internal/languages"
	"github.com/nymphium/graft/internal/rules"
	"github.com/nymphium/graft/internal/transformer"
)

// Options configures one run.
type Options struct {
	// Patterns are file arguments; glob patterns (including **) are
	// expanded. Empty means read from Stdin, which requires Language.
	Patterns []string

	// Queries and Templates are zipped pairwise into inline rules.
	Queries   []string
	Templates []string

	// RuleFile is an optional TOML rule file path.
	RuleFile string

	// Language overrides extension-based detection for every file, and is
	// required for stdin input.
	Language string

	InPlace bool
	JSON    bool

	// Jobs bounds worker parallelism. Zero or negative uses NumCPU.
	Jobs int

	Stdin  io.Reader
	Stdout io.Writer
}

// Report statuses, mirrored into the JSON output.
const (
	StatusSuccess      = "success"
	StatusPartialError = "partial_error"
	StatusError        = "error"
)

// FileResult is the per-file entry of the report.
type FileResult struct {
	File          string                     `json:"file"`
	Language      string                     `json:"language,omitempty"`
	Modifications []transformer.Modification `json:"modifications"`
	Error         string                     `json:"error,omitempty"`
}

// Report summarises a run.
type Report struct {
	Status string       `json:"status"`
	Files  []FileResult `json:"files"`
}

// Failed reports whether any file in the report failed.
func (r Report) Failed() bool {
	return r.Status != StatusSuccess
}

// Run executes the configured transformation over every input. A per-file
// failure is recorded in the report and does not stop other files; errors
// before any file work starts (bad flags, unreadable rule file, no
// matching files, stdin pipeline failure) are returned directly.
func Run(ctx context.Context, opts Options) (Report, error) {
	if len(opts.Queries) != len(opts.Templates) {
		return Report{}, fmt.Errorf("got %d queries and %d templates; they must pair up", len(opts.Queries), len(opts.Templates))
	}

	inline := make([]rules.Rule, 0, len(opts.Queries))
	for i := range opts.Queries {
		inline = append(inline, rules.Rule{Query: opts.Queries[i], Template: opts.Templates[i]})
	}

	var fileRules []rules.Rule
	if opts.RuleFile != "" {
		f, err := rules.Load(opts.RuleFile)
		if err != nil {
			return Report{}, err
		}
		fileRules = f.Rules
	}

	if len(inline) == 0 && len(fileRules) == 0 {
		return Report{}, errors.New("no rules: provide --query/--template pairs or --rules")
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	if len(opts.Patterns) == 0 {
		return runStdin(opts, fileRules, inline)
	}

	files, err := expandPatterns(opts.Patterns)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{}, fmt.Errorf("no files match %s", strings.Join(opts.Patterns, ", "))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu       sync.Mutex
		results  []FileResult
		stdoutMu sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := processFile(file, opts, fileRules, inline)

			if result.Error == "" && !opts.JSON && !opts.InPlace {
				// One contiguous write per file so parallel workers
				// cannot interleave lines.
				stdoutMu.Lock()
				_, werr := opts.Stdout.Write(result.source)
				stdoutMu.Unlock()
				if werr != nil {
					result.Error = werr.Error()
				}
			}
			result.source = nil

			mu.Lock()
			results = append(results, result.FileResult)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	status := StatusSuccess
	for _, r := range results {
		if r.Error != "" {
			status = StatusPartialError
			break
		}
	}
	return Report{Status: status, Files: results}, nil
}

// fileOutcome carries the transformed source alongside the report entry so
// Run can write stdout output without re-reading the file.
type fileOutcome struct {
	FileResult
	source []byte
}

func processFile(file string, opts Options, fileRules, inline []rules.Rule) fileOutcome {
	out := fileOutcome{FileResult: FileResult{File: file}}

	content, err := os.ReadFile(file)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	label := opts.Language
	if label == "" {
		entry, err := languages.FromPath(file)
		if err != nil {
			out.Error = err.Error()
			return out
		}
		label = entry.Name
	}

	mods, source, langName, err := transformOne(content, label, file, fileRules, inline)
	out.Modifications = mods
	out.Language = langName
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.source = source

	if opts.InPlace {
		if err := writeInPlace(file, source); err != nil {
			out.Error = err.Error()
		}
	}
	return out
}

// transformOne runs every resolved rule against one buffer, in priority
// order, accumulating modifications. The first rule error aborts the file;
// modifications from the rules that completed before the failing one are
// still returned, along with the grammar's display name. Edits the failing
// rule made before its error are not among them.
func transformOne(content []byte, label, file string, fileRules, inline []rules.Rule) ([]transformer.Modification, []byte, string, error) {
	resolved, err := rules.Resolve(fileRules, inline, label)
	if err != nil {
		return nil, nil, "", err
	}

	tr, err := transformer.New(content, label)
	if err != nil {
		return nil, nil, "", err
	}
	defer tr.Close()
	langName := tr.LanguageName()

	var all []transformer.Modification
	for i, rule := range resolved {
		mods, err := tr.Apply(rule.Query, rule.Template)
		for m := range mods {
			mods[m].QueryIndex = i
			mods[m].File = file
		}
		all = append(all, mods...)
		if err != nil {
			return all, tr.Source(), langName, fmt.Errorf("rule %d (%s): %w", i, ruleName(rule), err)
		}
		slog.Debug("applied rule", "file", file, "rule", ruleName(rule), "language", langName, "modifications", len(mods))
	}
	return all, tr.Source(), langName, nil
}

func ruleName(r rules.Rule) string {
	if r.Name != "" {
		return r.Name
	}
	return "inline"
}

func runStdin(opts Options, fileRules, inline []rules.Rule) (Report, error) {
	if opts.Language == "" {
		return Report{}, errors.New("reading from stdin requires --language")
	}
	if opts.InPlace {
		return Report{}, errors.New("--in-place does not apply to stdin input")
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	content, err := io.ReadAll(opts.Stdin)
	if err != nil {
		return Report{Status: StatusError}, fmt.Errorf("read stdin: %w", err)
	}

	mods, source, langName, err := transformOne(content, opts.Language, "", fileRules, inline)
	if err != nil {
		return Report{Status: StatusError, Files: []FileResult{{File: "-", Language: langName, Modifications: mods, Error: err.Error()}}}, err
	}
	if !opts.JSON {
		if _, err := opts.Stdout.Write(source); err != nil {
			return Report{Status: StatusError}, err
		}
	}
	return Report{Status: StatusSuccess, Files: []FileResult{{File: "-", Language: langName, Modifications: mods}}}, nil
}

// expandPatterns turns file arguments into a deduplicated file list.
// Arguments without glob metacharacters pass through untouched so a
// missing explicit file surfaces as a read error rather than silently
// matching nothing.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// writeInPlace rewrites path preserving its permission bits.
func writeInPlace(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, info.Mode().Perm())
}
