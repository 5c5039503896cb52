package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nymphium/graft/internal/runner"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestLanguagesCommandListsRegistry(t *testing.T) {
	out, err := execute(t, "languages")
	require.NoError(t, err)
	require.Contains(t, out, "Rust")
	require.Contains(t, out, "rust, rs")
	require.Contains(t, out, "TypeScript")
}

func TestRootTransformsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn main() { let x = 1 + 2; }"), 0o644))

	_, err := execute(t,
		"--query", `(binary_expression left: (_) @l operator: "+" right: (_) @r) @target`,
		"--template", "add(${l}, ${r})",
		"--in-place",
		file,
	)
	require.NoError(t, err)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "fn main() { let x = add(1, 2); }", string(content))
}

func TestRootEmitsJSONReport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn main() { let x = 1 + 2; }"), 0o644))

	out, err := execute(t,
		"--query", `(binary_expression left: (_) @l operator: "+" right: (_) @r) @target`,
		"--template", "add(${l}, ${r})",
		"--json",
		file,
	)
	require.NoError(t, err)

	var report runner.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, runner.StatusSuccess, report.Status)
	require.Len(t, report.Files, 1)
	require.Len(t, report.Files[0].Modifications, 1)
}

func TestRootRejectsUnknownLanguageFlag(t *testing.T) {
	_, err := execute(t,
		"--query", "(q) @x",
		"--template", "t",
		"--language", "klingon",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "klingon")
}

func TestRootFailsWithoutRules(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn main() {}"), 0o644))

	_, err := execute(t, file)
	require.Error(t, err)
}
