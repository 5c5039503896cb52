package languages

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupByExtensionLabel(t *testing.T) {
	t.Parallel()

	entry, err := Lookup("rs")
	require.NoError(t, err)
	require.Equal(t, "Rust", entry.Name)
}

func TestLookupByNameIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"Rust", "rust", "RUST", "rUsT"} {
		entry, err := Lookup(label)
		require.NoError(t, err, "label %q", label)
		require.Equal(t, "Rust", entry.Name)
	}
}

func TestLookupNormalizesLabelCase(t *testing.T) {
	t.Parallel()

	// Labels are stored lowercase; input is normalized before the exact
	// match, so "RS" resolves the same as "rs".
	_, err := Lookup("RS")
	require.NoError(t, err)

	entry, err := Lookup("ocaml_interface")
	require.NoError(t, err)
	require.Equal(t, "OCaml Interface", entry.Name)
}

func TestLookupUnknownLabel(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"klingon", "", "  "} {
		_, err := Lookup(label)
		require.ErrorIs(t, err, ErrUnsupportedLanguage, "label %q", label)
	}
}

func TestGetReturnsUsableGrammar(t *testing.T) {
	t.Parallel()

	lang, err := Get("go")
	require.NoError(t, err)
	require.NotNil(t, lang)

	// Handles are built once and shared.
	again, err := Get("golang")
	require.NoError(t, err)
	require.Same(t, lang, again)
}

func TestCanonicalResolvesAliases(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"rs":         "Rust",
		"rust":       "Rust",
		"Rust":       "Rust",
		"js":         "JavaScript",
		"jsx":        "JavaScript",
		"tsx":        "TSX",
		"tf":         "HCL",
		"c++":        "C++",
		"typescript": "TypeScript",
	}
	for label, want := range tests {
		got, err := Canonical(label)
		require.NoError(t, err, "label %q", label)
		require.Equal(t, want, got)
	}
}

func TestFromPath(t *testing.T) {
	t.Parallel()

	entry, err := FromPath("src/lib.rs")
	require.NoError(t, err)
	require.Equal(t, "Rust", entry.Name)

	entry, err = FromPath("main.go")
	require.NoError(t, err)
	require.Equal(t, "Go", entry.Name)

	_, err = FromPath("Makefile")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = FromPath("notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestNamesAreSortedAndComplete(t *testing.T) {
	t.Parallel()

	names := Names()
	require.True(t, sort.StringsAreSorted(names))
	require.Len(t, names, len(registry))
	require.Contains(t, names, "Rust")
	require.Contains(t, names, "Chatito")
}

func TestLabelsReturnsCopy(t *testing.T) {
	t.Parallel()

	labels := Labels("Rust")
	require.Equal(t, []string{"rust", "rs"}, labels)

	labels[0] = "mutated"
	require.Equal(t, []string{"rust", "rs"}, Labels("Rust"))

	require.Nil(t, Labels("klingon"))
}

func TestEveryRegisteredGrammarLoads(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		lang, err := Get(name)
		require.NoError(t, err, "language %s", name)
		require.NotNil(t, lang, "language %s", name)
	}
}
