// Package languages is the static grammar registry. It resolves a
// user-supplied label (language name or file extension) to a tree-sitter
// grammar handle obtained through each binding's sanctioned entry point.
package languages

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	tree_sitter_dart "github.com/UserNobody14/tree-sitter-dart/bindings/go"
	tree_sitter_arduino "github.com/tree-sitter-grammars/tree-sitter-arduino/bindings/go"
	tree_sitter_chatito "github.com/tree-sitter-grammars/tree-sitter-chatito/bindings/go"
	tree_sitter_hcl "github.com/tree-sitter-grammars/tree-sitter-hcl/bindings/go"
	tree_sitter_lua "github.com/tree-sitter-grammars/tree-sitter-lua/bindings/go"
	tree_sitter_properties "github.com/tree-sitter-grammars/tree-sitter-properties/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_haskell "github.com/tree-sitter/tree-sitter-haskell/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_julia "github.com/tree-sitter/tree-sitter-julia/bindings/go"
	tree_sitter_ocaml "github.com/tree-sitter/tree-sitter-ocaml/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrUnsupportedLanguage indicates no grammar is registered for a label.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Entry describes one registered grammar: a display name, the set of
// lowercase labels (aliases and file extensions) that select it, and a
// thunk producing the grammar handle.
type Entry struct {
	// Name is the human-readable language name. Lookup against it is
	// case-insensitive.
	Name string

	// Labels are lowercase aliases and file extensions. Lookup against
	// them is exact.
	Labels []string

	language func() *tree_sitter.Language

	once   sync.Once
	cached *tree_sitter.Language
}

// Language returns the grammar handle for this entry. The handle is built
// on first use and shared afterwards; grammar handles are read-only and
// safe to share process-wide.
func (e *Entry) Language() *tree_sitter.Language {
	e.once.Do(func() {
		e.cached = e.language()
	})
	return e.cached
}

// registry is the static catalogue. It covers every grammar binding the
// module ships. Extension labels follow the conventions used by each
// language's toolchain; several require explicit aliases because the
// grammar name differs from the common extension.
var registry = []*Entry{
	{
		Name:     "Rust",
		Labels:   []string{"rust", "rs"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	},
	{
		Name:     "Go",
		Labels:   []string{"go", "golang"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	},
	{
		Name:   "JavaScript",
		Labels: []string{"javascript", "js", "jsx", "mjs", "cjs"}, // JS grammar handles JSX natively
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
		},
	},
	{
		Name:   "TypeScript",
		Labels: []string{"typescript", "ts", "mts", "cts"},
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
	},
	{
		Name:   "TSX",
		Labels: []string{"tsx"}, // TSX needs the dedicated grammar variant
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		},
	},
	{
		Name:     "Python",
		Labels:   []string{"python", "py", "pyw", "pyx"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	},
	{
		Name:     "C",
		Labels:   []string{"c", "h"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c.Language()) },
	},
	{
		Name:     "C++",
		Labels:   []string{"cpp", "c++", "cc", "cxx", "hpp", "hxx", "hh"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	},
	{
		Name:     "C#",
		Labels:   []string{"csharp", "cs"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()) },
	},
	{
		Name:     "Java",
		Labels:   []string{"java"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	},
	{
		Name:     "Ruby",
		Labels:   []string{"ruby", "rb", "rake"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_ruby.Language()) },
	},
	{
		Name:     "PHP",
		Labels:   []string{"php"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
	},
	{
		Name:     "OCaml",
		Labels:   []string{"ocaml", "ml"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_ocaml.LanguageOCaml()) },
	},
	{
		Name:   "OCaml Interface",
		Labels: []string{"ocaml_interface", "mli"}, // interface files use a separate grammar
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_ocaml.LanguageOCamlInterface())
		},
	},
	{
		Name:     "Scala",
		Labels:   []string{"scala", "sc"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_scala.Language()) },
	},
	{
		Name:     "Haskell",
		Labels:   []string{"haskell", "hs", "lhs"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_haskell.Language()) },
	},
	{
		Name:     "Julia",
		Labels:   []string{"julia", "jl"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_julia.Language()) },
	},
	{
		Name:     "Lua",
		Labels:   []string{"lua"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_lua.Language()) },
	},
	{
		Name:     "HCL",
		Labels:   []string{"hcl", "tf", "tfvars"}, // Terraform uses the HCL grammar
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_hcl.Language()) },
	},
	{
		Name:     "Dart",
		Labels:   []string{"dart"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_dart.Language()) },
	},
	{
		Name:   "Properties",
		Labels: []string{"properties"},
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_properties.Language())
		},
	},
	{
		Name:     "Arduino",
		Labels:   []string{"arduino", "ino"},
		language: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_arduino.Language()) },
	},
	{
		Name:   "Chatito",
		Labels: []string{"chatito", "cht"},
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_chatito.LanguageChatito())
		},
	},
}

// Lookup finds the registry entry for a label. Label lookup is
// lowercase-exact; display name lookup is case-insensitive.
func Lookup(label string) (*Entry, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty label", ErrUnsupportedLanguage)
	}
	for _, entry := range registry {
		if strings.EqualFold(entry.Name, strings.TrimSpace(label)) {
			return entry, nil
		}
		for _, l := range entry.Labels {
			if l == normalized {
				return entry, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, label)
}

// Get resolves a label to its grammar handle.
func Get(label string) (*tree_sitter.Language, error) {
	entry, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	return entry.Language(), nil
}

// Canonical resolves any label or display name to the entry's display name.
// Rule resolution uses this as the alias table: a rule declaring
// language = "rust" matches a file labeled "rs".
func Canonical(label string) (string, error) {
	entry, err := Lookup(label)
	if err != nil {
		return "", err
	}
	return entry.Name, nil
}

// Supports reports whether a label resolves to a registered grammar.
func Supports(label string) bool {
	_, err := Lookup(label)
	return err == nil
}

// FromPath resolves a file path to its registry entry by extension.
func FromPath(path string) (*Entry, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: no extension on %q", ErrUnsupportedLanguage, path)
	}
	return Lookup(ext)
}

// Names returns the sorted display names of all registered languages.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, entry := range registry {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

// Labels returns the labels registered for a display name, in registry
// order. It returns nil for unknown names.
func Labels(name string) []string {
	for _, entry := range registry {
		if strings.EqualFold(entry.Name, name) {
			out := make([]string, len(entry.Labels))
			copy(out, entry.Labels)
			return out
		}
	}
	return nil
}
