package transformer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	t.Parallel()

	captures := []Capture{
		{Name: "l", Text: "a"},
		{Name: "r", Text: "b + c"},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"substitutes named captures", "pow(${l}, ${r})", "pow(a, b + c)"},
		{"literal text passes through", "nothing here", "nothing here"},
		{"unresolved placeholder is verbatim", "f(${l}, ${missing})", "f(a, ${missing})"},
		{"adjacent placeholders", "${l}${r}", "ab + c"},
		{"escape emits literal placeholder", "$${l} is ${l}", "${l} is a"},
		{"invalid names are not tokens", "${l-r} ${}", "${l-r} ${}"},
		{"dollar without braces", "$l ${l}", "$l a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExpandTemplate(tt.template, captures))
		})
	}
}

func TestExpandTemplateFirstBindingWins(t *testing.T) {
	t.Parallel()

	captures := []Capture{
		{Name: "x", Text: "first"},
		{Name: "x", Text: "second"},
	}
	require.Equal(t, "first", ExpandTemplate("${x}", captures))
}

func TestExpandTemplateNoCaptures(t *testing.T) {
	t.Parallel()

	require.Equal(t, "${x}", ExpandTemplate("${x}", nil))
}
