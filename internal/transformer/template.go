package transformer

import (
	"regexp"
	"strings"
)

// Capture is one (name, text) binding frozen at match collection time.
// Text is the exact source slice of the captured subtree, including all
// whitespace and comments; later edits never mutate it.
type Capture struct {
	Name string
	Text string
}

// placeholderPattern matches ${name} tokens and their $${name} escaped
// form. Names are restricted to [A-Za-z0-9_]+.
var placeholderPattern = regexp.MustCompile(`\$(\$?)\{([A-Za-z0-9_]+)\}`)

// ExpandTemplate substitutes every ${name} placeholder in template with
// the text of the first capture bound to that name. Placeholders with no
// matching capture are emitted verbatim. The escaped form $${name}
// produces a literal ${name}.
func ExpandTemplate(template string, captures []Capture) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		if strings.HasPrefix(token, "$$") {
			return token[1:]
		}
		name := token[2 : len(token)-1]
		for _, c := range captures {
			if c.Name == name {
				return c.Text
			}
		}
		return token
	})
}
