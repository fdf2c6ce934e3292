package cache

import "strings"

var punctCanonicalizer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'",
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`,
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"…", "...", // ellipsis
	" ", " ", // no-break space
)

// Normalize canonicalizes input text for hashing: lowercase, punctuation
// variants unified, whitespace collapsed. Two inputs that differ only
// cosmetically normalize identically.
func Normalize(s string) string {
	s = punctCanonicalizer.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
