package params

import (
	"strings"

	"golang.org/x/net/html"
)

// Transform rewrites a raw parameter value before it is validated.
type Transform func(string) string

var newlineReplacer = strings.NewReplacer("\r", "", "\n", "")

// StripNewlines removes carriage returns and line feeds.
func StripNewlines(value string) string {
	return newlineReplacer.Replace(value)
}

// StripTags removes markup tags and comments, keeping the text between them
// exactly as written (entities are not decoded).
func StripTags(value string) string {
	if !strings.ContainsAny(value, "<>") {
		return value
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(value))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF; a strings.Reader produces no other error.
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// ToUpper upper-cases the value.
func ToUpper(value string) string {
	return strings.ToUpper(value)
}
