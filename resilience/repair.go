package resilience

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoteKeyRe = regexp.MustCompile(`'([^'\n]*)'\s*:`)
)

var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
)

// Repair applies best-effort syntactic corrections to near-valid JSON:
// trailing commas, smart quotes, single-quoted keys, stray control
// characters. It never fabricates missing semantic content. Already-valid
// input is returned unchanged.
func Repair(s string) string {
	if gjson.Valid(s) {
		return s
	}

	r := smartQuoteReplacer.Replace(s)
	r = trailingCommaRe.ReplaceAllString(r, "$1")
	r = singleQuoteKeyRe.ReplaceAllString(r, `"$1":`)
	r = stripControlChars(r)
	return r
}

// stripControlChars removes control characters JSON forbids inside documents,
// keeping the usual whitespace.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
