package memory

import (
	"fmt"
	"strings"
)

// sanitize scrubs control characters (other than \n, \t and \r) that would
// break downstream JSON extraction or prompt rendering. It is applied to
// text ingested into semantic memory (document files and fetched web
// pages); episodic stimulus/action content and LLM completion content are
// not passed through it.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stringifyAny(v any) string {
	return fmt.Sprintf("%v", v)
}
