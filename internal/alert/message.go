package alert

import (
	"fmt"
	"strings"

	"github.com/tonypeng1/moomoo/internal/episode"
)

const (
	// DefaultMaxMessageLen caps the SMS body at two concatenated
	// segments worth of characters.
	DefaultMaxMessageLen = 320

	notifyTitle = "moomoo signal"
)

// Summary renders the one-line alert body: the matched terms followed
// by how each was found. The result is truncated to maxLen runes so
// multi-byte terms are never cut mid-character.
func Summary(ep *episode.Episode, maxLen int) string {
	var b strings.Builder
	b.WriteString("moomoo signal: ")
	b.WriteString(strings.Join(ep.Terms(), ", "))

	for _, f := range ep.Findings {
		parts := make([]string, 0, len(f.Methods))
		for _, m := range f.Methods {
			parts = append(parts, fmt.Sprintf("%s/%s", m.Kind, m.Variant))
		}
		fmt.Fprintf(&b, " [%s: %s]", f.Term, strings.Join(parts, " "))
	}

	return truncate(b.String(), maxLen)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
