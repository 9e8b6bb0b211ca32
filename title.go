package chatlib

import (
	"strings"

	"github.com/rivo/uniseg"
)

// MaxTitleLength is the number of user-perceived characters kept when a
// title is derived from a message.
const MaxTitleLength = 50

// TitleEllipsis marks a derived title that was truncated.
const TitleEllipsis = "..."

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// DeriveTitle turns a message body into a session title: line breaks become
// spaces, surrounding whitespace is trimmed, and the result is cut to
// MaxTitleLength grapheme clusters with TitleEllipsis appended when cut.
func DeriveTitle(text string) string {
	flat := strings.TrimSpace(newlineReplacer.Replace(text))
	if flat == "" {
		return ""
	}

	var b strings.Builder
	rest := flat
	state := -1
	for n := 0; n < MaxTitleLength && rest != ""; n++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		b.WriteString(cluster)
	}
	if rest == "" {
		return flat
	}
	return b.String() + TitleEllipsis
}
