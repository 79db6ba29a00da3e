package export

import (
	"strings"
	"unicode/utf8"
)

const bullet = "•"

func underline(s string, ch string) string {
	return strings.Repeat(ch, utf8.RuneCountInString(s))
}

func renderTXT(blocks []Block) string {
	var b strings.Builder
	for i, bl := range blocks {
		switch bl.Kind {
		case BlockTitle:
			t := strings.ToUpper(bl.Text)
			b.WriteString(t + "\n" + underline(t, "=") + "\n")
		case BlockHeading:
			b.WriteString("\n" + bl.Text + "\n" + underline(bl.Text, "-") + "\n")
		case BlockParagraph:
			if i > 0 && blocks[i-1].Kind == BlockTitle {
				b.WriteString("\n")
			}
			b.WriteString(bl.Text + "\n")
		case BlockBullet:
			b.WriteString(bullet + " " + bl.Text + "\n")
		}
	}
	return b.String()
}
