package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
)

func extractPDF(content []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("extract pdf: malformed document: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract pdf: %w", err)
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		buf.WriteString(pageText(page))
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// pageText walks the page content like pdf.Page.GetPlainText, but picks the
// decoder of each font through fontEncoding.
func pageText(p pdf.Page) string {
	contents := p.V.Key("Contents")
	if contents.Kind() == pdf.Null {
		return ""
	}

	encodings := make(map[string]pdf.TextEncoding)
	for _, name := range p.Fonts() {
		encodings[name] = fontEncoding(p.Font(name))
	}

	var b strings.Builder
	var enc pdf.TextEncoding = rawEncoding{}
	show := func(s string) { b.WriteString(enc.Decode(s)) }

	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "BT", "T*":
			b.WriteByte('\n')
		case "Tf":
			if len(args) != 2 {
				return
			}
			if e, ok := encodings[args[0].Name()]; ok {
				enc = e
			} else {
				enc = rawEncoding{}
			}
		case "Tj", "'", "\"":
			if len(args) > 0 {
				show(args[len(args)-1].RawString())
			}
		case "TJ":
			if len(args) != 1 {
				return
			}
			for i := 0; i < args[0].Len(); i++ {
				if x := args[0].Index(i); x.Kind() == pdf.String {
					show(x.RawString())
				}
			}
		}
	})
	return b.String()
}

// identityUCS is the whole-plane ToUnicode map written for Identity-H fonts
// whose codes are UTF-16 code units.
var identityUCS = regexp.MustCompile(`(?i)1\s+beginbfrange\s*<0000>\s*<ffff>\s*<0000>\s*endbfrange`)

// fontEncoding decodes identity-mapped Identity-H fonts as UTF-16BE; the
// reader's own cmap decoder only shifts the low byte across a range.
func fontEncoding(f pdf.Font) pdf.TextEncoding {
	if f.V.Key("Encoding").Name() == "Identity-H" {
		if tu := f.V.Key("ToUnicode"); tu.Kind() == pdf.Stream && isIdentityCMap(tu) {
			return utf16Encoding{}
		}
	}
	return f.Encoder()
}

func isIdentityCMap(v pdf.Value) bool {
	rc := v.Reader()
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, 64<<10))
	if err != nil {
		return false
	}
	return identityUCS.Match(b) && !bytes.Contains(b, []byte("beginbfchar"))
}

type utf16Encoding struct{}

func (utf16Encoding) Decode(raw string) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	return string(utf16.Decode(units))
}

type rawEncoding struct{}

func (rawEncoding) Decode(raw string) string { return raw }
