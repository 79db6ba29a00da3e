package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontFamily   = "go"
	bulletIndent = 6.0
)

func renderPDF(blocks []Block, meta Metadata) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// The core fonts only encode cp1252.
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}
	if meta.Subject != "" {
		pdf.SetSubject(meta.Subject, true)
	}
	if len(meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}

	left, _, _, _ := pdf.GetMargins()
	pdf.AddPage()

	for _, bl := range blocks {
		switch bl.Kind {
		case BlockTitle:
			pdf.SetTitle(bl.Text, true)
			pdf.SetFont(fontFamily, "B", 18)
			pdf.MultiCell(0, 9, bl.Text, "", "C", false)
			pdf.Ln(4)
		case BlockHeading:
			pdf.Ln(2)
			pdf.SetFont(fontFamily, "B", 13)
			pdf.MultiCell(0, 7, bl.Text, "", "L", false)
			pdf.Ln(1)
		case BlockParagraph:
			pdf.SetFont(fontFamily, "", 11)
			pdf.MultiCell(0, 6, bl.Text, "", "L", false)
			pdf.Ln(2)
		case BlockBullet:
			pdf.SetFont(fontFamily, "", 11)
			pdf.SetX(left + bulletIndent)
			pdf.MultiCell(0, 6, bullet+" "+bl.Text, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
