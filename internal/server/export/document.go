// Package export renders a title-plus-sections document as PDF, DOCX or
// plain text. All formats are written from the same block layout, so
// section order and bullet text never differ between them.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// ParseFormat accepts pdf, docx and txt in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatDOCX, FormatTXT:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

type Metadata struct {
	Author   string   `json:"author,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

type Section struct {
	Heading string   `json:"heading,omitempty"`
	Body    string   `json:"content,omitempty"`
	Items   []string `json:"items,omitempty"`
}

type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Metadata Metadata  `json:"metadata"`
}

type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockBullet
)

type Block struct {
	Kind BlockKind
	Text string
}

const untitled = "Untitled document"

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Layout normalizes doc into blocks: one title, then for every non-empty
// section its heading, its paragraphs and its bullets.
func Layout(doc *Document) []Block {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = untitled
	}
	blocks := []Block{{Kind: BlockTitle, Text: title}}

	for _, s := range doc.Sections {
		if h := strings.TrimSpace(s.Heading); h != "" {
			blocks = append(blocks, Block{Kind: BlockHeading, Text: h})
		}
		for _, p := range paragraphBreak.Split(strings.ReplaceAll(s.Body, "\r\n", "\n"), -1) {
			if p = strings.TrimSpace(p); p != "" {
				blocks = append(blocks, Block{Kind: BlockParagraph, Text: p})
			}
		}
		for _, it := range s.Items {
			if it = strings.TrimSpace(it); it != "" {
				blocks = append(blocks, Block{Kind: BlockBullet, Text: it})
			}
		}
	}
	return blocks
}

type Rendered struct {
	Bytes       []byte
	ContentType string
	Extension   string
}

// Render writes doc in the requested format.
func Render(doc *Document, format Format) (*Rendered, error) {
	blocks := Layout(doc)
	switch format {
	case FormatPDF:
		b, err := renderPDF(blocks, doc.Metadata)
		if err != nil {
			return nil, err
		}
		return &Rendered{Bytes: b, ContentType: "application/pdf", Extension: "pdf"}, nil
	case FormatDOCX:
		b, err := renderDOCX(blocks, doc.Metadata)
		if err != nil {
			return nil, err
		}
		return &Rendered{
			Bytes:       b,
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Extension:   "docx",
		}, nil
	case FormatTXT:
		return &Rendered{Bytes: []byte(renderTXT(blocks)), ContentType: "text/plain; charset=utf-8", Extension: "txt"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName derives an attachment name such as "lease-review.pdf".
func FileName(title, extension string) string {
	base := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "document"
	}
	if len(base) > 80 {
		base = strings.TrimRight(base[:80], "-")
	}
	return base + "." + extension
}
