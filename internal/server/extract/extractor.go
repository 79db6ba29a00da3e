// Package extract turns an uploaded pdf, doc, docx or txt file into the
// normalized plain text handed to the AI gateway.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/server/upload"
)

var (
	ErrEmptyText         = errors.New("no text could be extracted from the file")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

const (
	FidelityFull       = "full"
	FidelityBestEffort = "best-effort"
)

type Result struct {
	Text     string
	Kind     upload.Kind
	Fidelity string
}

// Extractor extracts plain text from uploaded documents.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the declared MIME type and falls back to the kind
// derived from the file extension.
func (e *Extractor) Extract(f *upload.File) (*Result, error) {
	kind, ok := upload.KindOfMIME(f.ContentType)
	if !ok {
		kind = f.Kind
	}
	return e.ExtractBytes(f.Data, kind)
}

func (e *Extractor) ExtractBytes(content []byte, kind upload.Kind) (*Result, error) {
	var (
		text     string
		err      error
		fidelity = FidelityFull
	)
	switch kind {
	case upload.KindPDF:
		text, err = extractPDF(content)
	case upload.KindDOCX:
		text, err = extractDOCX(content)
	case upload.KindDOC:
		text = extractDOC(content)
		fidelity = FidelityBestEffort
	case upload.KindTXT:
		text = extractPlain(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, err
	}

	text = normalize(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	return &Result{Text: text, Kind: kind, Fidelity: fidelity}, nil
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
