// Package upload reads a single file from a multipart request into memory,
// enforcing a size ceiling and the pdf/doc/docx/txt allow-list.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoFile          = errors.New("no file uploaded")
	ErrMalformed       = errors.New("malformed multipart request")
)

const (
	maxFieldBytes = 64 << 10
	maxFields     = 32
)

// Kind is the normalized file format, named after its extension.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOC  Kind = "doc"
	KindDOCX Kind = "docx"
	KindTXT  Kind = "txt"
)

var mimeKinds = map[string]Kind{
	"application/pdf":    KindPDF,
	"application/msword": KindDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDOCX,
	"text/plain": KindTXT,
}

var extKinds = map[string]Kind{
	".pdf":  KindPDF,
	".doc":  KindDOC,
	".docx": KindDOCX,
	".txt":  KindTXT,
}

// Limits bounds a single upload. MaxBytes <= 0 disables the size check.
type Limits struct {
	MaxBytes int64
}

type File struct {
	Name        string
	ContentType string
	Kind        Kind
	Size        int64
	Data        []byte
}

type Upload struct {
	File   *File
	Fields map[string]string
}

// Field returns the trimmed value of a plain form field.
func (u *Upload) Field(name string) string {
	return strings.TrimSpace(u.Fields[name])
}

// KindOf classifies a file by extension, falling back to the declared MIME
// type when the name has no extension. ok is false for anything outside the
// allow-list.
func KindOf(name, contentType string) (Kind, bool) {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		k, ok := extKinds[ext]
		return k, ok
	}
	return KindOfMIME(contentType)
}

// KindOfMIME classifies a declared Content-Type, ignoring its parameters.
func KindOfMIME(contentType string) (Kind, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	k, ok := mimeKinds[mt]
	return k, ok
}

// Read streams the multipart body of r and buffers the file sent under
// field. The type check happens before any file bytes are read, so a
// disallowed file is rejected with ErrUnsupportedType whatever its size.
// A file of exactly limits.MaxBytes is accepted; one byte more yields
// ErrTooLarge.
func Read(r *http.Request, field string, limits Limits) (*Upload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	u := &Upload{Fields: map[string]string{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		if part.FileName() == "" {
			if len(u.Fields) >= maxFields {
				_ = part.Close()
				return nil, fmt.Errorf("%w: too many fields", ErrMalformed)
			}
			v, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			u.Fields[part.FormName()] = string(v)
			continue
		}

		if part.FormName() != field {
			_ = part.Close()
			continue
		}
		if u.File != nil {
			_ = part.Close()
			return nil, fmt.Errorf("%w: more than one file", ErrMalformed)
		}

		f, err := readFile(part.FileName(), part.Header.Get("Content-Type"), part, limits)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		u.File = f
	}

	if u.File == nil {
		return nil, ErrNoFile
	}
	return u, nil
}

func readFile(name, contentType string, body io.Reader, limits Limits) (*File, error) {
	name = filepath.Base(name)
	kind, ok := KindOf(name, contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: pdf, doc, docx, txt)", ErrUnsupportedType, name)
	}

	src := body
	if limits.MaxBytes > 0 {
		src = io.LimitReader(body, limits.MaxBytes+1)
	}
	var buf bytes.Buffer
	n, err := buf.ReadFrom(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if limits.MaxBytes > 0 && n > limits.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limits.MaxBytes)
	}

	return &File{
		Name:        name,
		ContentType: contentType,
		Kind:        kind,
		Size:        n,
		Data:        buf.Bytes(),
	}, nil
}
