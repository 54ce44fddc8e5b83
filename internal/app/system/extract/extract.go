// Package extract pulls plain text out of uploaded bill documents so bills
// can be searched by their contents. Extraction is best effort: callers
// treat a failure as "no text", never as a failed upload.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxDocumentSize caps uploaded bill documents at 10 MB.
const MaxDocumentSize = 10 << 20

// Content types accepted for bill documents.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType is returned for any content type other than PDF or DOCX.
var ErrUnsupportedType = errors.New("unsupported document type (PDF or DOCX required)")

// AllowedContentType reports whether ct is an accepted upload type.
func AllowedContentType(ct string) bool {
	return ct == TypePDF || ct == TypeDOCX
}

// ContentTypeForFilename maps a filename extension to the accepted content
// type, for browsers that send a generic octet-stream type.
func ContentTypeForFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return TypePDF, true
	case ".docx":
		return TypeDOCX, true
	}
	return "", false
}

// Text extracts plain text from a PDF or DOCX document.
func Text(data []byte, contentType string) (string, error) {
	switch contentType {
	case TypePDF:
		return pdfText(data)
	case TypeDOCX:
		return docxText(data)
	}
	return "", ErrUnsupportedType
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	textReader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// docxText reads word/document.xml from the DOCX archive and collects the
// text runs, inserting a newline per paragraph.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx missing word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				buf.Write(el)
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
