package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDocxText(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Section 1.</w:t></w:r><w:r><w:t> Housing standards.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Section 2. Enforcement.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := Text(doc, TypeDOCX)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if !strings.Contains(text, "Section 1. Housing standards.") {
		t.Errorf("missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "Section 2. Enforcement.") {
		t.Errorf("missing second paragraph: %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Error("paragraphs should be newline-separated")
	}
}

func TestDocxText_MissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/other.xml")
	w.Write([]byte("<x/>"))
	zw.Close()

	if _, err := Text(buf.Bytes(), TypeDOCX); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestText_UnsupportedType(t *testing.T) {
	_, err := Text([]byte("hello"), "text/plain")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestText_CorruptPDF(t *testing.T) {
	if _, err := Text([]byte("not a pdf"), TypePDF); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestAllowedContentType(t *testing.T) {
	if !AllowedContentType(TypePDF) || !AllowedContentType(TypeDOCX) {
		t.Error("pdf and docx must be allowed")
	}
	if AllowedContentType("image/png") {
		t.Error("png must not be allowed")
	}
}

func TestContentTypeForFilename(t *testing.T) {
	ct, ok := ContentTypeForFilename("HB-1001.PDF")
	if !ok || ct != TypePDF {
		t.Errorf("got %q, %v", ct, ok)
	}
	if _, ok := ContentTypeForFilename("bill.txt"); ok {
		t.Error("txt should not map to an accepted type")
	}
}
