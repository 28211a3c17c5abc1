package ooxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) (*bytes.Reader, int64) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return bytes.NewReader(buf.Bytes()), int64(buf.Len())
}

func TestOpenRequiresDocumentXML(t *testing.T) {
	r, size := buildZip(t, map[string]string{"word/styles.xml": `<styles/>`})
	_, err := Open(r, size)
	if !errors.Is(err, ErrInvalidPackage) {
		t.Fatalf("got %v, want ErrInvalidPackage", err)
	}
}

func TestOpenToleratesMissingOptionalParts(t *testing.T) {
	r, size := buildZip(t, map[string]string{
		"word/document.xml": `<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><body><p><r><t>hi</t></r></p></body></document>`,
	})
	pkg, err := Open(r, size)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Numbering != nil {
		t.Fatal("expected nil Numbering when numbering.xml absent")
	}
	if pkg.Styles != nil {
		t.Fatal("expected nil Styles when styles.xml absent")
	}
	if len(pkg.Document.Body.Items) != 1 {
		t.Fatalf("got %d body items, want 1", len(pkg.Document.Body.Items))
	}
}
