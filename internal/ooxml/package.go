package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidPackage is the only error that propagates out of the core
// engine uncaught: the input could not be parsed as an OOXML
// word-processing package at all.
var ErrInvalidPackage = errors.New("ooxml: invalid package")

// Package is the subset of an opened .docx archive the engine consumes.
// Numbering and Styles are nil when the corresponding part is absent
// (MissingOptionalPart in the error taxonomy) rather than an error.
type Package struct {
	Document  *Document
	Numbering *Numbering
	Styles    *Styles
}

// Open unpacks r as a zip archive and decodes its word-processing parts.
func Open(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docFile, ok := files["word/document.xml"]
	if !ok {
		return nil, fmt.Errorf("%w: missing word/document.xml", ErrInvalidPackage)
	}
	doc, err := decodeDocument(docFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	pkg := &Package{Document: doc}

	if f, ok := files["word/numbering.xml"]; ok {
		if n, err := decodeNumbering(f); err == nil {
			pkg.Numbering = n
		}
	}
	if f, ok := files["word/styles.xml"]; ok {
		if s, err := decodeStyles(f); err == nil {
			pkg.Styles = s
		}
	}

	return pkg, nil
}

func decodeDocument(f *zip.File) (*Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var doc Document
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeNumbering(f *zip.File) (*Numbering, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var n Numbering
	if err := xml.NewDecoder(rc).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeStyles(f *zip.File) (*Styles, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var s Styles
	if err := xml.NewDecoder(rc).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
