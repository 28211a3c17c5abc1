package ooxml

import (
	"encoding/xml"
	"testing"
)

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>first paragraph</t></r></p>
    <tbl>
      <tr><tc><p><r><t>cell</t></r></p></tc></tr>
    </tbl>
    <p><r><t>second paragraph</t></r></p>
    <sectPr><pgSz w="11907" h="16840"/></sectPr>
  </body>
</document>`

func TestBodyUnmarshalPreservesDocumentOrder(t *testing.T) {
	var doc Document
	if err := xml.Unmarshal([]byte(sampleDocumentXML), &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	items := doc.Body.Items
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (p, tbl, p)", len(items))
	}
	if items[0].Paragraph == nil || items[0].Paragraph.Rs[0].Text.Content != "first paragraph" {
		t.Fatalf("item 0 is not the first paragraph: %+v", items[0])
	}
	if items[1].Table == nil {
		t.Fatalf("item 1 is not the table: %+v", items[1])
	}
	if items[2].Paragraph == nil || items[2].Paragraph.Rs[0].Text.Content != "second paragraph" {
		t.Fatalf("item 2 is not the second paragraph: %+v", items[2])
	}

	if doc.Body.SectPr == nil || doc.Body.SectPr.PgSz == nil || doc.Body.SectPr.PgSz.W != "11907" {
		t.Fatalf("expected sectPr/pgSz to be decoded, got %+v", doc.Body.SectPr)
	}
}

func TestBoolValDefaultsTrueWhenValAbsent(t *testing.T) {
	var b *BoolVal
	if b.Bool() {
		t.Fatal("expected nil BoolVal to be false")
	}
	present := &BoolVal{}
	if !present.Bool() {
		t.Fatal("expected a present-but-empty w:b to mean true")
	}
	off := &BoolVal{Val: "0"}
	if off.Bool() {
		t.Fatal("expected val=0 to mean false")
	}
}
