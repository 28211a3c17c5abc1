// Package ooxml decodes the word-processing parts of an OOXML package
// (document.xml, numbering.xml, styles.xml) into typed Go values.
package ooxml

import (
	"encoding/xml"
	"io"
)

// ValAttr models the common OOXML pattern of an element carrying only a
// single "val" attribute, e.g. <w:jc w:val="center"/>.
type ValAttr struct {
	Val string `xml:"val,attr"`
}

// Document is the root of word/document.xml.
type Document struct {
	XMLName xml.Name `xml:"document"`
	Body    Body     `xml:"body"`
}

// BodyItem is one ordered child of the document body: either a paragraph
// or a table, never both. Document order between the two is significant
// to the walker, which is why Body keeps a flat slice instead of two
// separate ones.
type BodyItem struct {
	Paragraph *Paragraph
	Table     *Tbl
}

// Body holds the ordered paragraph/table stream plus the section
// properties (margins, page size) that normally trail the body.
type Body struct {
	Items  []BodyItem
	SectPr *SectPr
}

// UnmarshalXML walks the raw token stream instead of relying on struct
// tags, because encoding/xml cannot interleave two differently-named
// repeated elements (w:p, w:tbl) into a single ordered slice.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "p":
				var p Paragraph
				if err := d.DecodeElement(&p, &se); err != nil {
					return err
				}
				b.Items = append(b.Items, BodyItem{Paragraph: &p})
			case "tbl":
				var t Tbl
				if err := d.DecodeElement(&t, &se); err != nil {
					return err
				}
				b.Items = append(b.Items, BodyItem{Table: &t})
			case "sectPr":
				var s SectPr
				if err := d.DecodeElement(&s, &se); err != nil {
					return err
				}
				b.SectPr = &s
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if se.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

// Paragraph is a w:p element.
type Paragraph struct {
	PPr *PPr   `xml:"pPr"`
	Rs  []Run  `xml:"r"`
}

// Run is a w:r element: a contiguous span of text sharing run properties.
type Run struct {
	RPr                   *RPr   `xml:"rPr"`
	Text                  *Text  `xml:"t"`
	Br                    *Br    `xml:"br"`
	Tab                   *Empty `xml:"tab"`
	Drawing               *Empty `xml:"drawing"`
	LastRenderedPageBreak *Empty `xml:"lastRenderedPageBreak"`
}

type Text struct {
	Content string `xml:",chardata"`
	Space   string `xml:"http://www.w3.org/XML/1998/namespace space,attr"`
}

type Br struct {
	Type string `xml:"type,attr"`
}

type Empty struct{}

// PPr is paragraph-level formatting, w:pPr.
type PPr struct {
	PStyle       *ValAttr `xml:"pStyle"`
	NumPr        *NumPr   `xml:"numPr"`
	Jc           *ValAttr `xml:"jc"`
	Spacing      *Spacing `xml:"spacing"`
	Ind          *Ind     `xml:"ind"`
	KeepNext     *Empty   `xml:"keepNext"`
	KeepLines    *Empty   `xml:"keepLines"`
	WidowControl *Empty   `xml:"widowControl"`
	RPr          *RPr     `xml:"rPr"`
}

type NumPr struct {
	Ilvl  *ValAttr `xml:"ilvl"`
	NumId *ValAttr `xml:"numId"`
}

type Spacing struct {
	Before   string `xml:"before,attr"`
	After    string `xml:"after,attr"`
	Line     string `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"`
}

type Ind struct {
	Left      string `xml:"left,attr"`
	Right     string `xml:"right,attr"`
	FirstLine string `xml:"firstLine,attr"`
}

// RPr is run-level formatting, w:rPr.
type RPr struct {
	RFonts *RFonts  `xml:"rFonts"`
	Sz     *ValAttr `xml:"sz"`
	B      *BoolVal `xml:"b"`
	I      *BoolVal `xml:"i"`
	U      *ValAttr `xml:"u"`
	Caps   *BoolVal `xml:"caps"`
	Strike *BoolVal `xml:"strike"`
}

// BoolVal models w:b/w:i/etc, which are present-means-true unless an
// explicit val="0"/"false" attribute says otherwise.
type BoolVal struct {
	Val string `xml:"val,attr"`
}

func (b *BoolVal) Bool() bool {
	if b == nil {
		return false
	}
	switch b.Val {
	case "", "1", "true", "on":
		return true
	default:
		return false
	}
}

type RFonts struct {
	Ascii string `xml:"ascii,attr"`
}

// SectPr is section properties: page size and margins, w:sectPr.
type SectPr struct {
	PgSz *PgSz `xml:"pgSz"`
	PgMar *PgMar `xml:"pgMar"`
}

type PgSz struct {
	W    string `xml:"w,attr"`
	H    string `xml:"h,attr"`
	Orient string `xml:"orient,attr"`
}

type PgMar struct {
	Top    string `xml:"top,attr"`
	Bottom string `xml:"bottom,attr"`
	Left   string `xml:"left,attr"`
	Right  string `xml:"right,attr"`
	Header string `xml:"header,attr"`
	Footer string `xml:"footer,attr"`
}

// Tbl is a w:tbl element.
type Tbl struct {
	TblPr   *TblPr   `xml:"tblPr"`
	TblGrid *TblGrid `xml:"tblGrid"`
	Trs     []Tr     `xml:"tr"`
}

type TblPr struct {
	TblStyle *ValAttr    `xml:"tblStyle"`
	TblW     *TblWidth   `xml:"tblW"`
	TblLook  *TblLook    `xml:"tblLook"`
	TblBorders *TblBorders `xml:"tblBorders"`
	Jc       *ValAttr    `xml:"jc"`
}

type TblWidth struct {
	W    string `xml:"w,attr"`
	Type string `xml:"type,attr"`
}

type TblLook struct {
	Val string `xml:"val,attr"`
}

type TblBorders struct {
	Top     *CTBorder `xml:"top"`
	Left    *CTBorder `xml:"left"`
	Bottom  *CTBorder `xml:"bottom"`
	Right   *CTBorder `xml:"right"`
	InsideH *CTBorder `xml:"insideH"`
	InsideV *CTBorder `xml:"insideV"`
}

type CTBorder struct {
	Val   string `xml:"val,attr"`
	Sz    string `xml:"sz,attr"`
	Color string `xml:"color,attr"`
}

type TblGrid struct {
	Cols []GridCol `xml:"gridCol"`
}

type GridCol struct {
	W string `xml:"w,attr"`
}

type Tr struct {
	TrPr *TrPr `xml:"trPr"`
	Tcs  []Tc  `xml:"tc"`
}

type TrPr struct {
	TrHeight  *TrHeight `xml:"trHeight"`
	TblHeader *Empty    `xml:"tblHeader"`
}

type TrHeight struct {
	Val   string `xml:"val,attr"`
	HRule string `xml:"hRule,attr"`
}

type Tc struct {
	TcPr *TcPr       `xml:"tcPr"`
	Ps   []Paragraph `xml:"p"`
}

type TcPr struct {
	TcW        *TblWidth   `xml:"tcW"`
	GridSpan   *ValAttr    `xml:"gridSpan"`
	VMerge     *VMerge     `xml:"vMerge"`
	TcBorders  *TcBorders  `xml:"tcBorders"`
}

// VMerge carries an empty or "restart"/"continue" val; an absent val
// attribute means "continue" per the OOXML spec.
type VMerge struct {
	Val string `xml:"val,attr"`
}

type TcBorders struct {
	Top    *CTBorder `xml:"top"`
	Left   *CTBorder `xml:"left"`
	Bottom *CTBorder `xml:"bottom"`
	Right  *CTBorder `xml:"right"`
}

// Numbering is word/numbering.xml.
type Numbering struct {
	XMLName      xml.Name      `xml:"numbering"`
	Nums         []Num         `xml:"num"`
	AbstractNums []AbstractNum `xml:"abstractNum"`
}

type Num struct {
	NumId         string  `xml:"numId,attr"`
	AbstractNumId ValAttr `xml:"abstractNumId"`
}

type AbstractNum struct {
	AbstractNumId string `xml:"abstractNumId,attr"`
	Lvls          []Lvl  `xml:"lvl"`
}

type Lvl struct {
	Ilvl    string  `xml:"ilvl,attr"`
	Start   ValAttr `xml:"start"`
	NumFmt  ValAttr `xml:"numFmt"`
	LvlText ValAttr `xml:"lvlText"`
}

// Styles is word/styles.xml.
type Styles struct {
	XMLName xml.Name `xml:"styles"`
	Styles  []Style  `xml:"style"`
}

type Style struct {
	StyleId string   `xml:"styleId,attr"`
	Type    string   `xml:"type,attr"`
	Name    *ValAttr `xml:"name"`
	BasedOn *ValAttr `xml:"basedOn"`
	PPr     *PPr     `xml:"pPr"`
	RPr     *RPr     `xml:"rPr"`
}
