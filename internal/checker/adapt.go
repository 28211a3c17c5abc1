package checker

import (
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"normaproc/internal/docstruct"
	"normaproc/internal/ooxml"
)

// DocParser turns a .docx package into the flat ParsedDoc shape the
// compliance rules in checker.go understand. It builds that shape from
// two independent passes over the same package: ooxml.Open for the raw
// typographic and table facts (fonts, margins, borders), and
// docstruct.Convert for heading/caption classification, so compliance
// checking rides the same structure-extraction engine the rest of the
// system uses instead of re-deriving it from scratch.
type DocParser struct {
	Config *docstruct.Config
}

// NewDocParser builds a DocParser against the engine's default tuning.
func NewDocParser() *DocParser {
	return &DocParser{Config: docstruct.DefaultConfig()}
}

// Parse opens filePath and builds a ParsedDoc from it.
func (dp *DocParser) Parse(filePath string) (*ParsedDoc, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return dp.build(f, info.Size())
}

func (dp *DocParser) build(r io.ReaderAt, size int64) (*ParsedDoc, error) {
	pkg, err := ooxml.Open(r, size)
	if err != nil {
		return nil, err
	}

	cfg := dp.Config
	if cfg == nil {
		cfg = docstruct.DefaultConfig()
	}
	stream, err := docstruct.Convert(r, size, cfg, docstruct.PassHook)
	if err != nil {
		return nil, err
	}

	return buildParsedDoc(pkg, stream), nil
}

// ParsedDoc is the flat view of a document the compliance rules consume.
type ParsedDoc struct {
	Margins    Margins
	PageSize   PageSize
	Paragraphs []ParsedParagraph
	Tables     []ParsedTable
	Formulas   []ParsedFormula
	Stats      DocStats
}

type DocStats struct {
	TablesCount   int
	ImagesCount   int
	FormulasCount int
	TotalPages    int
}

type Margins struct {
	TopMm    float64
	BottomMm float64
	LeftMm   float64
	RightMm  float64
	HeaderMm float64
	FooterMm float64
}

type PageSize struct {
	WidthMm     float64
	HeightMm    float64
	Orientation string
}

// ParsedParagraph carries both the raw typographic facts (from ooxml)
// and the structural classification grafted on from the docstruct
// engine's heading/numbering detection.
type ParsedParagraph struct {
	Text              string
	Alignment         string
	LineSpacing       float64
	FirstLineIndentMm float64
	SpacingBeforePt   float64
	SpacingAfterPt    float64
	FontName          string
	FontSizePt        float64
	IsBold            bool
	IsItalic          bool
	IsUnderline       bool
	IsAllCaps         bool
	ID                string
	StyleID           string
	IsListItem        bool
	ListLevel         int
	StartsPageBreak   bool
	HasFormula        bool
	PageNumber        int
	KeepLines         bool
	KeepNext          bool
	WidowControl      bool

	// HeuristicHeading/HeuristicLevel come from the docstruct engine's
	// Node classification (style, numbering, or regex-detected headings)
	// rather than from an explicit Word heading style.
	HeuristicHeading bool
	HeuristicLevel   int
}

type ParsedTable struct {
	ID              string
	Alignment       string
	WidthType       string
	WidthValue      float64
	HasHeaderRow    bool
	HasRowBanding   bool
	HasColBanding   bool
	HasBorders      bool
	HasInnerBorders bool
	CellSpacingMm   float64
	RowCount        int
	ColCount        int
	MinRowHeightMm  float64
	HasCaption      bool
	CaptionText     string
	CaptionAbove    bool
	CaptionHasDash  bool
}

// ParsedFormula is retained for the violations/ContentJSON shape, but is
// always empty: internal/ooxml does not model OMath/OMathPara elements,
// and extending it to do so was out of scope for this adapter (see
// DESIGN.md). Formula-related rules therefore contribute zero checks.
type ParsedFormula struct {
	ID           string
	WrapperID    string
	Alignment    string
	HasNumbering bool
}

const twipsPerMm = 56.6929

func twipsToMm(twips string) float64 {
	n, err := strconv.Atoi(twips)
	if err != nil {
		return 0
	}
	return float64(n) / twipsPerMm
}

// twentiethsToPt converts a w:val measured in twentieths of a point
// (used by w:sz and w:spacing before/after) into points.
func twentiethsToPt(v string) float64 {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return float64(n) / 20
}

func buildParsedDoc(pkg *ooxml.Package, stream []docstruct.Element) *ParsedDoc {
	doc := &ParsedDoc{}

	if pkg.Document != nil && pkg.Document.Body != nil && pkg.Document.Body.SectPr != nil {
		sect := pkg.Document.Body.SectPr
		if sect.PgMar != nil {
			doc.Margins = Margins{
				TopMm:    twipsToMm(sect.PgMar.Top),
				BottomMm: twipsToMm(sect.PgMar.Bottom),
				LeftMm:   twipsToMm(sect.PgMar.Left),
				RightMm:  twipsToMm(sect.PgMar.Right),
				HeaderMm: twipsToMm(sect.PgMar.Header),
				FooterMm: twipsToMm(sect.PgMar.Footer),
			}
		}
		if sect.PgSz != nil {
			orientation := sect.PgSz.Orient
			if orientation == "" {
				orientation = "portrait"
			}
			doc.PageSize = PageSize{
				WidthMm:     twipsToMm(sect.PgSz.W),
				HeightMm:    twipsToMm(sect.PgSz.H),
				Orientation: orientation,
			}
		}
	}

	headings := buildHeadingQueue(stream)

	pageNum := 1
	tableIdx := 0
	captions := tableCaptionsInOrder(stream)

	if pkg.Document != nil && pkg.Document.Body != nil {
		for _, item := range pkg.Document.Body.Items {
			switch {
			case item.Paragraph != nil:
				startsBreak := paragraphStartsPageBreak(item.Paragraph)
				if startsBreak {
					pageNum++
				}
				p := buildParagraph(item.Paragraph, pageNum, startsBreak)
				if node, ok := headings.match(p.Text); ok {
					p.HeuristicHeading = node.Source != docstruct.SourceNone
					p.HeuristicLevel = node.Depth
				}
				doc.Paragraphs = append(doc.Paragraphs, p)
			case item.Table != nil:
				var caption string
				if tableIdx < len(captions) {
					caption = captions[tableIdx]
				}
				doc.Tables = append(doc.Tables, buildTable(item.Table, tableIdx, caption))
				tableIdx++
			}
		}
	}

	doc.Stats = DocStats{
		TablesCount: len(doc.Tables),
		TotalPages:  pageNum,
	}
	return doc
}

func paragraphStartsPageBreak(p *ooxml.Paragraph) bool {
	for _, r := range p.Rs {
		if r.Br != nil && r.Br.Type == "page" {
			return true
		}
		if r.LastRenderedPageBreak != nil {
			return true
		}
	}
	return false
}

func buildParagraph(p *ooxml.Paragraph, pageNum int, startsBreak bool) ParsedParagraph {
	pp := ParsedParagraph{
		PageNumber:      pageNum,
		StartsPageBreak: startsBreak,
		Alignment:       "left",
	}

	var text strings.Builder
	for _, r := range p.Rs {
		if r.Text != nil {
			text.WriteString(r.Text.Content)
		}
	}
	pp.Text = text.String()
	// ID must be stable across the lifetime of a single ParsedDoc, not
	// just unique-looking; use the text+position so formula wrapper
	// lookups (always empty today) and page-scope filtering work.
	pp.ID = strconv.Itoa(pageNum) + "." + strconv.Itoa(len(pp.Text))

	if p.PPr != nil {
		ppr := p.PPr
		if ppr.Jc != nil {
			pp.Alignment = ppr.Jc.Val
		}
		if ppr.Ind != nil && ppr.Ind.FirstLine != "" {
			pp.FirstLineIndentMm = twipsToMm(ppr.Ind.FirstLine)
		}
		if ppr.Spacing != nil {
			if ppr.Spacing.Before != "" {
				pp.SpacingBeforePt = twentiethsToPt(ppr.Spacing.Before)
			}
			if ppr.Spacing.After != "" {
				pp.SpacingAfterPt = twentiethsToPt(ppr.Spacing.After)
			}
			if ppr.Spacing.LineRule == "auto" || ppr.Spacing.LineRule == "" {
				if n, err := strconv.Atoi(ppr.Spacing.Line); err == nil && n > 0 {
					pp.LineSpacing = float64(n) / 240
				}
			}
		}
		pp.KeepLines = ppr.KeepLines != nil
		pp.KeepNext = ppr.KeepNext != nil
		pp.WidowControl = ppr.WidowControl != nil
		if ppr.PStyle != nil {
			pp.StyleID = ppr.PStyle.Val
		}
		if ppr.NumPr != nil {
			pp.IsListItem = true
			if ppr.NumPr.Ilvl != nil {
				if lvl, err := strconv.Atoi(ppr.NumPr.Ilvl.Val); err == nil {
					pp.ListLevel = lvl
				}
			}
		}

		applyRunProps(&pp, ppr.RPr)
	}

	// A paragraph mark's run properties only set defaults; an actual
	// first run with content takes priority for font/size/style facts.
	for _, r := range p.Rs {
		if r.Text != nil && strings.TrimSpace(r.Text.Content) != "" {
			applyRunProps(&pp, r.RPr)
			break
		}
	}

	trimmed := strings.TrimSpace(pp.Text)
	pp.IsAllCaps = pp.IsAllCaps || (trimmed != "" && trimmed == strings.ToUpper(trimmed) && strings.ToUpper(trimmed) != strings.ToLower(trimmed))

	return pp
}

func applyRunProps(pp *ParsedParagraph, rpr *ooxml.RPr) {
	if rpr == nil {
		return
	}
	if rpr.RFonts != nil && rpr.RFonts.Ascii != "" {
		pp.FontName = rpr.RFonts.Ascii
	}
	if rpr.Sz != nil {
		if n, err := strconv.Atoi(rpr.Sz.Val); err == nil {
			pp.FontSizePt = float64(n) / 2
		}
	}
	if rpr.B.Bool() {
		pp.IsBold = true
	}
	if rpr.I.Bool() {
		pp.IsItalic = true
	}
	if rpr.U != nil && rpr.U.Val != "" && rpr.U.Val != "none" {
		pp.IsUnderline = true
	}
	if rpr.Caps.Bool() {
		pp.IsAllCaps = true
	}
}

// headingQueue resyncs the flat ooxml paragraph walk against the
// docstruct engine's own (differently-produced) paragraph stream by
// matching on trimmed raw text. Duplicate paragraph text in a document
// can desync a match; this is an accepted simplification (see
// DESIGN.md) rather than exporting the engine's internal walker state.
type headingQueue struct {
	entries []headingEntry
	next    int
}

type headingEntry struct {
	text string
	node docstruct.Node
}

func buildHeadingQueue(stream []docstruct.Element) *headingQueue {
	hq := &headingQueue{}
	for _, el := range stream {
		if el.Paragraph == nil {
			continue
		}
		hq.entries = append(hq.entries, headingEntry{
			text: strings.TrimSpace(el.Paragraph.RawText),
			node: el.Paragraph.Node,
		})
	}
	return hq
}

const headingResyncWindow = 8

func (hq *headingQueue) match(text string) (docstruct.Node, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return docstruct.Node{}, false
	}
	limit := hq.next + headingResyncWindow
	if limit > len(hq.entries) {
		limit = len(hq.entries)
	}
	for i := hq.next; i < limit; i++ {
		if hq.entries[i].text == trimmed {
			hq.next = i + 1
			return hq.entries[i].node, true
		}
	}
	return docstruct.Node{}, false
}

// tableCaptionsInOrder pulls the docstruct engine's composed table
// titles ("Таблица N – Название", always placed above the table by
// composeTableTitle) in document order.
func tableCaptionsInOrder(stream []docstruct.Element) []string {
	var captions []string
	for _, el := range stream {
		if el.Table != nil {
			captions = append(captions, el.Table.Node.Prefix)
		}
	}
	return captions
}

var captionDashRe = regexp.MustCompile(`[-–—]`)

func buildTable(t *ooxml.Tbl, idx int, caption string) ParsedTable {
	pt := ParsedTable{
		ID:           strconv.Itoa(idx + 1),
		RowCount:     len(t.Trs),
		CaptionText:  strings.TrimSpace(caption),
		CaptionAbove: true,
	}
	pt.HasCaption = pt.CaptionText != ""
	pt.CaptionHasDash = pt.HasCaption && captionDashRe.MatchString(pt.CaptionText)

	if t.TblGrid != nil {
		pt.ColCount = len(t.TblGrid.Cols)
	}

	if t.TblPr != nil {
		if t.TblPr.Jc != nil {
			pt.Alignment = t.TblPr.Jc.Val
		}
		if t.TblPr.TblW != nil {
			pt.WidthType = t.TblPr.TblW.Type
			if n, err := strconv.Atoi(t.TblPr.TblW.W); err == nil {
				pt.WidthValue = float64(n)
			}
		}
		if t.TblPr.TblBorders != nil {
			b := t.TblPr.TblBorders
			pt.HasBorders = borderPresent(b.Top) && borderPresent(b.Bottom) && borderPresent(b.Left) && borderPresent(b.Right)
			pt.HasInnerBorders = borderPresent(b.InsideH) || borderPresent(b.InsideV)
		}
		if t.TblPr.TblLook != nil {
			bits, _ := strconv.ParseInt(t.TblPr.TblLook.Val, 16, 32)
			pt.HasRowBanding = bits&0x0200 == 0
			pt.HasColBanding = bits&0x0400 == 0
			if bits&0x0020 != 0 {
				pt.HasHeaderRow = true
			}
		}
	}

	if len(t.Trs) > 0 && t.Trs[0].TrPr != nil && t.Trs[0].TrPr.TblHeader != nil {
		pt.HasHeaderRow = true
	}

	var heights []float64
	for _, tr := range t.Trs {
		if tr.TrPr == nil || tr.TrPr.TrHeight == nil {
			continue
		}
		h := tr.TrPr.TrHeight
		if h.HRule == "auto" {
			continue
		}
		heights = append(heights, twipsToMm(h.Val))
	}
	if len(heights) > 0 {
		sort.Float64s(heights)
		pt.MinRowHeightMm = heights[0]
	}

	return pt
}

func borderPresent(b *ooxml.CTBorder) bool {
	return b != nil && b.Val != "" && b.Val != "nil" && b.Val != "none"
}

// ExtractConfig infers a plausible ConfigSchema-shaped standard from an
// exemplar document by taking the most common (mode) value observed
// across its body paragraphs for each tunable. Teachers use this to
// bootstrap a new formatting standard from a correctly-formatted
// sample instead of typing every field by hand.
func (d *ParsedDoc) ExtractConfig() map[string]interface{} {
	fontNames := map[string]int{}
	fontSizes := map[float64]int{}
	alignments := map[string]int{}
	lineSpacings := map[float64]int{}
	indents := map[float64]int{}

	for _, p := range d.Paragraphs {
		if strings.TrimSpace(p.Text) == "" || p.HeuristicHeading {
			continue
		}
		if p.FontName != "" {
			fontNames[p.FontName]++
		}
		if p.FontSizePt > 0 {
			fontSizes[p.FontSizePt]++
		}
		if p.Alignment != "" {
			alignments[p.Alignment]++
		}
		if p.LineSpacing > 0 {
			lineSpacings[p.LineSpacing]++
		}
		if p.FirstLineIndentMm > 0 {
			indents[p.FirstLineIndentMm]++
		}
	}

	alignment := modeString(alignments, "both")
	if alignment == "" {
		alignment = "both"
	}

	return map[string]interface{}{
		"margins": map[string]interface{}{
			"top": round1(d.Margins.TopMm), "bottom": round1(d.Margins.BottomMm),
			"left": round1(d.Margins.LeftMm), "right": round1(d.Margins.RightMm),
			"tolerance": 2.5,
		},
		"font": map[string]interface{}{
			"name": modeString(fontNames, "Times New Roman"),
			"size": modeFloat(fontSizes, 14),
		},
		"paragraph": map[string]interface{}{
			"line_spacing":      modeFloat(lineSpacings, 1.5),
			"alignment":         alignment,
			"first_line_indent": round1(modeFloat(indents, 12.5)),
		},
		"page_setup": map[string]interface{}{
			"orientation": orDefault(d.PageSize.Orientation, "portrait"),
		},
	}
}

func modeString(counts map[string]int, def string) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN {
			best, bestN = k, n
		}
	}
	if best == "" {
		return def
	}
	return best
}

func modeFloat(counts map[float64]int, def float64) float64 {
	best, bestN := 0.0, 0
	found := false
	for k, n := range counts {
		if n > bestN {
			best, bestN, found = k, n, true
		}
	}
	if !found {
		return def
	}
	return best
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
