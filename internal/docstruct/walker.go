package docstruct

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"normaproc/internal/ooxml"
)

const rootAnchor = "root"

// Walker implements §4.4: the single-pass document walk that produces the
// ordered, breadcrumb-annotated element stream.
type Walker struct {
	cfg      *Config
	ns       *NumberingState
	styles   styleIndex
	hook     PostProcessHook
	pageW    int
	pageH    int

	stream      []Element
	lastDepth   int
	depthAnchor map[int]string
	rolling     []string
	charsCount  int
}

// NewWalker constructs a Walker for one document conversion. pageWidth/
// pageHeight are in twips; pass 0 to fall back to the configured defaults.
func NewWalker(cfg *Config, ns *NumberingState, styles styleIndex, pageWidth, pageHeight int, hook PostProcessHook) *Walker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if hook == nil {
		hook = PassHook
	}
	if pageWidth <= 0 {
		pageWidth = cfg.DefaultPageWidth
	}
	if pageHeight <= 0 {
		pageHeight = cfg.DefaultPageHeight
	}

	w := &Walker{
		cfg:         cfg,
		ns:          ns,
		styles:      styles,
		hook:        hook,
		pageW:       pageWidth,
		pageH:       pageHeight,
		depthAnchor: map[int]string{1: rootAnchor},
		lastDepth:   1,
	}

	root := &Paragraph{
		RawText: "[Начало документа]",
		Node: Node{
			Prefix:  "[Начало документа]",
			Depth:   1,
			Source:  SourceRoot,
			Anchor:  rootAnchor,
			Parents: map[int]string{1: rootAnchor},
		},
	}
	w.stream = append(w.stream, Element{Paragraph: root})
	return w
}

// Stream returns the built element stream after Walk completes.
func (w *Walker) Stream() []Element { return w.stream }

// Walk processes the document body in order.
func (w *Walker) Walk(body *ooxml.Body) {
	for _, item := range body.Items {
		if item.Paragraph != nil {
			w.processParagraph(item.Paragraph)
		} else if item.Table != nil {
			w.processTable(item.Table)
		}
	}
}

var trailingIntRe = regexp.MustCompile(`(\d+)\s*$`)

func (w *Walker) processParagraph(op *ooxml.Paragraph) {
	pv := buildParagraphView(op, w.styles)
	node := classifyParagraph(pv, w.ns)
	pv.Node = node

	text := strings.TrimSpace(pv.RawText)
	if text == "" {
		return
	}

	isTOC := strings.Contains(pv.RawText, ".....")
	if !isTOC && w.charsCount < w.cfg.MaxTOCPages*w.cfg.AvgPageCharsCount {
		if m := trailingIntRe.FindStringSubmatch(pv.RawText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n < w.cfg.MaxDocPages {
				isTOC = true
			}
		}
	}
	if isTOC {
		pv.Node.Depth = 0
	}

	if pv.Node.Depth > 0 {
		anchor := fmt.Sprintf("par%d", len(w.stream))
		pv.Node.Anchor = anchor
		w.lastDepth = pv.Node.Depth
		w.depthAnchor[pv.Node.Depth] = anchor
	}
	pv.Node.Parents = snapshotParents(w.depthAnchor, w.lastDepth)

	w.charsCount += len([]rune(text))
	w.ns.observeFontSize(pv.MaxFontSize)

	if w.hook(&pv.Node) == ActionRemove {
		return
	}

	w.stream = append(w.stream, Element{Paragraph: pv})
	w.pushRolling(text)
}

func (w *Walker) pushRolling(text string) {
	w.rolling = append(w.rolling, text)
	if len(w.rolling) > 2 {
		w.rolling = w.rolling[len(w.rolling)-2:]
	}
}

var reTableWord = regexp.MustCompile(`(?i)таблица|т\s*а\s*б\s*л\s*и\s*ц\s*а`)

func (w *Walker) composeTableTitle() string {
	window := strings.Join(w.rolling, " ")
	if window == "" {
		return "Таблица"
	}
	loc := reTableWord.FindAllStringIndex(window, -1)
	if len(loc) > 0 {
		last := loc[len(loc)-1]
		return window[last[0]:]
	}
	return window
}

func (w *Walker) processTable(tbl *ooxml.Tbl) {
	tv := BuildTable(tbl, w.pageW, w.pageH, w.styles, w.cfg)
	tv.Node = Node{
		Source:  SourceTable,
		Depth:   w.lastDepth + 1,
		Parents: snapshotParents(w.depthAnchor, w.lastDepth),
		Prefix:  w.composeTableTitle(),
	}

	var current *Table
	newSubtable := func() *Table {
		return &Table{Node: Node{
			Source:  SourceTable,
			Depth:   tv.Node.Depth,
			Parents: tv.Node.Parents,
			Prefix:  w.composeTableTitle(),
		}}
	}
	flush := func() {
		if current == nil {
			return
		}
		w.emitOrExtendTable(current)
		current = nil
	}

	for _, row := range tv.Rows {
		var textCell *Cell
		for _, c := range row {
			if c.IsTextCell {
				textCell = c
				break
			}
		}
		if textCell == nil {
			keep := row
			if tv.HasFrame {
				keep = filterInteriorColumns(row, tv)
			}
			if current == nil {
				current = newSubtable()
			}
			current.Rows = append(current.Rows, keep)
			continue
		}

		flush()
		for i := range textCell.Paragraphs {
			w.processParagraph(cellParagraphToOOXML(&textCell.Paragraphs[i]))
		}
		current = newSubtable()
	}
	flush()
}

// cellParagraphToOOXML re-wraps an already-decoded cell Paragraph so it
// can re-enter processParagraph, which expects an ooxml.Paragraph. The
// docstruct Paragraph view was built directly from OOXML without losing
// the raw text/run data needed to reclassify it, so this reconstructs a
// minimal equivalent rather than re-parsing XML.
func cellParagraphToOOXML(p *Paragraph) *ooxml.Paragraph {
	op := &ooxml.Paragraph{}
	for _, r := range p.Runs {
		run := ooxml.Run{Text: &ooxml.Text{Content: r.Text}}
		if r.Bold || r.FontSize > 0 {
			rpr := &ooxml.RPr{}
			if r.Bold {
				rpr.B = &ooxml.BoolVal{}
			}
			if r.FontSize > 0 {
				rpr.Sz = &ooxml.ValAttr{Val: strconv.Itoa(int(r.FontSize * 2))}
			}
			run.RPr = rpr
		}
		op.Rs = append(op.Rs, run)
	}
	if p.StyleID != "" || p.Alignment != "" {
		op.PPr = &ooxml.PPr{}
		if p.StyleID != "" {
			op.PPr.PStyle = &ooxml.ValAttr{Val: p.StyleID}
		}
		if p.Alignment != "" {
			op.PPr.Jc = &ooxml.ValAttr{Val: p.Alignment}
		}
	}
	return op
}

func filterInteriorColumns(row []*Cell, tv *Table) []*Cell {
	out := make([]*Cell, 0, len(row))
	for _, c := range row {
		if c.X >= tv.TextColStart && c.X <= tv.TextColEnd {
			out = append(out, c)
		}
	}
	return out
}

func (w *Walker) emitOrExtendTable(sub *Table) {
	if allCellsEmpty(sub) {
		return
	}
	if len(w.stream) > 0 {
		last := w.stream[len(w.stream)-1]
		if last.Table != nil && len(last.Table.Rows) > 0 && len(sub.Rows) > 0 &&
			len(last.Table.Rows[len(last.Table.Rows)-1]) == len(sub.Rows[0]) {
			if headerRowText(last.Table.Rows[len(last.Table.Rows)-1]) == headerRowText(sub.Rows[0]) {
				sub.Rows = sub.Rows[1:]
			}
			last.Table.Rows = append(last.Table.Rows, sub.Rows...)
			return
		}
	}
	anchor := fmt.Sprintf("table%d", len(w.stream))
	sub.Node.Anchor = anchor
	w.stream = append(w.stream, Element{Table: sub})
}

func allCellsEmpty(t *Table) bool {
	for _, row := range t.Rows {
		for _, c := range row {
			if !cellTextEmpty(c) {
				return false
			}
		}
	}
	return true
}

func headerRowText(row []*Cell) string {
	texts := make([]string, len(row))
	for i, c := range row {
		texts[i] = cellText(c)
	}
	return strings.Join(texts, "\t")
}
