package docstruct

import (
	"normaproc/internal/ooxml"
	"testing"
)

func headingParagraph(styleID, text string) *ooxml.Paragraph {
	return &ooxml.Paragraph{
		PPr: &ooxml.PPr{PStyle: &ooxml.ValAttr{Val: styleID}},
		Rs:  []ooxml.Run{{Text: &ooxml.Text{Content: text}, RPr: &ooxml.RPr{B: &ooxml.BoolVal{}}}},
	}
}

func bodyOf(items ...ooxml.BodyItem) *ooxml.Body {
	return &ooxml.Body{Items: items}
}

// headingStyleIndex defines a Heading 1 style whose own run properties
// are bold, so isHeadingStyled's typographic gate passes regardless of
// how many runs a given test paragraph happens to carry.
func headingStyleIndex() styleIndex {
	return styleIndex{
		"H1": &ooxml.Style{
			StyleId: "H1",
			Name:    &ooxml.ValAttr{Val: "Heading 1"},
			RPr:     &ooxml.RPr{B: &ooxml.BoolVal{}},
		},
	}
}

func TestWalkerStreamsHeadingsInOrder(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	styles := headingStyleIndex()

	body := bodyOf(
		ooxml.BodyItem{Paragraph: headingParagraph("H1", "Общие положения настоящего документа")},
		ooxml.BodyItem{Paragraph: &ooxml.Paragraph{Rs: []ooxml.Run{{Text: &ooxml.Text{Content: "просто текст абзаца"}}}}},
	)

	w := NewWalker(cfg, ns, styles, 0, 0, nil)
	w.Walk(body)
	stream := w.Stream()

	if len(stream) != 3 { // root + heading + body paragraph
		t.Fatalf("got %d elements, want 3", len(stream))
	}
	if stream[1].Paragraph.Node.Source != SourceHeading {
		t.Fatalf("got source %v, want HEADING", stream[1].Paragraph.Node.Source)
	}
	if stream[2].Paragraph.Node.Depth != 0 {
		t.Fatalf("expected plain paragraph at depth 0, got %d", stream[2].Paragraph.Node.Depth)
	}
}

func TestWalkerSuppressesTOCDotLeaders(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	body := bodyOf(ooxml.BodyItem{Paragraph: headingParagraph("H1", "Введение..........................5")})
	styles := headingStyleIndex()

	w := NewWalker(cfg, ns, styles, 0, 0, nil)
	w.Walk(body)
	stream := w.Stream()
	if stream[1].Paragraph.Node.Depth != 0 {
		t.Fatalf("expected TOC-leader paragraph to be suppressed to depth 0, got %d", stream[1].Paragraph.Node.Depth)
	}
}

func TestWalkerRemovesNodeWhenHookRequests(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	styles := headingStyleIndex()
	body := bodyOf(ooxml.BodyItem{Paragraph: headingParagraph("H1", "Исключаемый раздел документа")})

	hook := func(n *Node) HookAction { return ActionRemove }
	w := NewWalker(cfg, ns, styles, 0, 0, hook)
	w.Walk(body)
	if len(w.Stream()) != 1 { // only root remains
		t.Fatalf("got %d elements, want 1 (root only)", len(w.Stream()))
	}
}

func TestWalkerTableWithTextCellInlinesParagraphs(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	styles := styleIndex{}

	textCell := ooxml.Tc{
		TcPr: &ooxml.TcPr{TcW: &ooxml.TblWidth{W: "10000", Type: "dxa"}},
		Ps:   []ooxml.Paragraph{{Rs: []ooxml.Run{{Text: &ooxml.Text{Content: "сведения в рамке бланка"}}}}},
	}
	tbl := &ooxml.Tbl{
		TblGrid: &ooxml.TblGrid{Cols: []ooxml.GridCol{{W: "10000"}}},
		Trs:     []ooxml.Tr{{Tcs: []ooxml.Tc{textCell}}},
	}

	w := NewWalker(cfg, ns, styles, cfg.DefaultPageWidth, cfg.DefaultPageHeight, nil)
	w.Walk(bodyOf(ooxml.BodyItem{Table: tbl}))

	found := false
	for _, el := range w.Stream() {
		if el.Paragraph != nil && el.Paragraph.RawText == "сведения в рамке бланка" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the frame's text-cell paragraph to be inlined into the stream")
	}
}
