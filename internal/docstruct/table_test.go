package docstruct

import (
	"normaproc/internal/ooxml"
	"testing"
)

func simpleParagraph(text string) ooxml.Paragraph {
	return ooxml.Paragraph{Rs: []ooxml.Run{{Text: &ooxml.Text{Content: text}}}}
}

func simpleCell(width string, text string) ooxml.Tc {
	return ooxml.Tc{
		TcPr: &ooxml.TcPr{TcW: &ooxml.TblWidth{W: width, Type: "dxa"}},
		Ps:   []ooxml.Paragraph{simpleParagraph(text)},
	}
}

func TestBuildGridSimpleRows(t *testing.T) {
	tbl := &ooxml.Tbl{
		TblGrid: &ooxml.TblGrid{Cols: []ooxml.GridCol{{W: "2000"}, {W: "2000"}}},
		Trs: []ooxml.Tr{
			{Tcs: []ooxml.Tc{simpleCell("2000", "a"), simpleCell("2000", "b")}},
			{Tcs: []ooxml.Tc{simpleCell("2000", "c"), simpleCell("2000", "d")}},
		},
	}
	grid := buildGrid(tbl, styleIndex{})
	if len(grid) != 2 || len(grid[0]) != 2 {
		t.Fatalf("got %dx%d grid, want 2x2", len(grid), len(grid[0]))
	}
	if cellText(grid[0][0]) != "a" || cellText(grid[1][1]) != "d" {
		t.Fatalf("unexpected cell contents")
	}
}

func TestBuildGridResolvesGridSpan(t *testing.T) {
	spanned := ooxml.Tc{
		TcPr: &ooxml.TcPr{
			TcW:      &ooxml.TblWidth{W: "4000", Type: "dxa"},
			GridSpan: &ooxml.ValAttr{Val: "2"},
		},
		Ps: []ooxml.Paragraph{simpleParagraph("merged")},
	}
	tbl := &ooxml.Tbl{
		TblGrid: &ooxml.TblGrid{Cols: []ooxml.GridCol{{W: "2000"}, {W: "2000"}}},
		Trs:     []ooxml.Tr{{Tcs: []ooxml.Tc{spanned}}},
	}
	grid := buildGrid(tbl, styleIndex{})
	if len(grid[0]) != 1 {
		t.Fatalf("got %d cells, want 1 merged cell", len(grid[0]))
	}
	if grid[0][0].ColSpan != 2 {
		t.Fatalf("got colspan %d, want 2", grid[0][0].ColSpan)
	}
}

func TestBuildGridResolvesVerticalMerge(t *testing.T) {
	restart := ooxml.Tc{
		TcPr: &ooxml.TcPr{TcW: &ooxml.TblWidth{W: "2000", Type: "dxa"}, VMerge: &ooxml.VMerge{Val: "restart"}},
		Ps:   []ooxml.Paragraph{simpleParagraph("top")},
	}
	cont := ooxml.Tc{
		TcPr: &ooxml.TcPr{TcW: &ooxml.TblWidth{W: "2000", Type: "dxa"}, VMerge: &ooxml.VMerge{Val: "continue"}},
	}
	tbl := &ooxml.Tbl{
		TblGrid: &ooxml.TblGrid{Cols: []ooxml.GridCol{{W: "2000"}}},
		Trs: []ooxml.Tr{
			{Tcs: []ooxml.Tc{restart}},
			{Tcs: []ooxml.Tc{cont}},
		},
	}
	grid := buildGrid(tbl, styleIndex{})
	if len(grid[1]) != 0 {
		t.Fatalf("expected continuation row to contribute no new cell, got %d", len(grid[1]))
	}
	if grid[0][0].RowSpan != 2 {
		t.Fatalf("got rowspan %d, want 2", grid[0][0].RowSpan)
	}
}

func TestClassifyTextCellsMarksWideCells(t *testing.T) {
	cfg := DefaultConfig()
	wide := newCell(0, 0)
	wide.WidthTwips = int(float64(cfg.DefaultPageWidth) * 0.9)
	narrow := newCell(1, 0)
	narrow.WidthTwips = int(float64(cfg.DefaultPageWidth) * 0.1)

	table := &Table{Rows: [][]*Cell{{wide, narrow}}, PageWidth: cfg.DefaultPageWidth}
	classifyTextCells(table, cfg)

	if !wide.IsTextCell {
		t.Fatal("expected wide cell to be classified as text cell")
	}
	if narrow.IsTextCell {
		t.Fatal("expected narrow cell not to be classified as text cell")
	}
}

func TestCellNoBordersDefaultsToHasBorderWhenAbsent(t *testing.T) {
	nb := cellNoBorders(nil)
	if len(nb) != 0 {
		t.Fatalf("expected empty (has-border) default, got %v", nb)
	}
	tcPr := &ooxml.TcPr{TcBorders: &ooxml.TcBorders{Left: &ooxml.CTBorder{Val: "nil"}}}
	nb2 := cellNoBorders(tcPr)
	if !nb2["left"] {
		t.Fatal("expected left=nil border to be recorded as no-border")
	}
}
