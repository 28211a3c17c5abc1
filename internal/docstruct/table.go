package docstruct

import (
	"strconv"

	"normaproc/internal/ooxml"
)

// BuildTable implements §4.3: cell tabulation, borderless-cell merging,
// text-cell classification and frame detection, for a single OOXML table.
func BuildTable(tbl *ooxml.Tbl, pageWidth, pageHeight int, styles styleIndex, cfg *Config) *Table {
	w, h := pageWidth, pageHeight
	tableWidth := tableWidthTwips(tbl)
	if tableWidth > w {
		w, h = h, w
	}

	grid := buildGrid(tbl, styles)
	mergeBorderlessHorizontal(grid)
	mergeBorderlessVertical(grid)

	t := &Table{Rows: grid, PageWidth: w, PageHeight: h}
	classifyTextCells(t, cfg)
	detectFrame(t, tbl, cfg)
	if t.HasFrame {
		refineFooter(t, cfg)
	}
	return t
}

func tableWidthTwips(tbl *ooxml.Tbl) int {
	total := 0
	if tbl.TblGrid != nil {
		for _, c := range tbl.TblGrid.Cols {
			if v, err := strconv.Atoi(c.W); err == nil {
				total += v
			}
		}
	}
	if total == 0 && tbl.TblPr != nil && tbl.TblPr.TblW != nil {
		if v, err := strconv.Atoi(tbl.TblPr.TblW.W); err == nil {
			total = v
		}
	}
	return total
}

// buildGrid expands rows/columns, resolving gridSpan (colspan) and
// vMerge (rowspan) into a dense [][]*Cell with no duplicate cells for
// merge-continuation rows.
func buildGrid(tbl *ooxml.Tbl, styles styleIndex) [][]*Cell {
	var grid [][]*Cell
	pending := map[int]*Cell{}

	rowHeights := make([]int, len(tbl.Trs))
	for i, tr := range tbl.Trs {
		rowHeights[i] = trHeight(tr)
	}
	topOffset := 0

	for y, tr := range tbl.Trs {
		occ := map[int]bool{}
		for _, prevRow := range grid {
			for _, c := range prevRow {
				if c.Y <= y && c.Y+c.RowSpan > y {
					for cc := c.X; cc < c.X+c.ColSpan; cc++ {
						occ[cc] = true
					}
				}
			}
		}

		row := []*Cell{}
		col := 0
		for _, tc := range tr.Tcs {
			for occ[col] {
				col++
			}
			colspan := 1
			if tc.TcPr != nil && tc.TcPr.GridSpan != nil {
				if v, err := strconv.Atoi(tc.TcPr.GridSpan.Val); err == nil && v > 0 {
					colspan = v
				}
			}
			isContinue := tc.TcPr != nil && tc.TcPr.VMerge != nil &&
				(tc.TcPr.VMerge.Val == "" || tc.TcPr.VMerge.Val == "continue")
			isRestart := tc.TcPr != nil && tc.TcPr.VMerge != nil && tc.TcPr.VMerge.Val == "restart"

			if isContinue {
				if prev, ok := pending[col]; ok {
					prev.RowSpan++
					prev.HeightTwips += rowHeights[y]
					for cc := col; cc < col+colspan; cc++ {
						occ[cc] = true
					}
					col += colspan
					continue
				}
			}

			cell := newCell(col, y)
			cell.ColSpan = colspan
			cell.WidthTwips = cellWidthTwips(tc.TcPr)
			cell.HeightTwips = rowHeights[y]
			cell.TopOffsetTwips = topOffset
			cell.Paragraphs = buildCellParagraphs(tc.Ps, styles)
			cell.NoBorders = cellNoBorders(tc.TcPr)

			if isRestart {
				pending[col] = cell
			} else {
				delete(pending, col)
			}
			row = append(row, cell)
			for cc := col; cc < col+colspan; cc++ {
				occ[cc] = true
			}
			col += colspan
		}
		grid = append(grid, row)
		topOffset += rowHeights[y]
	}
	return grid
}

func trHeight(tr ooxml.Tr) int {
	if tr.TrPr != nil && tr.TrPr.TrHeight != nil {
		if v, err := strconv.Atoi(tr.TrPr.TrHeight.Val); err == nil {
			return v
		}
	}
	return 0
}

func cellWidthTwips(tcPr *ooxml.TcPr) int {
	if tcPr == nil || tcPr.TcW == nil {
		return 0
	}
	if tcPr.TcW.Type != "" && tcPr.TcW.Type != "dxa" {
		return 0
	}
	v, err := strconv.Atoi(tcPr.TcW.W)
	if err != nil {
		return 0
	}
	return v
}

// cellNoBorders recovers from MalformedProperty by defaulting to "has
// border" (empty set) when the property is absent, rather than guessing
// nil, since that is the safer default for frame/merge detection.
func cellNoBorders(tcPr *ooxml.TcPr) map[string]bool {
	nb := map[string]bool{}
	if tcPr == nil || tcPr.TcBorders == nil {
		return nb
	}
	check := func(side string, b *ooxml.CTBorder) {
		if b != nil && b.Val == "nil" {
			nb[side] = true
		}
	}
	check("top", tcPr.TcBorders.Top)
	check("left", tcPr.TcBorders.Left)
	check("bottom", tcPr.TcBorders.Bottom)
	check("right", tcPr.TcBorders.Right)
	return nb
}

func buildCellParagraphs(ps []ooxml.Paragraph, styles styleIndex) []Paragraph {
	out := make([]Paragraph, 0, len(ps))
	for i := range ps {
		out = append(out, *buildParagraphView(&ps[i], styles))
	}
	return out
}

// mergeBorderlessHorizontal implements §4.3 phase 2, first sweep: merge a
// cell into its left neighbour when its left border is nil and rowspans
// match.
func mergeBorderlessHorizontal(grid [][]*Cell) {
	for y, row := range grid {
		merged := []*Cell{}
		for _, c := range row {
			if len(merged) > 0 {
				prev := merged[len(merged)-1]
				if c.NoBorders["left"] && c.RowSpan == prev.RowSpan {
					prev.ColSpan += c.ColSpan
					prev.WidthTwips += c.WidthTwips
					prev.Paragraphs = append(prev.Paragraphs, c.Paragraphs...)
					unionBorders(prev.NoBorders, c.NoBorders)
					continue
				}
			}
			merged = append(merged, c)
		}
		grid[y] = merged
	}
}

// mergeBorderlessVertical implements §4.3 phase 2, second sweep: merge a
// cell into the cell above at the same (x, colspan) when its top border
// is nil and the upper cell is textually empty.
func mergeBorderlessVertical(grid [][]*Cell) {
	for y := 1; y < len(grid); y++ {
		newRow := []*Cell{}
		for _, c := range grid[y] {
			mergedInto := false
			for _, above := range grid[y-1] {
				if above.X == c.X && above.ColSpan == c.ColSpan &&
					c.NoBorders["top"] && cellTextEmpty(above) {
					above.HeightTwips += c.HeightTwips
					above.RowSpan += c.RowSpan
					unionBorders(above.NoBorders, c.NoBorders)
					mergedInto = true
					break
				}
			}
			if !mergedInto {
				newRow = append(newRow, c)
			}
		}
		grid[y] = newRow
	}
}

func unionBorders(dst, src map[string]bool) {
	for k, v := range src {
		if v {
			dst[k] = true
		}
	}
}

// classifyTextCells implements §4.3 phase 3.
func classifyTextCells(t *Table, cfg *Config) {
	t.TextColStart, t.TextRowStart = -1, -1
	for _, row := range t.Rows {
		for _, c := range row {
			if float64(c.WidthTwips)/float64(maxInt(t.PageWidth, 1)) > cfg.TextCellMinWidthRatio {
				c.IsTextCell = true
				if t.TextColStart == -1 || c.X < t.TextColStart {
					t.TextColStart = c.X
				}
				if c.X+c.ColSpan-1 > t.TextColEnd {
					t.TextColEnd = c.X + c.ColSpan - 1
				}
				if t.TextRowStart == -1 || c.Y < t.TextRowStart {
					t.TextRowStart = c.Y
				}
				if c.Y+c.RowSpan-1 > t.TextRowEnd {
					t.TextRowEnd = c.Y + c.RowSpan - 1
				}
			}
		}
	}
}

// detectFrame implements §4.3 phase 4.
func detectFrame(t *Table, tbl *ooxml.Tbl, cfg *Config) {
	totalHeight := sumRowHeights(t.Rows)
	columnCount := columnCountOf(tbl)
	hasTextCell := t.TextColStart != -1

	t.HasFrame = float64(totalHeight)/float64(maxInt(t.PageHeight, 1)) >= cfg.FrameTableMinHeightRatio &&
		columnCount >= cfg.MinFrameColumns &&
		hasTextCell
}

func sumRowHeights(grid [][]*Cell) int {
	total := 0
	for _, row := range grid {
		best := 0
		for _, c := range row {
			if c.Y+c.RowSpan-1 == c.Y && c.HeightTwips > best {
				best = c.HeightTwips
			}
		}
		total += best
	}
	return total
}

func columnCountOf(tbl *ooxml.Tbl) int {
	if tbl.TblGrid != nil && len(tbl.TblGrid.Cols) > 0 {
		return len(tbl.TblGrid.Cols)
	}
	max := 0
	for _, tr := range tbl.Trs {
		if len(tr.Tcs) > max {
			max = len(tr.Tcs)
		}
	}
	return max
}

// refineFooter implements §4.3 phase 5.
func refineFooter(t *Table, cfg *Config) {
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		topOffset := row[0].TopOffsetTwips
		if float64(topOffset)/float64(maxInt(t.PageHeight, 1)) > cfg.FrameFooterMinIndentRatio {
			if row[0].Y > t.TextRowEnd {
				t.TextRowEnd = row[0].Y
			}
			break
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
