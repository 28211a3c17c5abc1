package docstruct

import "strings"

// Source records which of the five numbering sources (or the walker
// itself) produced a Node.
type Source string

const (
	SourceNone     Source = ""
	SourceBuiltin  Source = "BUILTIN"
	SourceStyle    Source = "STYLE"
	SourceRegex    Source = "REGEX"
	SourceHeading  Source = "HEADING"
	SourceAppendix Source = "APPENDIX"
	SourceTable    Source = "TABLE"
	SourceRoot     Source = "ROOT"
)

// Node is the hierarchical annotation attached to every paragraph and
// table in the stream.
type Node struct {
	Prefix  string
	Depth   int
	Source  Source
	Anchor  string
	Parents map[int]string

	// IsDefaultNumbering marks a node produced against the synthesized
	// default abstract (unknown numId). Such nodes are downgraded to
	// plain body text at JSON-export time regardless of their Depth.
	IsDefaultNumbering bool
}

// snapshotParents copies a depth->anchor map up to (and including) maxDepth.
func snapshotParents(depthAnchor map[int]string, maxDepth int) map[int]string {
	out := make(map[int]string, maxDepth)
	for k := 1; k <= maxDepth; k++ {
		if a, ok := depthAnchor[k]; ok {
			out[k] = a
		}
	}
	return out
}

// RunView is a typed accessor over a single OOXML run.
type RunView struct {
	Text     string
	Bold     bool
	FontSize float64
}

// Paragraph is the paragraph view from §3 of the engine's data model.
type Paragraph struct {
	RawText         string
	Runs            []RunView
	BoldFraction    float64
	MaxFontSize     float64
	StyleID         string
	BaseStyleID     string
	StyleName       string
	RawNumID        string
	RawIlvl         string
	Alignment       string
	Node            Node
}

// Cell is the cell view from §3, after merging.
type Cell struct {
	X, Y                 int
	RowSpan, ColSpan     int
	WidthTwips           int
	HeightTwips          int
	TopOffsetTwips       int
	Paragraphs           []Paragraph
	NoBorders            map[string]bool
	IsTextCell           bool
}

func newCell(x, y int) *Cell {
	return &Cell{X: x, Y: y, RowSpan: 1, ColSpan: 1, NoBorders: map[string]bool{}}
}

// cellText concatenates a cell's paragraph texts with newlines, the way
// the frame inliner and the table serializers both need it.
func cellText(c *Cell) string {
	if c == nil {
		return ""
	}
	texts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		texts = append(texts, p.RawText)
	}
	return strings.Join(texts, "\n")
}

func cellTextEmpty(c *Cell) bool {
	return strings.TrimSpace(cellText(c)) == ""
}

// Table is the table view from §3: ordered rows of merged cells plus a
// Node and the frame-detector flags.
type Table struct {
	Rows                                         [][]*Cell
	Node                                         Node
	HasFrame                                     bool
	TextColStart, TextColEnd                     int
	TextRowStart, TextRowEnd                     int
	PageWidth, PageHeight                        int
}

// Element is a single item of the document stream: exactly one of
// Paragraph or Table is set.
type Element struct {
	Paragraph *Paragraph
	Table     *Table
}
