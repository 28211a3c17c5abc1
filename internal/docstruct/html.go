package docstruct

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// RenderHTML implements §4.5: an anchored HTML rendering of the element
// stream plus a table-of-contents sidebar built from the heading nodes.
func RenderHTML(stream []Element, cfg *Config) string {
	var body strings.Builder
	var toc []tocEntry

	for _, el := range stream {
		switch {
		case el.Paragraph != nil:
			p := el.Paragraph
			renderParagraphHTML(&body, p, cfg)
			if p.Node.Depth > 0 && p.Node.Source != SourceRoot {
				toc = append(toc, tocEntry{anchor: p.Node.Anchor, depth: p.Node.Depth, label: tocLabel(p, cfg)})
			}
		case el.Table != nil:
			renderTableHTML(&body, el.Table)
		}
	}

	var out strings.Builder
	out.WriteString(`<div class="document">`)
	out.WriteString(`<nav class="toc">`)
	for _, t := range toc {
		fmt.Fprintf(&out, `<div class="toc-item toc-depth-%d"><a href="#%s">%s</a></div>`,
			t.depth, html.EscapeString(t.anchor), html.EscapeString(t.label))
	}
	out.WriteString(`</nav>`)
	out.WriteString(`<div class="content">`)
	out.WriteString(body.String())
	out.WriteString(`</div></div>`)
	return out.String()
}

type tocEntry struct {
	anchor string
	depth  int
	label  string
}

func tocLabel(p *Paragraph, cfg *Config) string {
	text := strings.TrimSpace(p.RawText)
	runes := []rune(text)
	if len(runes) > cfg.TOCHeaderMaxChars {
		text = string(runes[:cfg.TOCHeaderMaxChars]) + "…"
	}
	return text
}

// paragraphPrefixShown reports whether a node's prefix should be rendered
// inline with its text: only genuine list/heading numbering, and never a
// synthesized default-numbering placeholder.
func paragraphPrefixShown(n Node) bool {
	if n.IsDefaultNumbering {
		return false
	}
	return n.Source == SourceBuiltin || n.Source == SourceStyle
}

func renderParagraphHTML(out *strings.Builder, p *Paragraph, cfg *Config) {
	text := html.EscapeString(strings.TrimSpace(p.RawText))
	if paragraphPrefixShown(p.Node) {
		text = html.EscapeString(p.Node.Prefix) + " " + text
	}

	class := paragraphCSSClass(p)
	if p.Node.Depth > 0 && p.Node.Source != SourceRoot && p.Node.Source != SourceTable {
		tag := p.Node.Depth
		if tag > cfg.HeadingTagDepthClamp {
			tag = cfg.HeadingTagDepthClamp
		}
		fmt.Fprintf(out, `<h%d id="%s" class="%s">%s</h%d>`,
			tag, html.EscapeString(p.Node.Anchor), class, text, tag)
		return
	}

	anchorAttr := ""
	if p.Node.Anchor != "" {
		anchorAttr = fmt.Sprintf(` id="%s"`, html.EscapeString(p.Node.Anchor))
	}
	fmt.Fprintf(out, `<p%s class="%s">%s</p>`, anchorAttr, class, text)
}

func paragraphCSSClass(p *Paragraph) string {
	classes := []string{"paragraph"}
	if p.Alignment != "" {
		classes = append(classes, "align-"+p.Alignment)
	}
	if p.BoldFraction > 0.5 {
		classes = append(classes, "bold")
	}
	return strings.Join(classes, " ")
}

func renderTableHTML(out *strings.Builder, t *Table) {
	id := ""
	if t.Node.Anchor != "" {
		id = fmt.Sprintf(` id="%s"`, html.EscapeString(t.Node.Anchor))
	}
	fmt.Fprintf(out, `<table%s class="doc-table"><caption>%s</caption>`, id, html.EscapeString(t.Node.Prefix))
	for y, row := range t.Rows {
		out.WriteString("<tr>")
		cellTag := "td"
		if y == t.TextRowStart {
			cellTag = "th"
		}
		cols := make([]int, 0, len(row))
		for _, c := range row {
			cols = append(cols, c.X)
		}
		sort.Ints(cols)
		for _, c := range row {
			fmt.Fprintf(out, `<%s colspan="%d" rowspan="%d">%s</%s>`,
				cellTag, c.ColSpan, c.RowSpan, html.EscapeString(cellText(c)), cellTag)
		}
		out.WriteString("</tr>")
	}
	out.WriteString("</table>")
}
