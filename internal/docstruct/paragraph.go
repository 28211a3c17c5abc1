package docstruct

import (
	"regexp"
	"strconv"
	"strings"

	"normaproc/internal/ooxml"
)

// buildParagraphView extracts the typed Paragraph view from a raw OOXML
// paragraph and resolves its style. Numbering classification is a
// separate step (classifyParagraph), run only for body-stream paragraphs.
func buildParagraphView(op *ooxml.Paragraph, styles styleIndex) *Paragraph {
	p := &Paragraph{}

	var sb strings.Builder
	for _, r := range op.Rs {
		run := RunView{}
		if r.Text != nil {
			run.Text = r.Text.Content
			sb.WriteString(r.Text.Content)
		}
		if r.Br != nil && r.Br.Type == "page" {
			// page breaks don't contribute text
		}
		if r.RPr != nil {
			run.Bold = r.RPr.B.Bool()
			if r.RPr.Sz != nil {
				if v, err := strconv.Atoi(r.RPr.Sz.Val); err == nil {
					run.FontSize = float64(v) / 2.0 // half-points -> points
				}
			}
		}
		p.Runs = append(p.Runs, run)
	}
	p.RawText = sb.String()

	boldCount := 0
	for _, r := range p.Runs {
		if r.Bold {
			boldCount++
		}
	}
	p.BoldFraction = float64(boldCount) / float64(len(p.Runs)+1)

	maxFont := 0.0
	for _, r := range p.Runs {
		if r.FontSize > maxFont {
			maxFont = r.FontSize
		}
	}

	var st *ooxml.Style
	if op.PPr != nil && op.PPr.PStyle != nil {
		p.StyleID = op.PPr.PStyle.Val
		st = styles.byID(p.StyleID)
	}
	if st != nil {
		p.StyleName = styleName(st)
		if st.BasedOn != nil {
			p.BaseStyleID = st.BasedOn.Val
		}
		if st.RPr != nil {
			if st.RPr.B.Bool() {
				p.BoldFraction = 1
			}
			if st.RPr.Sz != nil {
				if v, err := strconv.Atoi(st.RPr.Sz.Val); err == nil {
					sz := float64(v) / 2.0
					if sz > maxFont {
						maxFont = sz
					}
				}
			}
		}
	}
	p.MaxFontSize = maxFont

	if op.PPr != nil {
		if op.PPr.Jc != nil {
			p.Alignment = op.PPr.Jc.Val
		}
		if op.PPr.NumPr != nil {
			if op.PPr.NumPr.NumId != nil {
				p.RawNumID = op.PPr.NumPr.NumId.Val
			}
			if op.PPr.NumPr.Ilvl != nil {
				p.RawIlvl = op.PPr.NumPr.Ilvl.Val
			}
		}
	}

	return p
}

func styleName(st *ooxml.Style) string {
	if st.Name != nil {
		return st.Name.Val
	}
	return ""
}

// styleIndex is a minimal lookup over word/styles.xml plus the resolved
// base-style chain; built once per conversion.
type styleIndex map[string]*ooxml.Style

func buildStyleIndex(styles *ooxml.Styles) styleIndex {
	idx := styleIndex{}
	if styles == nil {
		return idx
	}
	for i := range styles.Styles {
		idx[styles.Styles[i].StyleId] = &styles.Styles[i]
	}
	return idx
}

func (idx styleIndex) byID(id string) *ooxml.Style {
	if idx == nil {
		return nil
	}
	return idx[id]
}

var (
	reHeadingStyleName = regexp.MustCompile(`(?i)^heading\s*\d+$`)
	reLetterDotDigit   = regexp.MustCompile(`^(\p{L}\.)\d`)
	reDigitDot         = regexp.MustCompile(`^\d+\.`)
	reDigitSpace       = regexp.MustCompile(`^\d+\s`)
	reAppendix         = regexp.MustCompile(`(?i)^приложение`)
)

// classifyParagraph runs the five-source priority pipeline from §4.2 and
// returns the resulting Node. It is the only place numbering counters are
// mutated, and only on an accepted source, per §9's side-effect rule.
func classifyParagraph(p *Paragraph, ns *NumberingState) Node {
	headingStyled := isHeadingStyled(p, ns)

	// 1. OOXML numbering metadata.
	if p.RawNumID != "" {
		an := ns.resolveAbstract(p.RawNumID)
		ilvl := 0
		if p.RawIlvl != "" {
			if v, err := strconv.Atoi(p.RawIlvl); err == nil {
				ilvl = v
			}
		}
		node := ns.CountBuiltin(an, ilvl)
		if !headingStyled && node.Depth == 1 {
			node.Depth = 0
		}
		if startsWithDashLike(node.Prefix) || startsWithDashLike(p.RawText) {
			node.Depth = 0
		}
		return node
	}

	// 2. Style linkage. Per the documented asymmetry (DESIGN.md), the
	// demotion post-conditions of the metadata path do NOT apply here.
	if link, ok := ns.lookupStyleLink(p.StyleID, p.BaseStyleID); ok {
		an := ns.abstracts[link.AbsID]
		if an != nil {
			node := ns.CountBuiltin(an, link.Level)
			node.Source = SourceStyle
			return node
		}
	}

	// 3. Textual prefix regex.
	if prefix, depth, ok := classifyByRegex(p.RawText, headingStyled); ok {
		return Node{Prefix: prefix, Depth: depth, Source: SourceRegex}
	}

	// 4. Heading style name.
	if isHeadingStyleName(p.StyleName) {
		if !headingStyled {
			return Node{}
		}
		if !isPlausibleHeading(p.RawText) {
			return Node{}
		}
		prefix := strings.TrimSpace(p.RawText)
		if prefix == "" {
			prefix = "[UNNAMED]"
		}
		return Node{Prefix: prefix, Depth: 1, Source: SourceHeading}
	}

	// 5. Appendix marker.
	if firstLine, ok := appendixMarker(p.RawText); ok {
		return Node{Prefix: firstLine, Depth: 1, Source: SourceAppendix}
	}

	return Node{Prefix: "", Depth: 0, Source: SourceNone}
}

func (ns *NumberingState) lookupStyleLink(styleID, baseStyleID string) (styleLink, bool) {
	if l, ok := ns.styleLink[styleID]; ok {
		return l, true
	}
	if l, ok := ns.styleLink[baseStyleID]; ok {
		return l, true
	}
	return styleLink{}, false
}

func isHeadingStyleName(name string) bool {
	if name == "" {
		return false
	}
	return reHeadingStyleName.MatchString(name) || strings.EqualFold(name, "Title")
}

func appendixMarker(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	firstLine := trimmed
	if idx := strings.IndexAny(trimmed, "\r\n"); idx >= 0 {
		firstLine = trimmed[:idx]
	}
	if utf8Len(trimmed) >= 40 {
		return "", false
	}
	if !reAppendix.MatchString(strings.ToLower(firstLine)) {
		return "", false
	}
	return firstLine, true
}

func utf8Len(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// classifyByRegex implements §4.2 source 3.
func classifyByRegex(text string, headingStyled bool) (string, int, bool) {
	remaining := text
	depth := 0
	var prefixParts []string

	if m := reLetterDotDigit.FindStringSubmatch(remaining); m != nil {
		consumed := m[1]
		prefixParts = append(prefixParts, consumed)
		remaining = remaining[len(consumed):]
		depth++
	}

	for {
		m := reDigitDot.FindString(remaining)
		if m == "" {
			break
		}
		prefixParts = append(prefixParts, m)
		remaining = remaining[len(m):]
		depth++
	}

	if m := reDigitSpace.FindString(remaining); m != "" {
		prefixParts = append(prefixParts, strings.TrimRight(m, " \t"))
		remaining = remaining[len(m):]
		depth++
	}

	if depth == 0 {
		return "", 0, false
	}
	if startsWithDashLike(remaining) {
		return "", 0, false
	}
	if depth == 1 && !headingStyled {
		return "", 0, false
	}
	if !isPlausibleNumeration(text) {
		return "", 0, false
	}

	return strings.Join(prefixParts, ""), depth, true
}
